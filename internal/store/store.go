package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benmeehan/fog-agent/internal/models"
)

// DefaultKey is the fixed key the explored-region set is stored under.
const DefaultKey = "exploredAreas"

// ErrCorrupt marks persisted data that could not be decoded into a valid set.
var ErrCorrupt = errors.New("corrupt exploration data")

// Store persists the explored-region set. Load returns an empty set and a nil
// error when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (models.ExplorationSet, error)
	Save(ctx context.Context, set models.ExplorationSet) error
	Close() error
}

// Encode serializes set as a JSON array of {latitude, longitude, radius}.
func Encode(set models.ExplorationSet) ([]byte, error) {
	if set == nil {
		set = models.ExplorationSet{}
	}
	return json.Marshal(set)
}

// Decode parses data produced by Encode. On any failure it returns an empty
// set together with an error wrapping ErrCorrupt.
func Decode(data []byte) (models.ExplorationSet, error) {
	var set models.ExplorationSet
	if err := json.Unmarshal(data, &set); err != nil {
		return models.ExplorationSet{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	for i, region := range set {
		if !region.Valid() {
			return models.ExplorationSet{}, fmt.Errorf("%w: region %d is invalid: %+v", ErrCorrupt, i, region)
		}
	}

	if set == nil {
		set = models.ExplorationSet{}
	}
	return set, nil
}
