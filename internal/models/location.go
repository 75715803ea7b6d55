package models

import (
	"time"
)

// ExplorationSnapshot is the message published after every mutation of the
// explored-region set.
type ExplorationSnapshot struct {
	DeviceID  string         `json:"device_id"`
	Timestamp time.Time      `json:"timestamp"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Accuracy  float64        `json:"accuracy"`
	Created   bool           `json:"created"`
	Regions   ExplorationSet `json:"regions"`
}
