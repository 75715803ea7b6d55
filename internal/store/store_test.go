package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benmeehan/fog-agent/internal/models"
	"github.com/benmeehan/fog-agent/pkg/file"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleSet = models.ExplorationSet{
	{Latitude: 0, Longitude: 0, Radius: 300},
	{Latitude: 1, Longitude: 1, Radius: 300},
	{Latitude: 37.78825, Longitude: -122.4324, Radius: 450.5},
}

func TestEncode_Format(t *testing.T) {
	data, err := Encode(models.ExplorationSet{{Latitude: 1.5, Longitude: -2, Radius: 300}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"latitude":1.5,"longitude":-2,"radius":300}]`, string(data))

	data, err = Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestDecode_Corrupt(t *testing.T) {
	cases := map[string]string{
		"not json":        `{{{`,
		"object":          `{"latitude":1}`,
		"zero radius":     `[{"latitude":1,"longitude":1,"radius":0}]`,
		"negative radius": `[{"latitude":1,"longitude":1,"radius":-5}]`,
		"bad latitude":    `[{"latitude":91,"longitude":1,"radius":300}]`,
		"wrong types":     `[{"latitude":"x","longitude":1,"radius":300}]`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			set, err := Decode([]byte(raw))
			assert.ErrorIs(t, err, ErrCorrupt)
			assert.NotNil(t, set)
			assert.Empty(t, set)
		})
	}
}

func TestDecode_Null(t *testing.T) {
	set, err := Decode([]byte("null"))
	assert.NoError(t, err)
	assert.NotNil(t, set)
	assert.Empty(t, set)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, s := range []models.ExplorationSet{{}, sampleSet} {
		m := NewMemoryStore()
		require.NoError(t, m.Save(ctx, s))

		got, err := m.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestMemoryStore_EmptyLoad(t *testing.T) {
	got, err := NewMemoryStore().Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ExplorationSet{}, got)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := NewFileStore(dir, "", file.NewFileService())

	assert.Equal(t, filepath.Join(dir, DefaultKey+".json"), fs.Path())

	got, err := fs.Load(ctx)
	require.NoError(t, err, "missing file loads as empty")
	assert.Empty(t, got)

	require.NoError(t, fs.Save(ctx, sampleSet))
	got, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSet, got)

	require.NoError(t, fs.Save(ctx, models.ExplorationSet{}))
	got, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ExplorationSet{}, got)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir, "areas", file.NewFileService())
	require.NoError(t, os.WriteFile(fs.Path(), []byte("garbage"), 0o600))

	got, err := fs.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Empty(t, got)
}

// fakeRedis implements the two commands RedisStore uses.
type fakeRedis struct {
	redis.Cmdable
	values map[string][]byte
	setErr error
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.values[key] = value.([]byte)
	return redis.NewStatusResult("OK", nil)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{values: map[string][]byte{}}
	rs := NewRedisStoreWithClient(fake, "fog:", "")

	assert.Equal(t, "fog:"+DefaultKey, rs.Key())

	got, err := rs.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, rs.Save(ctx, sampleSet))
	got, err = rs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSet, got)
	assert.NoError(t, rs.Close())
}

func TestRedisStore_SaveError(t *testing.T) {
	fake := &fakeRedis{values: map[string][]byte{}, setErr: errors.New("connection refused")}
	rs := NewRedisStoreWithClient(fake, "", "k")

	err := rs.Save(context.Background(), sampleSet)
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewRedisStore_RequiresAddr(t *testing.T) {
	_, err := NewRedisStore(RedisOptions{})
	assert.Error(t, err)
}
