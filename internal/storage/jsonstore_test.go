package storage

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSeedsCollections(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := New(fs, "data")
	require.NoError(t, store.Init())

	for _, c := range []string{CollectionBans, CollectionReports, CollectionActions, CollectionCredentials} {
		exists, err := afero.Exists(fs, "data/"+c)
		require.NoError(t, err)
		assert.True(t, exists, "missing %s", c)
	}
}

func TestInitLeavesExistingDataAlone(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data/bans.json", []byte(`{"h":{"reason":"spam"}}`), 0o644))
	store := New(fs, "data")
	require.NoError(t, store.Init())

	var bans map[string]map[string]string
	require.NoError(t, store.Read(CollectionBans, &bans))
	assert.Equal(t, "spam", bans["h"]["reason"])
}

func TestReadMissingFileDecodesDefaults(t *testing.T) {
	store := New(afero.NewMemMapFs(), "data")

	var bans map[string]any
	require.NoError(t, store.Read(CollectionBans, &bans))
	assert.Empty(t, bans)

	var reports []any
	require.NoError(t, store.Read(CollectionReports, &reports))
	assert.Empty(t, reports)
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := New(afero.NewMemMapFs(), "data")
	require.NoError(t, store.Init())

	type record struct {
		ID     string `json:"id"`
		Reason string `json:"reason"`
	}
	in := []record{{ID: "report_1", Reason: "spam"}, {ID: "report_2", Reason: "abuse"}}
	require.NoError(t, store.Write(CollectionReports, in))

	var out []record
	require.NoError(t, store.Read(CollectionReports, &out))
	assert.Equal(t, in, out)
}

func TestReadCorruptFileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data/bans.json", []byte("{not json"), 0o644))
	store := New(fs, "data")

	var bans map[string]any
	assert.Error(t, store.Read(CollectionBans, &bans))
}
