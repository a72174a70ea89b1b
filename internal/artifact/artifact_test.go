package artifact

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAllPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("time,data_ranking,rank\n"), 0o644))

	data, err := ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, "time,data_ranking,rank\n", string(data))
}

func TestReadAllBrotli(t *testing.T) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte("team,date,avg_scored,avg_conceded\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "stats_data.csv.br")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	data, err := ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, "team,date,avg_scored,avg_conceded\n", string(data))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBaseExt(t *testing.T) {
	tests := map[string]string{
		"model.json":      ".json",
		"model.YAML":      ".yaml",
		"model.yaml.br":   ".yaml",
		"ranking.csv.BR":  ".csv",
		"artifacts/model": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, BaseExt(in), in)
	}
}
