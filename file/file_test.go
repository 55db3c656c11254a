package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/noted/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groove() model.Composition {
	return model.Composition{
		Bpm:   96,
		Meter: model.NewMeter(4, 4),
		Notes: []model.Note{
			{Value: "bd", Position: model.RegularPosition{Bar: 0, Offset: 0, Measure: 4}},
			{Value: "sn", Position: model.RegularPosition{Bar: 0, Offset: 1, Measure: 4}},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"groove.noted", "groove.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, groove()))

			c, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, groove(), c)
		})
	}
}

func TestLoadReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.noted")
	require.NoError(t, os.WriteFile(path, []byte("sn@0\nsn@x\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "line 2")
}

func TestGather(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.noted", "b.json", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	single := filepath.Join(dir, "c.txt")

	paths, err := Gather([]string{dir, single, single}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.noted"),
		filepath.Join(dir, "b.json"),
		single,
	}, paths)

	paths, err = Gather([]string{dir}, 1)
	require.NoError(t, err)
	assert.Len(t, paths, 1)

	_, err = Gather([]string{filepath.Join(dir, "missing")}, 0)
	assert.Error(t, err)
}
