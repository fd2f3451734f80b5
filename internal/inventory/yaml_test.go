package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
floor_groups:
  - id: tower-a-9
    tower_id: a
    floor_number: 9
apartments:
  - id: a-901
    floor_number: 9
    floor_group_id: tower-a-9
    unit_position: "01"
    state: AVAILABLE
    fixtures:
      - address: 9
        light_index: 1
      - address: 10
        light_index: 2
  - id: a-902
    floor_number: 9
    floor_group_id: tower-a-9
    state: NOT_A_REAL_STATE
`

func TestLoadYAMLPopulatesStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, writeFile(path, sampleYAML))

	store, err := LoadYAML(path)
	require.NoError(t, err)

	apt, err := store.Apartment("a-901")
	require.NoError(t, err)
	assert.Equal(t, StateAvailable, apt.CurrentState)
	assert.Len(t, apt.Fixtures, 2)

	group, err := store.FloorGroup("tower-a-9")
	require.NoError(t, err)
	assert.Equal(t, 9, group.FloorNumber)
}

func TestLoadYAMLFallsBackToOffForUnrecognizedState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, writeFile(path, sampleYAML))

	store, err := LoadYAML(path)
	require.NoError(t, err)
	apt, err := store.Apartment("a-902")
	require.NoError(t, err)
	assert.Equal(t, StateOff, apt.CurrentState)
}

func TestLoadYAMLMissingFile(t *testing.T) {
	_, err := LoadYAML("/nonexistent/seed.yaml")
	assert.Error(t, err)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
