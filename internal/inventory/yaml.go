package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kohnman/lightswarm/internal/codec"
)

// yamlFixture is the on-disk shape of one fixture association.
type yamlFixture struct {
	Address    uint16 `yaml:"address"`
	LightIndex int    `yaml:"light_index"`
}

// yamlApartment is the on-disk shape of one apartment.
type yamlApartment struct {
	ID           string        `yaml:"id"`
	FloorNumber  int           `yaml:"floor_number"`
	FloorGroupID string        `yaml:"floor_group_id"`
	UnitPosition string        `yaml:"unit_position"`
	State        string        `yaml:"state"`
	Fixtures     []yamlFixture `yaml:"fixtures"`
}

// yamlFloorGroup is the on-disk shape of one floor group.
type yamlFloorGroup struct {
	ID          string `yaml:"id"`
	TowerID     string `yaml:"tower_id"`
	FloorNumber int    `yaml:"floor_number"`
}

// yamlDocument is the root of an inventory seed file: the external
// collaborator's import format mentioned in the building-data model. Only
// the administrative load path (process startup, explicit reimport) reads
// this; the resolver/session/animation core never touches YAML directly.
type yamlDocument struct {
	FloorGroups []yamlFloorGroup `yaml:"floor_groups"`
	Apartments  []yamlApartment  `yaml:"apartments"`
}

// LoadYAML reads an inventory seed file and returns a populated MemStore.
// An apartment with an unrecognized state falls back to StateOff rather
// than failing the whole import, so one bad row doesn't block startup.
func LoadYAML(path string) (*MemStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("inventory: reading %s: %w", path, err)
	}
	var doc yamlDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("inventory: parsing %s: %w", path, err)
	}

	store := NewMemStore()
	for _, g := range doc.FloorGroups {
		store.PutFloorGroup(FloorGroup{ID: g.ID, TowerID: g.TowerID, FloorNumber: g.FloorNumber})
	}
	for _, a := range doc.Apartments {
		state := State(a.State)
		if !state.Valid() {
			state = StateOff
		}
		fixtures := make([]FixtureAddress, 0, len(a.Fixtures))
		for _, f := range a.Fixtures {
			fixtures = append(fixtures, FixtureAddress{Address: codec.Address(f.Address), LightIndex: f.LightIndex})
		}
		store.PutApartment(Apartment{
			ID:           a.ID,
			FloorNumber:  a.FloorNumber,
			FloorGroupID: a.FloorGroupID,
			UnitPosition: a.UnitPosition,
			Fixtures:     fixtures,
			CurrentState: state,
		})
	}
	return store, nil
}
