package animation

import (
	"sort"

	"github.com/kohnman/lightswarm/internal/codec"
	"github.com/kohnman/lightswarm/internal/inventory"
)

// floorFixtures groups every apartment's fixtures by floor number, in
// ascending floor order, for Wave to walk (Chase uses flatFixtures).
func floorFixtures(store inventory.Store) ([]int, map[int][]codec.Address, error) {
	apartments, err := store.AllApartmentsOrderedByFloor()
	if err != nil {
		return nil, nil, err
	}
	byFloor := make(map[int][]codec.Address)
	for _, apt := range apartments {
		byFloor[apt.FloorNumber] = append(byFloor[apt.FloorNumber], apt.Addresses()...)
	}
	floors := make([]int, 0, len(byFloor))
	for f := range byFloor {
		floors = append(floors, f)
	}
	sort.Ints(floors)
	return floors, byFloor, nil
}

// flatFixtures returns every fixture address across every apartment, in
// the store's floor-then-ID order, for Chase's head position to walk.
func flatFixtures(store inventory.Store) ([]codec.Address, error) {
	apartments, err := store.AllApartmentsOrderedByFloor()
	if err != nil {
		return nil, err
	}
	var out []codec.Address
	for _, apt := range apartments {
		out = append(out, apt.Addresses()...)
	}
	return out, nil
}
