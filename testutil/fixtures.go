package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kasuganosora/itemvault/server/resource"
	"github.com/stretchr/testify/require"
)

// Fixture data files shared by loader, vault and API tests. Definitions:
//
//	1 gold      currency, stackable x9999, weight 0.01
//	2 potion    consumable, stackable x10, weight 0.5
//	3 sword     weapon, singleton, weight 5, rolls property 1 (damage)
//	4 shield    armor, singleton, weight 8
const (
	fixtureProperties = `[
  {"id": 1, "name": "damage", "kind": "int"},
  {"id": 2, "name": "charge", "kind": "float"}
]`

	fixtureItems = `[
  {"id": 1, "name": "gold", "category": "currency", "weight": 0.01, "stackable": true, "maxStack": 9999},
  {"id": 2, "name": "potion", "category": "consumable", "weight": 0.5, "stackable": true, "maxStack": 10},
  {"id": 3, "name": "sword", "category": "weapon", "weight": 5, "rarity": 2,
   "properties": [{"property": 1, "min": 5, "max": 15}]},
  {"id": 4, "name": "shield", "category": "armor", "weight": 8}
]`

	fixtureTables = `[
  {"name": "common", "entries": [
    {"weight": 70, "generator": {"strategy": "specific", "definition": 1, "minCount": 10, "maxCount": 50}},
    {"weight": 30, "generator": {"strategy": "specific", "definition": 2, "minCount": 1, "maxCount": 3}}
  ]}
]`

	fixtureContainers = `[
  {"name": "backpack", "slots": 8, "allowStacking": true,
   "preset": [{"definition": 1, "quantity": 100}]},
  {"name": "belt", "slots": 2, "allowStacking": true,
   "constraints": [{"type": "allow_categories", "categories": ["consumable"]}]}
]`
)

// WriteFixtureData writes the shared data files to a temp dir and returns it.
func WriteFixtureData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Properties.json": fixtureProperties,
		"Items.json":      fixtureItems,
		"DropTables.json": fixtureTables,
		"Containers.json": fixtureContainers,
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644))
	}
	return dir
}

// SetupLoader loads the shared fixture data.
func SetupLoader(t *testing.T) *resource.Loader {
	t.Helper()
	rl := resource.NewLoader(WriteFixtureData(t))
	require.NoError(t, rl.Load())
	return rl
}
