package container

import "github.com/kasuganosora/itemvault/server/game/item"

// Filter selects items for remove and query operations.
type Filter func(*item.Item) bool

// ByDefinition matches items of one definition.
func ByDefinition(id item.DefinitionID) Filter {
	return func(it *item.Item) bool { return !it.IsNull() && it.DefinitionID() == id }
}

// ByCategory matches items whose definition carries the given category tag.
func ByCategory(cat string) Filter {
	return func(it *item.Item) bool { return !it.IsNull() && it.Definition().Category == cat }
}

// Any matches every non-null item.
func Any() Filter {
	return func(it *item.Item) bool { return !it.IsNull() }
}
