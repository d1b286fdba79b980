package item

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// DefinitionID identifies an item definition. 0 is reserved for "no item".
type DefinitionID int

// PropertyID identifies a dynamic-property definition.
type PropertyID int

// Kind is the declared value type of a dynamic property.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindBool
	KindLink // linked item definition ID (e.g. an attachment)
)

var kindNames = map[Kind]string{
	KindFloat: "float",
	KindInt:   "int",
	KindBool:  "bool",
	KindLink:  "link",
}

// String returns the data-file name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalJSON writes the kind as its data-file name.
func (k Kind) MarshalJSON() ([]byte, error) {
	n, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown property kind %d", int(k))
	}
	return json.Marshal(n)
}

// UnmarshalJSON reads a kind from its data-file name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var n string
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	for kind, name := range kindNames {
		if name == n {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown property kind %q", n)
}

// PropertyDefinition describes one dynamic property that item instances can
// carry: durability, charge count, linked attachment, and so on.
type PropertyDefinition struct {
	ID   PropertyID `json:"id"`
	Name string     `json:"name"`
	Kind Kind       `json:"kind"`
}

// PropertyGenerator produces the initial value for one dynamic property when
// an item instance is created. Min == Max means a fixed value.
type PropertyGenerator struct {
	Property PropertyID `json:"property"`
	Min      float64    `json:"min"`
	Max      float64    `json:"max"`
}

// Roll produces an initial value of the declared kind. A nil rng yields Min.
func (g PropertyGenerator) Roll(def *PropertyDefinition, rng *rand.Rand) Value {
	v := g.Min
	if rng != nil && g.Max > g.Min {
		v = g.Min + rng.Float64()*(g.Max-g.Min)
	}
	kind := KindFloat
	if def != nil {
		kind = def.Kind
	}
	switch kind {
	case KindInt:
		return IntValue(int64(v))
	case KindBool:
		return BoolValue(v != 0)
	case KindLink:
		return LinkValue(DefinitionID(v))
	default:
		return FloatValue(v)
	}
}

// Definition is the immutable template for a kind of item. Definitions are
// created once at load time from static data and shared by reference; nothing
// mutates them at runtime.
type Definition struct {
	ID         DefinitionID        `json:"id"`
	Name       string              `json:"name"`
	Weight     float64             `json:"weight"`
	Stackable  bool                `json:"stackable"`
	MaxStack   int                 `json:"maxStack"`
	Category   string              `json:"category"`
	Rarity     int                 `json:"rarity"`
	Generators []PropertyGenerator `json:"properties,omitempty"`
	Actions    []string            `json:"actions,omitempty"`
}

// StackLimit returns the maximum quantity a single stack of this item may
// hold. Non-stackable items report 0.
func (d *Definition) StackLimit() int {
	if d == nil || !d.Stackable {
		return 0
	}
	return d.MaxStack
}

// SlotCapacity returns how many units one slot can physically hold: the stack
// limit for stackable items, exactly 1 for singletons.
func (d *Definition) SlotCapacity() int {
	if limit := d.StackLimit(); limit > 0 {
		return limit
	}
	return 1
}

// PropertySource resolves property-definition IDs. The resource catalog
// implements this.
type PropertySource interface {
	PropertyDefinition(id PropertyID) *PropertyDefinition
}
