package item

import "math/rand"

// Item is a concrete instance of a definition together with its own mutable
// dynamic properties. A nil *Item is the null item ("no item"). Instances are
// exclusively owned by the single stack holding them; moving a stack between
// containers transfers ownership, it never shares the property array.
type Item struct {
	def   *Definition
	props []DynamicProperty
	probe bool
}

// New creates an item instance, rolling one dynamic property per generator on
// the definition. Unknown property IDs roll as plain floats.
func New(def *Definition, props PropertySource, rng *rand.Rand) *Item {
	if def == nil {
		return nil
	}
	it := &Item{def: def}
	if len(def.Generators) > 0 {
		it.props = make([]DynamicProperty, len(def.Generators))
		for i, g := range def.Generators {
			var pd *PropertyDefinition
			if props != nil {
				pd = props.PropertyDefinition(g.Property)
			}
			it.props[i] = DynamicProperty{def: pd, value: g.Roll(pd, rng)}
		}
	}
	return it
}

// Probe creates a lightweight, property-less instance used only for
// constraint legality checks. Probes are stack-local scratch values: they must
// never be stored into a slot.
func Probe(def *Definition) *Item {
	if def == nil {
		return nil
	}
	return &Item{def: def, probe: true}
}

// IsNull reports whether the item is the null item.
func (it *Item) IsNull() bool { return it == nil || it.def == nil }

// IsProbe reports whether the item is a legality-check scratch instance.
func (it *Item) IsProbe() bool { return it != nil && it.probe }

// Definition returns the immutable template, or nil for the null item.
func (it *Item) Definition() *Definition {
	if it == nil {
		return nil
	}
	return it.def
}

// DefinitionID returns the template ID, or 0 for the null item.
func (it *Item) DefinitionID() DefinitionID {
	if it.IsNull() {
		return 0
	}
	return it.def.ID
}

// Property returns the dynamic property keyed by id, or nil if the definition
// carries no generator for it.
func (it *Item) Property(id PropertyID) *DynamicProperty {
	if it == nil {
		return nil
	}
	for i := range it.props {
		if it.props[i].ID() == id {
			return &it.props[i]
		}
	}
	return nil
}

// Properties returns the instance's dynamic-property cells in declaration
// order.
func (it *Item) Properties() []*DynamicProperty {
	if it == nil {
		return nil
	}
	out := make([]*DynamicProperty, len(it.props))
	for i := range it.props {
		out[i] = &it.props[i]
	}
	return out
}

// Clone deep-copies the instance. Property values are copied; change
// subscribers are not carried over.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	c := &Item{def: it.def}
	if len(it.props) > 0 {
		c.props = make([]DynamicProperty, len(it.props))
		for i := range it.props {
			c.props[i] = DynamicProperty{def: it.props[i].def, value: it.props[i].value}
		}
	}
	return c
}
