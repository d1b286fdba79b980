package item

// Value is a tagged variant holding one dynamic-property value. Exactly one
// payload field is meaningful, selected by Kind.
type Value struct {
	Kind Kind         `json:"kind"`
	F    float64      `json:"f,omitempty"`
	I    int64        `json:"i,omitempty"`
	B    bool         `json:"b,omitempty"`
	Link DefinitionID `json:"link,omitempty"`
}

// FloatValue builds a float-kinded value.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, F: f} }

// IntValue builds an int-kinded value.
func IntValue(i int64) Value { return Value{Kind: KindInt, I: i} }

// BoolValue builds a bool-kinded value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, B: b} }

// LinkValue builds a linked-definition value.
func LinkValue(id DefinitionID) Value { return Value{Kind: KindLink, Link: id} }

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool { return v == o }

// PropertyChangeFunc observes a dynamic-property value change.
type PropertyChangeFunc func(id PropertyID, previous, current Value)

// DynamicProperty is a runtime-mutable typed value cell attached to an item
// instance. The set of properties on an instance is fixed at construction;
// only values change afterwards.
type DynamicProperty struct {
	def   *PropertyDefinition
	value Value
	subs  []PropertyChangeFunc
}

// Definition returns the property definition this cell is keyed by.
func (p *DynamicProperty) Definition() *PropertyDefinition { return p.def }

// ID returns the property-definition ID, or 0 for an unbound cell.
func (p *DynamicProperty) ID() PropertyID {
	if p.def == nil {
		return 0
	}
	return p.def.ID
}

// Value returns the current value.
func (p *DynamicProperty) Value() Value { return p.value }

// Set replaces the value and notifies subscribers synchronously. Setting an
// identical value is a no-op and fires nothing.
func (p *DynamicProperty) Set(v Value) {
	if p.value.Equal(v) {
		return
	}
	prev := p.value
	p.value = v
	for _, fn := range p.subs {
		fn(p.ID(), prev, v)
	}
}

// OnChange registers a change subscriber. Subscribers cannot be removed; the
// cell dies with its owning item instance.
func (p *DynamicProperty) OnChange(fn PropertyChangeFunc) {
	p.subs = append(p.subs, fn)
}
