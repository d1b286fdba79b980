package item

// Stack is the unit of storage: an item instance plus a quantity. The zero
// Stack is the empty slot.
type Stack struct {
	Item     *Item
	Quantity int
}

// Empty is the canonical empty-slot stack.
var Empty = Stack{}

// IsEmpty reports whether the stack represents an empty slot.
func (s Stack) IsEmpty() bool { return s.Item.IsNull() || s.Quantity <= 0 }

// IsValid reports whether the stack may be stored or passed to a mutation:
// non-null item and positive quantity.
func (s Stack) IsValid() bool { return !s.Item.IsNull() && s.Quantity > 0 }

// CanMergeWith reports whether two stacks hold the same item definition.
// Dynamic-property state is not part of mergeability; merging keeps the
// destination stack's properties.
func (s Stack) CanMergeWith(o Stack) bool {
	return s.IsValid() && o.IsValid() && s.Item.DefinitionID() == o.Item.DefinitionID()
}

// StackLimit returns the stack's maximum quantity, 0 for non-stackable items
// and empty stacks.
func (s Stack) StackLimit() int { return s.Item.Definition().StackLimit() }

// SlotCapacity returns how many units a slot holding this stack's item can
// take in total.
func (s Stack) SlotCapacity() int {
	if s.Item.IsNull() {
		return 0
	}
	return s.Item.Definition().SlotCapacity()
}

// Weight returns the total weight of the stack.
func (s Stack) Weight() float64 {
	if s.IsEmpty() {
		return 0
	}
	return s.Item.Definition().Weight * float64(s.Quantity)
}
