package container

import (
	"sort"

	"github.com/google/uuid"
	"github.com/kasuganosora/itemvault/server/game/item"
)

// SlotChangeFunc observes a single slot mutation.
type SlotChangeFunc func(index int, previous, current item.Stack)

// ChangeFunc observes any storage mutation ("re-read everything").
type ChangeFunc func()

// Container is a fixed-capacity, indexed sequence of item stacks with a
// stacking policy, a weight ceiling and an ordered admission-constraint list.
//
// All mutation is expected to happen on one logical thread; there is no
// internal locking. Change notifications fire synchronously in-line with the
// mutating call; handlers must not re-enter mutation on the same container.
type Container struct {
	id            string
	name          string
	slots         []item.Stack
	allowStacking bool
	maxWeight     float64
	constraints   []AddConstraint

	slotSubs []SlotChangeFunc
	subs     []ChangeFunc
}

// New creates a container with the given name and slot count. Prefer the
// Builder for anything beyond defaults.
func New(name string, slotCount int) *Container {
	if slotCount < 0 {
		slotCount = 0
	}
	return &Container{
		id:            uuid.New().String(),
		name:          name,
		slots:         make([]item.Stack, slotCount),
		allowStacking: true,
	}
}

// ID returns the container's unique ID.
func (c *Container) ID() string { return c.id }

// Name returns the container's display name.
func (c *Container) Name() string { return c.name }

// SlotCount returns the fixed number of slots.
func (c *Container) SlotCount() int { return len(c.slots) }

// AllowsStacking reports whether merge passes may top up existing stacks.
func (c *Container) AllowsStacking() bool { return c.allowStacking }

// MaxWeight returns the weight ceiling; 0 means unlimited.
func (c *Container) MaxWeight() float64 { return c.maxWeight }

// Constraints returns the ordered admission pipeline.
func (c *Container) Constraints() []AddConstraint { return c.constraints }

// ItemAt returns the stack at index i, or the empty stack when out of range.
func (c *Container) ItemAt(i int) item.Stack {
	if i < 0 || i >= len(c.slots) {
		return item.Empty
	}
	return c.slots[i]
}

// SetItemAt places a stack into slot i, clamping the quantity to the item's
// slot capacity, and returns how many units were actually stored. An empty or
// invalid stack clears the slot. Callers must never assume the full request
// was applied.
func (c *Container) SetItemAt(i int, s item.Stack) int {
	if i < 0 || i >= len(c.slots) {
		return 0
	}
	prev := c.slots[i]
	if !s.IsValid() {
		c.slots[i] = item.Empty
		if !prev.IsEmpty() {
			c.notifySlot(i, prev, item.Empty)
		}
		return 0
	}
	qty := s.Quantity
	if limit := s.SlotCapacity(); qty > limit {
		qty = limit
	}
	cur := item.Stack{Item: s.Item, Quantity: qty}
	c.slots[i] = cur
	c.notifySlot(i, prev, cur)
	return qty
}

// AdjustQuantityAt changes the quantity of slot i by delta, clamped to
// [0, slot capacity], and returns the delta actually applied. A slot reaching
// quantity 0 becomes the empty slot. An empty slot cannot be increased; it
// has no item to stack onto.
func (c *Container) AdjustQuantityAt(i int, delta int) int {
	if i < 0 || i >= len(c.slots) || delta == 0 {
		return 0
	}
	prev := c.slots[i]
	if prev.IsEmpty() {
		return 0
	}
	qty := prev.Quantity + delta
	if qty < 0 {
		qty = 0
	}
	if limit := prev.SlotCapacity(); qty > limit {
		qty = limit
	}
	applied := qty - prev.Quantity
	if applied == 0 {
		return 0
	}
	cur := item.Stack{Item: prev.Item, Quantity: qty}
	if qty == 0 {
		cur = item.Empty
	}
	c.slots[i] = cur
	c.notifySlot(i, prev, cur)
	return applied
}

// Clear empties every slot.
func (c *Container) Clear() {
	for i := range c.slots {
		prev := c.slots[i]
		if prev.IsEmpty() {
			continue
		}
		c.slots[i] = item.Empty
		for _, fn := range c.slotSubs {
			fn(i, prev, item.Empty)
		}
	}
	c.notifyChanged()
}

// SortSlots reorders the slots with a stable sort. Empty slots sort last
// regardless of the comparator.
func (c *Container) SortSlots(less func(a, b item.Stack) bool) {
	before := make([]item.Stack, len(c.slots))
	copy(before, c.slots)
	sort.SliceStable(c.slots, func(i, j int) bool {
		a, b := c.slots[i], c.slots[j]
		switch {
		case a.IsEmpty() && b.IsEmpty():
			return false
		case a.IsEmpty():
			return false
		case b.IsEmpty():
			return true
		default:
			return less(a, b)
		}
	})
	for i := range c.slots {
		if before[i] != c.slots[i] {
			for _, fn := range c.slotSubs {
				fn(i, before[i], c.slots[i])
			}
		}
	}
	c.notifyChanged()
}

// UsedWeight returns the summed weight of all stored stacks.
func (c *Container) UsedWeight() float64 {
	var w float64
	for _, s := range c.slots {
		w += s.Weight()
	}
	return w
}

// AvailableWeight returns the remaining weight budget, or -1 when the
// container has no ceiling.
func (c *Container) AvailableWeight() float64 {
	if c.maxWeight <= 0 {
		return -1
	}
	avail := c.maxWeight - c.UsedWeight()
	if avail < 0 {
		avail = 0
	}
	return avail
}

// OnSlotChanged registers a per-slot mutation observer.
func (c *Container) OnSlotChanged(fn SlotChangeFunc) {
	c.slotSubs = append(c.slotSubs, fn)
}

// OnChanged registers a storage-level mutation observer.
func (c *Container) OnChanged(fn ChangeFunc) {
	c.subs = append(c.subs, fn)
}

func (c *Container) notifySlot(i int, prev, cur item.Stack) {
	for _, fn := range c.slotSubs {
		fn(i, prev, cur)
	}
	c.notifyChanged()
}

func (c *Container) notifyChanged() {
	for _, fn := range c.subs {
		fn()
	}
}
