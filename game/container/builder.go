package container

// Builder assembles a Container from its construction parameters. World and
// loot collaborators use it directly or through a resource template.
type Builder struct {
	name          string
	slotCount     int
	maxWeight     float64
	allowStacking bool
	constraints   []AddConstraint
}

// NewBuilder starts a builder with stacking enabled and no weight ceiling.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, allowStacking: true}
}

// SlotCount sets the fixed number of slots.
func (b *Builder) SlotCount(n int) *Builder {
	b.slotCount = n
	return b
}

// MaxWeight sets the weight ceiling; 0 means unlimited.
func (b *Builder) MaxWeight(w float64) *Builder {
	b.maxWeight = w
	return b
}

// AllowStacking toggles whether add operations may merge onto existing stacks.
func (b *Builder) AllowStacking(v bool) *Builder {
	b.allowStacking = v
	return b
}

// Constrain appends admission constraints in evaluation order.
func (b *Builder) Constrain(cs ...AddConstraint) *Builder {
	b.constraints = append(b.constraints, cs...)
	return b
}

// Build produces the container.
func (b *Builder) Build() *Container {
	c := New(b.name, b.slotCount)
	c.maxWeight = b.maxWeight
	c.allowStacking = b.allowStacking
	c.constraints = append([]AddConstraint(nil), b.constraints...)
	return c
}
