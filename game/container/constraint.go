package container

import (
	"fmt"
	"math"

	"github.com/kasuganosora/itemvault/server/game/item"
)

// AddConstraint is one admission-control rule consulted before an add. It may
// shrink (never grow) the allowed quantity and supplies a rejection reason
// used when it zeroes the request.
type AddConstraint interface {
	AllowedCount(c *Container, it *item.Item, requested int) int
	Reason() string
}

// AllowedCount folds the container's constraint pipeline in list order. Each
// stage receives the previous stage's result, so the allowance is
// monotonically non-increasing. Evaluation halts the moment a stage returns 0
// and that stage's reason is reported. With no constraints the full request is
// allowed.
func (c *Container) AllowedCount(it *item.Item, requested int) (int, string) {
	if requested < 0 {
		requested = 0
	}
	allowed := requested
	for _, ac := range c.constraints {
		next := ac.AllowedCount(c, it, allowed)
		if next > allowed {
			next = allowed
		}
		if next < 0 {
			next = 0
		}
		allowed = next
		if allowed == 0 {
			return 0, ac.Reason()
		}
	}
	return allowed, ""
}

// ---- Shipped constraints ----

// SingleStack caps a definition at one stack's worth of units in the whole
// container: allowed = stack limit - units already held.
type SingleStack struct{}

func (SingleStack) AllowedCount(c *Container, it *item.Item, requested int) int {
	if it.IsNull() {
		return 0
	}
	limit := it.Definition().SlotCapacity()
	held := 0
	for i := 0; i < c.SlotCount(); i++ {
		s := c.ItemAt(i)
		if !s.IsEmpty() && s.Item.DefinitionID() == it.DefinitionID() {
			held += s.Quantity
		}
	}
	allowed := limit - held
	if allowed < 0 {
		allowed = 0
	}
	if allowed > requested {
		allowed = requested
	}
	return allowed
}

func (SingleStack) Reason() string { return "only one stack of this item fits here" }

// DenyCategories rejects items whose category is on the list.
type DenyCategories struct {
	Categories []string
}

func (d DenyCategories) AllowedCount(_ *Container, it *item.Item, requested int) int {
	if it.IsNull() {
		return 0
	}
	for _, cat := range d.Categories {
		if it.Definition().Category == cat {
			return 0
		}
	}
	return requested
}

func (d DenyCategories) Reason() string {
	return fmt.Sprintf("items of category %v are not allowed here", d.Categories)
}

// AllowCategories rejects items whose category is NOT on the list.
type AllowCategories struct {
	Categories []string
}

func (a AllowCategories) AllowedCount(_ *Container, it *item.Item, requested int) int {
	if it.IsNull() {
		return 0
	}
	for _, cat := range a.Categories {
		if it.Definition().Category == cat {
			return requested
		}
	}
	return 0
}

func (a AllowCategories) Reason() string {
	return fmt.Sprintf("only items of category %v are allowed here", a.Categories)
}

// WeightBudget shrinks the request to whatever fits under the container's
// weight ceiling. Weightless items always fit.
type WeightBudget struct{}

func (WeightBudget) AllowedCount(c *Container, it *item.Item, requested int) int {
	if it.IsNull() {
		return 0
	}
	if c.MaxWeight() <= 0 {
		return requested
	}
	unit := it.Definition().Weight
	if unit <= 0 {
		return requested
	}
	avail := c.MaxWeight() - c.UsedWeight()
	if avail <= 0 {
		return 0
	}
	fits := int(math.Floor(avail / unit))
	if fits > requested {
		fits = requested
	}
	return fits
}

func (WeightBudget) Reason() string { return "too heavy to carry" }

// MaxUnits caps the total units of any single definition in the container.
type MaxUnits struct {
	Limit int
}

func (m MaxUnits) AllowedCount(c *Container, it *item.Item, requested int) int {
	if it.IsNull() {
		return 0
	}
	held := 0
	for i := 0; i < c.SlotCount(); i++ {
		s := c.ItemAt(i)
		if !s.IsEmpty() && s.Item.DefinitionID() == it.DefinitionID() {
			held += s.Quantity
		}
	}
	allowed := m.Limit - held
	if allowed < 0 {
		allowed = 0
	}
	if allowed > requested {
		allowed = requested
	}
	return allowed
}

func (m MaxUnits) Reason() string {
	return fmt.Sprintf("no more than %d of one item fits here", m.Limit)
}
