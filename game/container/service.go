package container

import (
	"math/rand"

	"github.com/kasuganosora/itemvault/server/game/item"
	"go.uber.org/zap"
)

// Mutation rejection reasons. Constraint-specific reasons come from the
// failing constraint verbatim.
const (
	ReasonInvalidItem   = "invalid item"
	ReasonInventoryFull = "inventory full"
)

// DefinitionSource resolves definition and property IDs. The resource catalog
// implements this.
type DefinitionSource interface {
	item.PropertySource
	Definition(id item.DefinitionID) *item.Definition
}

// Service implements the add/remove/query algorithms against containers.
// Mutations never panic: they report (appliedAmount, reasonOrEmpty), and
// partial application is an expected outcome, not an error.
type Service struct {
	defs   DefinitionSource
	rng    *rand.Rand
	logger *zap.Logger
}

// NewService creates a container operations service. rng feeds dynamic
// property rolls when fresh instances are allocated.
func NewService(defs DefinitionSource, rng *rand.Rand, logger *zap.Logger) *Service {
	return &Service{defs: defs, rng: rng, logger: logger}
}

// AddStack adds the given stack to the container: constraint pipeline first,
// then a merge pass over compatible non-full stacks, then a fill pass over
// empty slots. Returns how many units were stored and a rejection reason when
// nothing was.
func (s *Service) AddStack(c *Container, st item.Stack) (int, string) {
	if !st.IsValid() || st.Item.IsProbe() {
		return 0, ReasonInvalidItem
	}
	allowed, reason := c.AllowedCount(st.Item, st.Quantity)
	if allowed == 0 {
		if reason == "" {
			reason = ReasonInventoryFull
		}
		return 0, reason
	}
	remaining := allowed
	remaining -= s.mergePass(c, st.Item, remaining)

	// Fill pass. The first filled slot takes the caller's instance; any
	// overflow slot gets an independent clone so property state never aliases
	// across slots.
	inst := st.Item
	for i := 0; i < c.SlotCount() && remaining > 0; i++ {
		if !c.ItemAt(i).IsEmpty() {
			continue
		}
		if inst == nil {
			inst = st.Item.Clone()
		}
		placed := c.SetItemAt(i, item.Stack{Item: inst, Quantity: remaining})
		if placed > 0 {
			remaining -= placed
			inst = nil
		}
	}

	added := allowed - remaining
	if added == 0 {
		return 0, ReasonInventoryFull
	}
	s.logAdd(c, st.Item.DefinitionID(), added)
	return added, ""
}

// AddByID adds raw quantity of a definition without a pre-built instance.
// Constraint checks use a stack-local probe; the fill pass allocates a fresh,
// independent instance per newly filled slot. Sharing one instance across
// slots would couple their dynamic properties, which must diverge per stack.
func (s *Service) AddByID(c *Container, id item.DefinitionID, amount int) (int, string) {
	def := s.defs.Definition(id)
	if def == nil || amount <= 0 {
		return 0, ReasonInvalidItem
	}
	probe := item.Probe(def)
	allowed, reason := c.AllowedCount(probe, amount)
	if allowed == 0 {
		if reason == "" {
			reason = ReasonInventoryFull
		}
		return 0, reason
	}
	remaining := allowed
	remaining -= s.mergePass(c, probe, remaining)

	for i := 0; i < c.SlotCount() && remaining > 0; i++ {
		if !c.ItemAt(i).IsEmpty() {
			continue
		}
		inst := item.New(def, s.defs, s.rng)
		placed := c.SetItemAt(i, item.Stack{Item: inst, Quantity: remaining})
		remaining -= placed
	}

	added := allowed - remaining
	if added == 0 {
		return 0, ReasonInventoryFull
	}
	s.logAdd(c, id, added)
	return added, ""
}

// mergePass tops up existing mergeable, non-full stacks front-to-back and
// returns the amount absorbed. Skipped entirely when the storage forbids
// stacking or the item is a singleton.
func (s *Service) mergePass(c *Container, it *item.Item, remaining int) int {
	if !c.AllowsStacking() || it.Definition().StackLimit() == 0 {
		return 0
	}
	absorbed := 0
	for i := 0; i < c.SlotCount() && remaining > 0; i++ {
		slot := c.ItemAt(i)
		if slot.IsEmpty() || slot.Item.DefinitionID() != it.DefinitionID() {
			continue
		}
		applied := c.AdjustQuantityAt(i, remaining)
		absorbed += applied
		remaining -= applied
	}
	return absorbed
}

// Remove removes up to amount units matching the filter, scanning slots
// front-to-back and clamping per slot. Returns the amount actually removed.
func (s *Service) Remove(c *Container, f Filter, amount int) (int, string) {
	if f == nil || amount <= 0 {
		return 0, ReasonInvalidItem
	}
	remaining := amount
	for i := 0; i < c.SlotCount() && remaining > 0; i++ {
		slot := c.ItemAt(i)
		if slot.IsEmpty() || !f(slot.Item) {
			continue
		}
		applied := c.AdjustQuantityAt(i, -remaining)
		remaining += applied // applied is negative
	}
	return amount - remaining, ""
}

// Contains reports whether any stored item matches the filter.
func (s *Service) Contains(c *Container, f Filter) bool {
	return s.Count(c, f) > 0
}

// Count returns the total quantity of stored items matching the filter.
func (s *Service) Count(c *Container, f Filter) int {
	if f == nil {
		return 0
	}
	total := 0
	for i := 0; i < c.SlotCount(); i++ {
		slot := c.ItemAt(i)
		if !slot.IsEmpty() && f(slot.Item) {
			total += slot.Quantity
		}
	}
	return total
}

func (s *Service) logAdd(c *Container, id item.DefinitionID, added int) {
	if s.logger == nil {
		return
	}
	s.logger.Debug("items added",
		zap.String("container", c.Name()),
		zap.Int("definition", int(id)),
		zap.Int("added", added),
	)
}
