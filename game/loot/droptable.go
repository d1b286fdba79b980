package loot

import (
	"math/rand"

	"github.com/kasuganosora/itemvault/server/game/container"
	"github.com/kasuganosora/itemvault/server/game/item"
	"go.uber.org/zap"
)

// Entry pairs a generator with a relative probability weight. Weights need
// not sum to anything in particular; they are relative shares.
type Entry struct {
	Generator Generator `json:"generator"`
	Weight    float64   `json:"weight"`
}

// Table is a weighted random generator of item stacks. The total weight is
// cached at construction and used as the random range ceiling.
type Table struct {
	name    string
	entries []Entry
	total   float64
}

// NewTable builds a drop table. Entries with non-positive weight are kept in
// the list but can never be drawn.
func NewTable(name string, entries []Entry) *Table {
	t := &Table{name: name, entries: entries}
	for _, e := range entries {
		if e.Weight > 0 {
			t.total += e.Weight
		}
	}
	return t
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// TotalWeight returns the cached sum of entry weights.
func (t *Table) TotalWeight() float64 { return t.total }

// Roll draws one entry and invokes its generator against the target's
// admission pipeline. A draw whose entry yields nothing, because the
// definition is absent or the constraints reject it, produces the empty
// stack for that iteration; there is no retry. Filtered-out entries
// therefore lower the effective drop rate. rarityBias is handed through to
// the entry's generator; entry weights themselves are never rescaled.
func (t *Table) Roll(src CatalogSource, target *container.Container, rarityBias float64, rng *rand.Rand) item.Stack {
	if t.total <= 0 || len(t.entries) == 0 {
		return item.Empty
	}
	draw := rng.Float64() * t.total
	var cum float64
	for _, e := range t.entries {
		if e.Weight <= 0 {
			continue
		}
		cum += e.Weight
		if draw < cum {
			return e.Generator.Generate(src, target, rarityBias, rng)
		}
	}
	return item.Empty
}

// RollMany performs n independent draws and collects only the valid results;
// the output may be shorter than n.
func (t *Table) RollMany(n int, src CatalogSource, target *container.Container, rarityBias float64, rng *rand.Rand) []item.Stack {
	var out []item.Stack
	for i := 0; i < n; i++ {
		if s := t.Roll(src, target, rarityBias, rng); s.IsValid() {
			out = append(out, s)
		}
	}
	return out
}

// Service rolls drop tables into containers and inventories.
type Service struct {
	src    CatalogSource
	ops    *container.Service
	rng    *rand.Rand
	logger *zap.Logger
}

// NewService creates a loot service sharing the operations service's catalog.
func NewService(src CatalogSource, ops *container.Service, rng *rand.Rand, logger *zap.Logger) *Service {
	return &Service{src: src, ops: ops, rng: rng, logger: logger}
}

// PopulateContainer repeatedly rolls the table and adds the result, up to
// target stacks, stopping early once the container reports it is full.
// Returns the number of stacks (partially or fully) added.
func (s *Service) PopulateContainer(c *container.Container, t *Table, target int, rarityBias float64) int {
	placed := 0
	for i := 0; i < target; i++ {
		st := t.Roll(s.src, c, rarityBias, s.rng)
		if !st.IsValid() {
			continue
		}
		added, reason := s.ops.AddStack(c, st)
		if added > 0 {
			placed++
		}
		if reason == container.ReasonInventoryFull {
			break
		}
	}
	if s.logger != nil {
		s.logger.Debug("container populated",
			zap.String("table", t.Name()),
			zap.String("container", c.Name()),
			zap.Int("stacks", placed),
		)
	}
	return placed
}

// PopulateInventory fills the inventory's containers first-fit: each
// container is populated up to the remaining target before moving on to the
// next, not round-robin.
func (s *Service) PopulateInventory(inv *container.Inventory, t *Table, target int, rarityBias float64) int {
	placed := 0
	for _, c := range inv.Containers() {
		if placed >= target {
			break
		}
		placed += s.PopulateContainer(c, t, target-placed, rarityBias)
	}
	return placed
}
