package container

import (
	"encoding/json"
	"fmt"

	"github.com/kasuganosora/itemvault/server/game/item"
)

// Inventory is an ordered list of containers exclusively owned by one actor.
type Inventory struct {
	name       string
	containers []*Container
}

// NewInventory creates an empty inventory.
func NewInventory(name string) *Inventory {
	return &Inventory{name: name}
}

// Name returns the inventory's name.
func (inv *Inventory) Name() string { return inv.name }

// AddContainer appends a container. Order matters: adds are first-fit in
// container order.
func (inv *Inventory) AddContainer(c *Container) {
	inv.containers = append(inv.containers, c)
}

// Containers returns the container list in order.
func (inv *Inventory) Containers() []*Container { return inv.containers }

// Container returns the first container with the given name, or nil.
func (inv *Inventory) Container(name string) *Container {
	for _, c := range inv.containers {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// AddStack adds a stack across the inventory first-fit: each container is
// filled as far as it will go before moving to the next. Returns the total
// added and, when nothing was added, the last container's rejection reason.
func (s *Service) AddStackToInventory(inv *Inventory, st item.Stack) (int, string) {
	if !st.IsValid() {
		return 0, ReasonInvalidItem
	}
	remaining := st.Quantity
	total := 0
	reason := ReasonInventoryFull
	for _, c := range inv.Containers() {
		if remaining == 0 {
			break
		}
		added, r := s.AddStack(c, item.Stack{Item: st.Item, Quantity: remaining})
		if added == 0 {
			if r != "" {
				reason = r
			}
			continue
		}
		// Later containers must not alias the already-stored instance.
		st = item.Stack{Item: st.Item.Clone(), Quantity: remaining - added}
		total += added
		remaining -= added
	}
	if total == 0 {
		return 0, reason
	}
	return total, ""
}

// AddByIDToInventory adds raw quantity of a definition across the inventory
// first-fit.
func (s *Service) AddByIDToInventory(inv *Inventory, id item.DefinitionID, amount int) (int, string) {
	if amount <= 0 {
		return 0, ReasonInvalidItem
	}
	remaining := amount
	total := 0
	reason := ReasonInventoryFull
	for _, c := range inv.Containers() {
		if remaining == 0 {
			break
		}
		added, r := s.AddByID(c, id, remaining)
		if added == 0 {
			if r != "" {
				reason = r
			}
			continue
		}
		total += added
		remaining -= added
	}
	if total == 0 {
		return 0, reason
	}
	return total, ""
}

// RemoveFromInventory removes up to amount matching units, walking containers
// in order.
func (s *Service) RemoveFromInventory(inv *Inventory, f Filter, amount int) (int, string) {
	if f == nil || amount <= 0 {
		return 0, ReasonInvalidItem
	}
	remaining := amount
	for _, c := range inv.Containers() {
		if remaining == 0 {
			break
		}
		removed, _ := s.Remove(c, f, remaining)
		remaining -= removed
	}
	return amount - remaining, ""
}

// CountInInventory sums matching units over all containers.
func (s *Service) CountInInventory(inv *Inventory, f Filter) int {
	total := 0
	for _, c := range inv.Containers() {
		total += s.Count(c, f)
	}
	return total
}

// ---- Snapshot / Restore ----
//
// The snapshot is opaque bytes for the persistence collaborator. Constraints
// are code, not data: Restore refills stacks into the inventory's existing
// containers (matched by name) without re-running admission, and rebuilds a
// plain container for snapshot entries with no live counterpart.

type propertySnapshot struct {
	ID    item.PropertyID `json:"id"`
	Value item.Value      `json:"value"`
}

type slotSnapshot struct {
	Slot       int                `json:"slot"`
	Definition item.DefinitionID  `json:"definition"`
	Quantity   int                `json:"quantity"`
	Properties []propertySnapshot `json:"properties,omitempty"`
}

type containerSnapshot struct {
	Name          string         `json:"name"`
	Slots         int            `json:"slots"`
	AllowStacking bool           `json:"allowStacking"`
	MaxWeight     float64        `json:"maxWeight"`
	Items         []slotSnapshot `json:"items"`
}

type inventorySnapshot struct {
	Name       string              `json:"name"`
	Containers []containerSnapshot `json:"containers"`
}

// Snapshot serializes the inventory's stacks to opaque bytes.
func (inv *Inventory) Snapshot() ([]byte, error) {
	snap := inventorySnapshot{Name: inv.name}
	for _, c := range inv.containers {
		cs := containerSnapshot{
			Name:          c.Name(),
			Slots:         c.SlotCount(),
			AllowStacking: c.AllowsStacking(),
			MaxWeight:     c.MaxWeight(),
		}
		for i := 0; i < c.SlotCount(); i++ {
			s := c.ItemAt(i)
			if s.IsEmpty() {
				continue
			}
			ss := slotSnapshot{Slot: i, Definition: s.Item.DefinitionID(), Quantity: s.Quantity}
			for _, p := range s.Item.Properties() {
				ss.Properties = append(ss.Properties, propertySnapshot{ID: p.ID(), Value: p.Value()})
			}
			cs.Items = append(cs.Items, ss)
		}
		snap.Containers = append(snap.Containers, cs)
	}
	return json.Marshal(snap)
}

// Restore replaces the inventory's stacks from snapshot bytes. Definitions
// absent from the source are skipped rather than failing the whole restore.
func (inv *Inventory) Restore(data []byte, defs DefinitionSource) error {
	var snap inventorySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("inventory restore: %w", err)
	}
	if snap.Name != "" {
		inv.name = snap.Name
	}
	for _, cs := range snap.Containers {
		c := inv.Container(cs.Name)
		if c == nil {
			c = NewBuilder(cs.Name).
				SlotCount(cs.Slots).
				MaxWeight(cs.MaxWeight).
				AllowStacking(cs.AllowStacking).
				Build()
			inv.AddContainer(c)
		} else {
			c.Clear()
		}
		for _, ss := range cs.Items {
			def := defs.Definition(ss.Definition)
			if def == nil {
				continue
			}
			inst := item.New(def, defs, nil)
			for _, ps := range ss.Properties {
				if p := inst.Property(ps.ID); p != nil {
					p.Set(ps.Value)
				}
			}
			st := item.Stack{Item: inst, Quantity: ss.Quantity}
			if c.SetItemAt(ss.Slot, st) == 0 {
				// The slot index came from a larger, older layout; reflow the
				// stack into the first free slot rather than dropping it.
				for i := 0; i < c.SlotCount(); i++ {
					if c.ItemAt(i).IsEmpty() {
						c.SetItemAt(i, st)
						break
					}
				}
			}
		}
	}
	return nil
}
