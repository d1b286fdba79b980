package loot

import (
	"math/rand"
	"testing"

	"github.com/kasuganosora/itemvault/server/game/container"
	"github.com/kasuganosora/itemvault/server/game/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// catalog is the in-memory CatalogSource used across the package tests.
type catalog struct {
	defs  map[item.DefinitionID]*item.Definition
	props map[item.PropertyID]*item.PropertyDefinition
	cats  []string
}

func (c *catalog) Definition(id item.DefinitionID) *item.Definition { return c.defs[id] }
func (c *catalog) PropertyDefinition(id item.PropertyID) *item.PropertyDefinition {
	return c.props[id]
}
func (c *catalog) Categories() []string { return c.cats }
func (c *catalog) DefinitionsByCategory(cat string) []*item.Definition {
	var out []*item.Definition
	for _, d := range c.defs {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}

func testCatalog() *catalog {
	return &catalog{
		defs: map[item.DefinitionID]*item.Definition{
			1: {ID: 1, Name: "gold", Category: "currency", Weight: 0.01, Stackable: true, MaxStack: 9999},
			2: {ID: 2, Name: "potion", Category: "consumable", Weight: 0.5, Stackable: true, MaxStack: 10},
			3: {ID: 3, Name: "sword", Category: "weapon", Weight: 5},
			4: {ID: 4, Name: "relic blade", Category: "weapon", Weight: 5, Rarity: 9},
		},
		cats: []string{"currency", "consumable", "weapon"},
	}
}

func TestGeneratorSpecific(t *testing.T) {
	src := testCatalog()
	rng := rand.New(rand.NewSource(1))

	g := Generator{Strategy: SpecificItem, Definition: 1, MinCount: 10, MaxCount: 50}
	for i := 0; i < 20; i++ {
		st := g.Generate(src, nil, 0, rng)
		require.True(t, st.IsValid())
		assert.Equal(t, item.DefinitionID(1), st.Item.DefinitionID())
		assert.GreaterOrEqual(t, st.Quantity, 10)
		assert.LessOrEqual(t, st.Quantity, 50)
	}
}

func TestGeneratorFixedCount(t *testing.T) {
	src := testCatalog()
	g := Generator{Strategy: SpecificItem, Definition: 3}
	st := g.Generate(src, nil, 0, rand.New(rand.NewSource(1)))
	require.True(t, st.IsValid())
	assert.Equal(t, 1, st.Quantity, "count defaults to 1")
}

func TestGeneratorUnknownDefinition(t *testing.T) {
	src := testCatalog()
	g := Generator{Strategy: SpecificItem, Definition: 999}
	st := g.Generate(src, nil, 0, rand.New(rand.NewSource(1)))
	assert.True(t, st.IsEmpty())
}

func TestGeneratorFromCategory(t *testing.T) {
	src := testCatalog()
	rng := rand.New(rand.NewSource(3))
	g := Generator{Strategy: RandomFromCategory, Category: "consumable"}
	st := g.Generate(src, nil, 0, rng)
	require.True(t, st.IsValid())
	assert.Equal(t, "consumable", st.Item.Definition().Category)
}

func TestGeneratorRespectsTargetConstraints(t *testing.T) {
	src := testCatalog()
	rng := rand.New(rand.NewSource(4))
	weaponless := container.NewBuilder("pouch").SlotCount(2).
		Constrain(container.DenyCategories{Categories: []string{"weapon"}}).
		Build()

	g := Generator{Strategy: SpecificItem, Definition: 3}
	st := g.Generate(src, weaponless, 0, rng)
	assert.True(t, st.IsEmpty(), "a fully rejected definition yields nothing")

	// RandomFromAllItems never picks the denied category.
	g = Generator{Strategy: RandomFromAllItems}
	for i := 0; i < 50; i++ {
		st := g.Generate(src, weaponless, 0, rng)
		require.True(t, st.IsValid())
		assert.NotEqual(t, "weapon", st.Item.Definition().Category)
	}
}

func TestGeneratorRarityBias(t *testing.T) {
	src := testCatalog()
	g := Generator{Strategy: RandomFromCategory, Category: "weapon"}

	const n = 4000
	rareShare := func(bias float64, seed int64) float64 {
		rng := rand.New(rand.NewSource(seed))
		rare := 0
		for i := 0; i < n; i++ {
			st := g.Generate(src, nil, bias, rng)
			require.True(t, st.IsValid())
			if st.Item.DefinitionID() == 4 {
				rare++
			}
		}
		return float64(rare) / n
	}

	// Without bias the rarity-9 relic and the rarity-0 sword split evenly.
	assert.InDelta(t, 0.50, rareShare(0, 21), 0.03)

	// Bias 1 gives the relic 1+9 shares against the sword's 1.
	assert.InDelta(t, 10.0/11.0, rareShare(1, 22), 0.03)
}

func fixtureTable() *Table {
	return NewTable("common", []Entry{
		{Weight: 70, Generator: Generator{Strategy: SpecificItem, Definition: 1, MinCount: 10, MaxCount: 50}},
		{Weight: 30, Generator: Generator{Strategy: SpecificItem, Definition: 2, MinCount: 1, MaxCount: 3}},
	})
}

func TestTableWeightedDistribution(t *testing.T) {
	src := testCatalog()
	rng := rand.New(rand.NewSource(99))
	table := fixtureTable()
	assert.InDelta(t, 100.0, table.TotalWeight(), 1e-9)

	const n = 10000
	counts := map[item.DefinitionID]int{}
	for i := 0; i < n; i++ {
		st := table.Roll(src, nil, 0, rng)
		require.True(t, st.IsValid())
		counts[st.Item.DefinitionID()]++
	}

	// 70/30 split within a generous tolerance.
	assert.InDelta(t, 0.70, float64(counts[1])/n, 0.03)
	assert.InDelta(t, 0.30, float64(counts[2])/n, 0.03)
}

func TestTableNoRetryOnRejectedEntry(t *testing.T) {
	src := testCatalog()
	rng := rand.New(rand.NewSource(5))

	// Half the weight points at a definition the target rejects. Those draws
	// yield nothing; the effective drop rate drops instead of re-rolling.
	table := NewTable("mixed", []Entry{
		{Weight: 50, Generator: Generator{Strategy: SpecificItem, Definition: 1}},
		{Weight: 50, Generator: Generator{Strategy: SpecificItem, Definition: 3}},
	})
	noWeapons := container.NewBuilder("pouch").SlotCount(4).
		Constrain(container.DenyCategories{Categories: []string{"weapon"}}).
		Build()

	const n = 2000
	valid := 0
	for i := 0; i < n; i++ {
		if table.Roll(src, noWeapons, 0, rng).IsValid() {
			valid++
		}
	}
	assert.InDelta(t, 0.50, float64(valid)/n, 0.05)
}

func TestTableEmptyAndZeroWeight(t *testing.T) {
	src := testCatalog()
	rng := rand.New(rand.NewSource(1))

	assert.True(t, NewTable("empty", nil).Roll(src, nil, 0, rng).IsEmpty())

	dead := NewTable("dead", []Entry{
		{Weight: 0, Generator: Generator{Strategy: SpecificItem, Definition: 1}},
	})
	assert.Equal(t, float64(0), dead.TotalWeight())
	assert.True(t, dead.Roll(src, nil, 0, rng).IsEmpty())
}

func TestRollMany(t *testing.T) {
	src := testCatalog()
	rng := rand.New(rand.NewSource(2))
	out := fixtureTable().RollMany(25, src, nil, 0, rng)
	assert.Len(t, out, 25, "an unconstrained table yields every draw")
}

func testServices(src *catalog) (*container.Service, *Service) {
	rng := rand.New(rand.NewSource(11))
	ops := container.NewService(src, rng, zap.NewNop())
	return ops, NewService(src, ops, rng, zap.NewNop())
}

func TestPopulateContainer(t *testing.T) {
	src := testCatalog()
	ops, drops := testServices(src)
	c := container.NewBuilder("chest").SlotCount(6).Build()

	placed := drops.PopulateContainer(c, fixtureTable(), 5, 0)
	assert.Equal(t, 5, placed)
	assert.True(t, ops.Contains(c, container.Any()))
}

func TestPopulateStopsWhenFull(t *testing.T) {
	src := testCatalog()
	_, drops := testServices(src)

	// One singleton slot: the first sword fills it, the loop must stop.
	c := container.NewBuilder("display").SlotCount(1).Build()
	swords := NewTable("swords", []Entry{
		{Weight: 1, Generator: Generator{Strategy: SpecificItem, Definition: 3}},
	})
	placed := drops.PopulateContainer(c, swords, 100, 0)
	assert.Equal(t, 1, placed)
}

func TestPopulateInventoryFirstFit(t *testing.T) {
	src := testCatalog()
	ops, drops := testServices(src)
	inv := container.NewInventory("hero")
	inv.AddContainer(container.NewBuilder("a").SlotCount(1).Build())
	inv.AddContainer(container.NewBuilder("b").SlotCount(2).Build())

	swords := NewTable("swords", []Entry{
		{Weight: 1, Generator: Generator{Strategy: SpecificItem, Definition: 3}},
	})
	placed := drops.PopulateInventory(inv, swords, 3, 0)
	assert.Equal(t, 3, placed)
	assert.Equal(t, 1, ops.Count(inv.Container("a"), container.ByDefinition(3)))
	assert.Equal(t, 2, ops.Count(inv.Container("b"), container.ByDefinition(3)))
}
