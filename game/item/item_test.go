package item

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type propSource map[PropertyID]*PropertyDefinition

func (ps propSource) PropertyDefinition(id PropertyID) *PropertyDefinition { return ps[id] }

var testProps = propSource{
	1: {ID: 1, Name: "damage", Kind: KindInt},
	2: {ID: 2, Name: "charge", Kind: KindFloat},
	3: {ID: 3, Name: "broken", Kind: KindBool},
	4: {ID: 4, Name: "gem", Kind: KindLink},
}

func swordDef() *Definition {
	return &Definition{
		ID: 3, Name: "sword", Weight: 5, Category: "weapon",
		Generators: []PropertyGenerator{
			{Property: 1, Min: 5, Max: 15},
			{Property: 2, Min: 1, Max: 1},
		},
	}
}

func TestStackLimit(t *testing.T) {
	gold := &Definition{ID: 1, Stackable: true, MaxStack: 9999}
	assert.Equal(t, 9999, gold.StackLimit())
	assert.Equal(t, 9999, gold.SlotCapacity())

	sword := swordDef()
	assert.Equal(t, 0, sword.StackLimit(), "singleton reports no stack limit")
	assert.Equal(t, 1, sword.SlotCapacity(), "singleton still occupies one slot")
}

func TestNewRollsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	it := New(swordDef(), testProps, rng)
	require.NotNil(t, it)

	dmg := it.Property(1)
	require.NotNil(t, dmg)
	assert.Equal(t, KindInt, dmg.Value().Kind)
	assert.GreaterOrEqual(t, dmg.Value().I, int64(5))
	assert.LessOrEqual(t, dmg.Value().I, int64(15))

	charge := it.Property(2)
	require.NotNil(t, charge)
	assert.Equal(t, FloatValue(1), charge.Value(), "min == max is a fixed value")
}

func TestNewNilRngYieldsMin(t *testing.T) {
	it := New(swordDef(), testProps, nil)
	assert.Equal(t, IntValue(5), it.Property(1).Value())
}

func TestGeneratorRollKinds(t *testing.T) {
	g := PropertyGenerator{Property: 3, Min: 1, Max: 1}
	assert.Equal(t, BoolValue(true), g.Roll(testProps[3], nil))

	g = PropertyGenerator{Property: 4, Min: 42, Max: 42}
	assert.Equal(t, LinkValue(42), g.Roll(testProps[4], nil))

	// No definition defaults to float.
	g = PropertyGenerator{Property: 99, Min: 2.5, Max: 2.5}
	assert.Equal(t, FloatValue(2.5), g.Roll(nil, nil))
}

func TestPropertySetNotifies(t *testing.T) {
	it := New(swordDef(), testProps, nil)
	p := it.Property(1)

	var got []Value
	p.OnChange(func(id PropertyID, prev, cur Value) {
		assert.Equal(t, PropertyID(1), id)
		got = append(got, prev, cur)
	})

	p.Set(IntValue(7))
	require.Len(t, got, 2)
	assert.Equal(t, IntValue(5), got[0])
	assert.Equal(t, IntValue(7), got[1])

	// Identical value is a no-op.
	p.Set(IntValue(7))
	assert.Len(t, got, 2)
}

func TestCloneIndependence(t *testing.T) {
	it := New(swordDef(), testProps, nil)

	fired := 0
	it.Property(1).OnChange(func(PropertyID, Value, Value) { fired++ })

	cp := it.Clone()
	require.NotNil(t, cp)
	assert.Equal(t, it.Property(1).Value(), cp.Property(1).Value())

	// Mutating the clone leaves the original untouched and fires none of the
	// original's subscribers.
	cp.Property(1).Set(IntValue(99))
	assert.Equal(t, IntValue(5), it.Property(1).Value())
	assert.Equal(t, 0, fired)

	it.Property(1).Set(IntValue(6))
	assert.Equal(t, 1, fired)
	assert.Equal(t, IntValue(99), cp.Property(1).Value())
}

func TestProbeHasNoProperties(t *testing.T) {
	p := Probe(swordDef())
	assert.True(t, p.IsProbe())
	assert.False(t, p.IsNull())
	assert.Nil(t, p.Property(1))
	assert.Empty(t, p.Properties())
}

func TestNilItemAccessors(t *testing.T) {
	var it *Item
	assert.True(t, it.IsNull())
	assert.Equal(t, DefinitionID(0), it.DefinitionID())
	assert.Nil(t, it.Definition())
	assert.Nil(t, it.Clone())
}

func TestStackHelpers(t *testing.T) {
	assert.True(t, Empty.IsEmpty())
	assert.False(t, Empty.IsValid())

	gold := &Definition{ID: 1, Weight: 0.01, Stackable: true, MaxStack: 9999}
	s := Stack{Item: New(gold, testProps, nil), Quantity: 100}
	assert.True(t, s.IsValid())
	assert.InDelta(t, 1.0, s.Weight(), 1e-9)

	other := Stack{Item: New(gold, testProps, nil), Quantity: 1}
	assert.True(t, s.CanMergeWith(other))

	sword := Stack{Item: New(swordDef(), testProps, nil), Quantity: 1}
	assert.False(t, s.CanMergeWith(sword))
}
