package loot

import (
	"math/rand"

	"github.com/kasuganosora/itemvault/server/game/container"
	"github.com/kasuganosora/itemvault/server/game/item"
)

// Strategy selects how a Generator picks a definition. The set is closed.
type Strategy string

const (
	// SpecificItem generates an exact definition.
	SpecificItem Strategy = "specific"
	// RandomFromCategory picks uniformly among a category's eligible members.
	RandomFromCategory Strategy = "category"
	// RandomFromAllItems picks a random eligible category first, then a
	// random eligible member. Item probability is weighted by category size,
	// not flat uniform across all items.
	RandomFromAllItems Strategy = "all"
)

// CatalogSource is what a generator needs from the item catalog.
type CatalogSource interface {
	container.DefinitionSource
	Categories() []string
	DefinitionsByCategory(cat string) []*item.Definition
}

// Generator produces item stacks for drop tables and loot templates. It is
// JSON-serializable so resource data can describe it.
type Generator struct {
	Strategy   Strategy          `json:"strategy"`
	Definition item.DefinitionID `json:"definition,omitempty"`
	Category   string            `json:"category,omitempty"`
	MinCount   int               `json:"minCount,omitempty"`
	MaxCount   int               `json:"maxCount,omitempty"`
}

// Generate produces a concrete stack, or the empty stack when the strategy
// yields nothing. When target is non-nil the pick is subject to the target's
// admission pipeline, exactly like any other add: definitions the pipeline
// fully rejects are not eligible. rarityBias skews the random strategies
// towards higher-rarity definitions; 0 keeps the pick uniform, and the
// SpecificItem strategy ignores it.
func (g Generator) Generate(src CatalogSource, target *container.Container, rarityBias float64, rng *rand.Rand) item.Stack {
	def := g.pick(src, target, rarityBias, rng)
	if def == nil {
		return item.Empty
	}
	qty := g.rollCount(rng)
	if qty <= 0 {
		return item.Empty
	}
	return item.Stack{Item: item.New(def, src, rng), Quantity: qty}
}

func (g Generator) pick(src CatalogSource, target *container.Container, rarityBias float64, rng *rand.Rand) *item.Definition {
	switch g.Strategy {
	case SpecificItem:
		def := src.Definition(g.Definition)
		if def == nil || !eligible(def, target) {
			return nil
		}
		return def
	case RandomFromCategory:
		return pickFromCategory(src, g.Category, target, rarityBias, rng)
	case RandomFromAllItems:
		cats := eligibleCategories(src, target)
		if len(cats) == 0 {
			return nil
		}
		return pickFromCategory(src, cats[rng.Intn(len(cats))], target, rarityBias, rng)
	default:
		return nil
	}
}

func (g Generator) rollCount(rng *rand.Rand) int {
	min, max := g.MinCount, g.MaxCount
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min
	}
	if max == min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// eligible reports whether at least one unit of def would pass the target's
// admission pipeline. A nil target accepts everything.
func eligible(def *item.Definition, target *container.Container) bool {
	if target == nil {
		return true
	}
	allowed, _ := target.AllowedCount(item.Probe(def), 1)
	return allowed > 0
}

func pickFromCategory(src CatalogSource, cat string, target *container.Container, rarityBias float64, rng *rand.Rand) *item.Definition {
	members := src.DefinitionsByCategory(cat)
	candidates := members[:0:0]
	var total float64
	for _, def := range members {
		if eligible(def, target) {
			candidates = append(candidates, def)
			total += rarityWeight(def, rarityBias)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	draw := rng.Float64() * total
	var cum float64
	for _, def := range candidates {
		cum += rarityWeight(def, rarityBias)
		if draw < cum {
			return def
		}
	}
	return candidates[len(candidates)-1]
}

// rarityWeight is a candidate's share in a biased pick. Bias 0 keeps every
// candidate at weight 1, so the draw stays uniform.
func rarityWeight(def *item.Definition, bias float64) float64 {
	if bias <= 0 {
		return 1
	}
	return 1 + bias*float64(def.Rarity)
}

func eligibleCategories(src CatalogSource, target *container.Container) []string {
	var cats []string
	for _, cat := range src.Categories() {
		for _, def := range src.DefinitionsByCategory(cat) {
			if eligible(def, target) {
				cats = append(cats, cat)
				break
			}
		}
	}
	return cats
}
