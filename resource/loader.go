package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kasuganosora/itemvault/server/game/container"
	"github.com/kasuganosora/itemvault/server/game/item"
	"github.com/kasuganosora/itemvault/server/game/loot"
)

// ---- Static data structures ----

// ConstraintSpec describes one admission constraint in a container template.
type ConstraintSpec struct {
	Type       string   `json:"type"` // single_stack | allow_categories | deny_categories | weight_budget | max_units
	Categories []string `json:"categories,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// PresetSpec is a fixed stack a container template starts with.
type PresetSpec struct {
	Definition item.DefinitionID `json:"definition"`
	Quantity   int               `json:"quantity"`
}

// ContainerTemplate is a serializable rule set that can both build a
// container and populate it from preset items plus an optional drop table.
type ContainerTemplate struct {
	Name          string           `json:"name"`
	Slots         int              `json:"slots"`
	MaxWeight     float64          `json:"maxWeight"`
	AllowStacking bool             `json:"allowStacking"`
	Constraints   []ConstraintSpec `json:"constraints,omitempty"`
	Preset        []PresetSpec     `json:"preset,omitempty"`
	DropTable     string           `json:"dropTable,omitempty"`
	DropCount     int              `json:"dropCount,omitempty"`
	RarityBias    float64          `json:"rarityBias,omitempty"`
}

// TableData is the on-disk form of a drop table.
type TableData struct {
	Name    string       `json:"name"`
	Entries []loot.Entry `json:"entries"`
}

// Loader loads and indexes the static item data: definitions, property
// definitions, drop tables and container templates.
type Loader struct {
	DataPath string

	Definitions []*item.Definition
	Properties  []*item.PropertyDefinition
	Templates   []*ContainerTemplate

	defByID    map[item.DefinitionID]*item.Definition
	propByID   map[item.PropertyID]*item.PropertyDefinition
	byCategory map[string][]*item.Definition
	categories []string
	tables     map[string]*loot.Table
	templates  map[string]*ContainerTemplate
}

// NewLoader creates a Loader rooted at the given data directory.
func NewLoader(dataPath string) *Loader {
	return &Loader{
		DataPath:   dataPath,
		defByID:    make(map[item.DefinitionID]*item.Definition),
		propByID:   make(map[item.PropertyID]*item.PropertyDefinition),
		byCategory: make(map[string][]*item.Definition),
		tables:     make(map[string]*loot.Table),
		templates:  make(map[string]*ContainerTemplate),
	}
}

func (rl *Loader) path(name string) string {
	return filepath.Join(rl.DataPath, name)
}

// Load reads every data file and builds the lookup indexes. Malformed data is
// a configuration error: Load fails hard so problems surface at startup, not
// at runtime mutation time.
func (rl *Loader) Load() error {
	if err := rl.loadProperties(); err != nil {
		return err
	}
	if err := rl.loadDefinitions(); err != nil {
		return err
	}
	if err := rl.loadTables(); err != nil {
		return err
	}
	if err := rl.loadTemplates(); err != nil {
		return err
	}
	return rl.validate()
}

func loadJSONArray[T any](path string) ([]*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resource: read %s: %w", path, err)
	}
	var out []*T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("resource: parse %s: %w", path, err)
	}
	return out, nil
}

func (rl *Loader) loadProperties() error {
	props, err := loadJSONArray[item.PropertyDefinition](rl.path("Properties.json"))
	if err != nil {
		return err
	}
	rl.Properties = props
	for _, p := range props {
		if p == nil {
			continue
		}
		rl.propByID[p.ID] = p
	}
	return nil
}

func (rl *Loader) loadDefinitions() error {
	defs, err := loadJSONArray[item.Definition](rl.path("Items.json"))
	if err != nil {
		return err
	}
	rl.Definitions = defs
	for _, d := range defs {
		if d == nil || d.ID == 0 {
			continue
		}
		rl.defByID[d.ID] = d
		if _, seen := rl.byCategory[d.Category]; !seen {
			rl.categories = append(rl.categories, d.Category)
		}
		rl.byCategory[d.Category] = append(rl.byCategory[d.Category], d)
	}
	return nil
}

func (rl *Loader) loadTables() error {
	tables, err := loadJSONArray[TableData](rl.path("DropTables.json"))
	if err != nil {
		return err
	}
	for _, td := range tables {
		if td == nil {
			continue
		}
		rl.tables[td.Name] = loot.NewTable(td.Name, td.Entries)
	}
	return nil
}

func (rl *Loader) loadTemplates() error {
	templates, err := loadJSONArray[ContainerTemplate](rl.path("Containers.json"))
	if err != nil {
		return err
	}
	rl.Templates = templates
	for _, t := range templates {
		if t == nil {
			continue
		}
		rl.templates[t.Name] = t
	}
	return nil
}

// validate rejects cross-references that cannot be resolved.
func (rl *Loader) validate() error {
	for _, d := range rl.Definitions {
		if d == nil {
			continue
		}
		if d.Stackable && d.MaxStack <= 0 {
			return fmt.Errorf("resource: item %d (%s) is stackable with no maxStack", d.ID, d.Name)
		}
		for _, g := range d.Generators {
			if _, ok := rl.propByID[g.Property]; !ok {
				return fmt.Errorf("resource: item %d (%s) references unknown property %d", d.ID, d.Name, g.Property)
			}
		}
	}
	for _, t := range rl.Templates {
		if t == nil {
			continue
		}
		if t.DropTable != "" {
			if _, ok := rl.tables[t.DropTable]; !ok {
				return fmt.Errorf("resource: container %q references unknown drop table %q", t.Name, t.DropTable)
			}
		}
		for _, p := range t.Preset {
			if _, ok := rl.defByID[p.Definition]; !ok {
				return fmt.Errorf("resource: container %q preset references unknown item %d", t.Name, p.Definition)
			}
		}
		for _, cs := range t.Constraints {
			if _, err := buildConstraint(cs); err != nil {
				return fmt.Errorf("resource: container %q: %w", t.Name, err)
			}
		}
	}
	return nil
}

// ---- Catalog lookups ----

// Definition returns the item definition with the given ID, or nil.
func (rl *Loader) Definition(id item.DefinitionID) *item.Definition {
	return rl.defByID[id]
}

// PropertyDefinition returns the property definition with the given ID, or nil.
func (rl *Loader) PropertyDefinition(id item.PropertyID) *item.PropertyDefinition {
	return rl.propByID[id]
}

// Categories returns every distinct category tag in load order.
func (rl *Loader) Categories() []string { return rl.categories }

// DefinitionsByCategory returns all definitions carrying the given tag.
func (rl *Loader) DefinitionsByCategory(cat string) []*item.Definition {
	return rl.byCategory[cat]
}

// Table returns the drop table with the given name, or nil.
func (rl *Loader) Table(name string) *loot.Table { return rl.tables[name] }

// Template returns the container template with the given name, or nil.
func (rl *Loader) Template(name string) *ContainerTemplate { return rl.templates[name] }

// ---- Template building ----

func buildConstraint(cs ConstraintSpec) (container.AddConstraint, error) {
	switch cs.Type {
	case "single_stack":
		return container.SingleStack{}, nil
	case "allow_categories":
		return container.AllowCategories{Categories: cs.Categories}, nil
	case "deny_categories":
		return container.DenyCategories{Categories: cs.Categories}, nil
	case "weight_budget":
		return container.WeightBudget{}, nil
	case "max_units":
		return container.MaxUnits{Limit: cs.Limit}, nil
	default:
		return nil, fmt.Errorf("unknown constraint type %q", cs.Type)
	}
}

// BuildContainer instantiates a template: builds the container, adds the
// preset stacks through the normal add path, then rolls the template's drop
// table if it names one. ops is required; drops may be nil when no template
// uses a drop table.
func (rl *Loader) BuildContainer(name string, ops *container.Service, drops *loot.Service) (*container.Container, error) {
	tmpl := rl.templates[name]
	if tmpl == nil {
		return nil, fmt.Errorf("resource: unknown container template %q", name)
	}
	b := container.NewBuilder(tmpl.Name).
		SlotCount(tmpl.Slots).
		MaxWeight(tmpl.MaxWeight).
		AllowStacking(tmpl.AllowStacking)
	for _, cs := range tmpl.Constraints {
		ac, err := buildConstraint(cs)
		if err != nil {
			return nil, fmt.Errorf("resource: container %q: %w", tmpl.Name, err)
		}
		b.Constrain(ac)
	}
	c := b.Build()
	for _, p := range tmpl.Preset {
		ops.AddByID(c, p.Definition, p.Quantity)
	}
	if tmpl.DropTable != "" && tmpl.DropCount > 0 && drops != nil {
		drops.PopulateContainer(c, rl.tables[tmpl.DropTable], tmpl.DropCount, tmpl.RarityBias)
	}
	return c, nil
}
