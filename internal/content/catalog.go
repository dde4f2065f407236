package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the catalog schema major version this build understands.
const SupportedMajor = "v1"

// ErrUnsupportedSchemaVersion is returned for catalogs written for another major version.
var ErrUnsupportedSchemaVersion = errors.New("unsupported catalog schema version")

// Catalog is the declarative content set consumed by the engine.
type Catalog struct {
	SchemaVersion string            `yaml:"schema_version"`
	Modules       []Module          `yaml:"modules,omitempty"`
	Lessons       []Lesson          `yaml:"lessons,omitempty"`
	SkillNodes    []SkillNode       `yaml:"skill_nodes,omitempty"`
	Achievements  []AchievementType `yaml:"achievements,omitempty"`
	Challenges    []DailyChallenge  `yaml:"daily_challenges,omitempty"`
}

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// catalogSchema compiles the embedded document schema once.
func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(catalogSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://catalog.json"
		if err := c.AddResource(url, doc); err != nil {
			schemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(url)
	})
	return compiledSchema, schemaErr
}

// LoadFile reads and parses a YAML catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document. The document shape is checked
// against the embedded JSON schema and the schema version must be a semver
// with a supported major version. Semantic problems (cycles, dangling
// references) are left to Validate.
func Parse(data []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	if err := validateShape(plainDates(raw)); err != nil {
		return nil, err
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := checkVersion(cat.SchemaVersion); err != nil {
		return nil, err
	}
	cat.normalize()
	return &cat, nil
}

// plainDates rewrites the timestamps YAML resolves from unquoted dates back
// to DateLayout strings, the form the document schema expects.
func plainDates(v any) any {
	switch v := v.(type) {
	case time.Time:
		return v.Format(DateLayout)
	case map[string]any:
		for k, e := range v {
			v[k] = plainDates(e)
		}
	case []any:
		for i, e := range v {
			v[i] = plainDates(e)
		}
	}
	return v
}

func validateShape(raw any) error {
	schema, err := catalogSchema()
	if err != nil {
		return err
	}
	// Round-trip through JSON so the validator sees plain JSON values.
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode catalog for validation: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("decode catalog for validation: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("catalog does not match schema: %w", err)
	}
	return nil
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedSchemaVersion, v)
	}
	if semver.Major(v) != SupportedMajor {
		return fmt.Errorf("%w: %s (want %s.x)", ErrUnsupportedSchemaVersion, v, SupportedMajor)
	}
	return nil
}

// normalize fills derived fields: lesson order within a module follows the
// module's lesson list when the lesson leaves Order unset.
func (c *Catalog) normalize() {
	pos := make(map[string]int)
	for _, m := range c.Modules {
		for i, id := range m.LessonIDs {
			pos[id] = i + 1
		}
	}
	for i := range c.Lessons {
		if c.Lessons[i].Order == 0 {
			c.Lessons[i].Order = pos[c.Lessons[i].ID]
		}
	}
}

// Disciplines returns every discipline named by modules or skill nodes, sorted.
func (c *Catalog) Disciplines() []Discipline {
	set := make(map[Discipline]bool)
	for _, m := range c.Modules {
		set[m.Discipline] = true
	}
	for _, n := range c.SkillNodes {
		set[n.Discipline] = true
	}
	out := make([]Discipline, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ModulesFor returns the modules of one discipline in catalog order.
func (c *Catalog) ModulesFor(d Discipline) []Module {
	var out []Module
	for _, m := range c.Modules {
		if m.Discipline == d {
			out = append(out, m)
		}
	}
	return out
}

// SkillTreeFor returns the skill nodes of one discipline in catalog order.
func (c *Catalog) SkillTreeFor(d Discipline) []SkillNode {
	var out []SkillNode
	for _, n := range c.SkillNodes {
		if n.Discipline == d {
			out = append(out, n)
		}
	}
	return out
}

// AchievementsFor returns the achievements of a category.
func (c *Catalog) AchievementsFor(category string) []AchievementType {
	var out []AchievementType
	for _, a := range c.Achievements {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}
