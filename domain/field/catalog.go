package field

import (
	"strings"

	"notelens/domain/core"
)

// DateFieldName is the system-derived time axis present in every
// dataset row regardless of the notebook template.
const DateFieldName = "date"

// Catalog is the merged, name-unique set of field definitions for one
// notebook: template fields, system fields and any AI-derived fields.
type Catalog struct {
	defs  []Definition
	byKey map[string]int // normalized name -> index into defs
}

// NewCatalog builds a catalog from notebook template fields plus the
// always-present system date field. Later definitions with a duplicate
// name are dropped; the first definition of a name wins.
func NewCatalog(templateFields []Definition) *Catalog {
	c := &Catalog{byKey: make(map[string]int)}
	c.add(Definition{
		ID:       DateFieldName,
		Name:     DateFieldName,
		Role:     RoleDimension,
		DataType: TypeDate,
		Source:   SourceSystem,
	})
	for _, def := range templateFields {
		c.add(def)
	}
	return c
}

func (c *Catalog) add(def Definition) bool {
	key := NormalizeName(def.Name)
	if key == "" {
		return false
	}
	if _, exists := c.byKey[key]; exists {
		return false
	}
	if def.ID == "" {
		def.ID = core.FieldID(key)
	}
	c.byKey[key] = len(c.defs)
	c.defs = append(c.defs, def)
	return true
}

// Adopt registers an AI-derived definition. Returns false when the name
// already exists (the existing definition wins).
func (c *Catalog) Adopt(name string, role Role, dataType DataType) bool {
	return c.add(Definition{
		Name:     name,
		Role:     role,
		DataType: dataType,
		Source:   SourceAIDerived,
	})
}

// Remove deletes a definition by name. System fields cannot be removed.
func (c *Catalog) Remove(name string) bool {
	key := NormalizeName(name)
	idx, ok := c.byKey[key]
	if !ok || c.defs[idx].Source == SourceSystem {
		return false
	}
	c.defs = append(c.defs[:idx], c.defs[idx+1:]...)
	delete(c.byKey, key)
	for k, i := range c.byKey {
		if i > idx {
			c.byKey[k] = i - 1
		}
	}
	return true
}

// Lookup finds a definition by display name (normalized match)
func (c *Catalog) Lookup(name string) (Definition, bool) {
	idx, ok := c.byKey[NormalizeName(name)]
	if !ok {
		return Definition{}, false
	}
	return c.defs[idx], true
}

// Fields returns all definitions in insertion order
func (c *Catalog) Fields() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Metrics returns metric-role definitions in insertion order
func (c *Catalog) Metrics() []Definition {
	var out []Definition
	for _, def := range c.defs {
		if def.IsMetric() {
			out = append(out, def)
		}
	}
	return out
}

// Dimensions returns dimension-role definitions in insertion order
func (c *Catalog) Dimensions() []Definition {
	var out []Definition
	for _, def := range c.defs {
		if def.IsDimension() {
			out = append(out, def)
		}
	}
	return out
}

// Len returns the number of definitions
func (c *Catalog) Len() int {
	return len(c.defs)
}

// NormalizeName lowers a display name and collapses whitespace to
// underscores so "Mood Score" and "mood_score" resolve to one field.
func NormalizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return strings.Join(strings.Fields(name), "_")
}
