// Package organize implements the second pipeline stage: deciding which
// semantic data types an extraction record carries and producing one
// normalized record set per type. Model extraction is attempted first; when
// its output is absent or unusable, a non-model fallback runs. Finding
// nothing is a valid outcome, never an error.
package organize

import (
	"regexp"
	"sort"

	"github.com/financeai/docledger/internal/document"
)

// EntityExtractor is the per-type extraction procedure. The set of supported
// entity names is open: the registry answers unknown names with a generic
// extractor that has no structural fallback.
type EntityExtractor interface {
	Entity() string

	// ExtractPrompt builds the model prompt for this entity over the given
	// content block.
	ExtractPrompt(contextBlock string) string

	// Validate normalizes one candidate record, reporting whether it
	// survives. Dropped records are not failures.
	Validate(rec *document.Record) (*document.Record, bool)

	// StructuralFallback produces records from text without the model.
	// Returns nil when no pattern exists for this entity.
	StructuralFallback(text string) []*document.Record

	// TabularFallback reports whether already-parsed source rows may stand
	// in directly when model extraction yields nothing usable.
	TabularFallback() bool
}

// Registry maps entity names to their extractors.
type Registry struct {
	byName  map[string]EntityExtractor
	generic func(entity string) EntityExtractor
}

func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]EntityExtractor),
		generic: newGenericExtractor,
	}
}

// DefaultRegistry wires the built-in entity types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(newTransactionsExtractor())
	r.Register(newBudgetsExtractor())
	r.Register(newAccountsExtractor())
	return r
}

func (r *Registry) Register(e EntityExtractor) {
	r.byName[e.Entity()] = e
}

// Lookup returns the extractor for an entity name, falling back to the
// generic one for unknown names.
func (r *Registry) Lookup(entity string) EntityExtractor {
	if e, ok := r.byName[entity]; ok {
		return e
	}
	return r.generic(entity)
}

// Known lists registered entity names, sorted for stable logs.
func (r *Registry) Known() []string {
	out := make([]string, 0, len(r.byName))
	for k := range r.byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Entity names become table names, so only conservative identifiers pass.
var reEntityName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// ValidEntityName reports whether a candidate entity name is safe to use as
// a destination table name.
func ValidEntityName(name string) bool {
	return reEntityName.MatchString(name)
}
