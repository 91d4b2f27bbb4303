// Package engine wires the metadata pipeline together: declarations go in,
// a validated graph is cached, and the derivers are exposed as the public
// derivation surface. Consumers hold an Engine instance; there is no
// ambient global.
package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/modelforge-dev/modelforge/internal/cache"
	"github.com/modelforge-dev/modelforge/internal/derive/form"
	jsderive "github.com/modelforge-dev/modelforge/internal/derive/jsonschema"
	"github.com/modelforge-dev/modelforge/internal/derive/rules"
	"github.com/modelforge-dev/modelforge/internal/derive/schema"
	"github.com/modelforge-dev/modelforge/internal/graph"
	"github.com/modelforge-dev/modelforge/internal/metadata"

	"github.com/google/jsonschema-go/jsonschema"
)

// ConsistencyError reports the full batch of issues found after a graph
// build. All issues are collected before failing so an operator can fix
// every declaration in one pass.
type ConsistencyError struct {
	Issues []graph.Issue
}

// Error implements the error interface
func (e *ConsistencyError) Error() string {
	if len(e.Issues) == 1 {
		return "metadata validation failed: " + e.Issues[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "metadata validation failed with %d issues:", len(e.Issues))
	for _, issue := range e.Issues {
		b.WriteString("\n  ")
		b.WriteString(issue.String())
	}
	return b.String()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// Engine is the metadata pipeline facade. It is safe for concurrent use:
// the graph is immutable once published and the derivers are pure.
type Engine struct {
	decls  []*metadata.ModelDeclaration
	logger *zap.Logger
	cache  *cache.Cache
}

// New creates an engine over a fixed declaration set. The graph is built
// lazily on first access; construction itself never fails.
func New(decls []*metadata.ModelDeclaration, opts ...Option) *Engine {
	e := &Engine{
		decls:  decls,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache = cache.New(e.load, cache.WithLogger(e.logger))
	return e
}

// load builds and validates a fresh graph. Warning-severity issues are
// logged and tolerated; error-severity issues abort the build so no
// inconsistent graph is ever cached.
func (e *Engine) load() (*graph.Graph, error) {
	g, err := graph.NewBuilder().Build(e.decls)
	if err != nil {
		return nil, err
	}

	issues := graph.Validate(g)
	var fatal []graph.Issue
	for _, issue := range issues {
		if issue.Severity == graph.SeverityError {
			fatal = append(fatal, issue)
		} else {
			e.logger.Warn("metadata consistency warning",
				zap.String("model", string(issue.Model)),
				zap.String("path", issue.Path),
				zap.String("kind", string(issue.Kind)),
				zap.String("message", issue.Message))
		}
	}
	if len(fatal) > 0 {
		return nil, &ConsistencyError{Issues: fatal}
	}

	return g, nil
}

// Graph returns the cached metadata graph, building it if needed.
func (e *Engine) Graph() (*graph.Graph, error) {
	return e.cache.Graph()
}

// Model returns one model's metadata.
func (e *Engine) Model(id metadata.ModelID) (*metadata.ModelMetadata, error) {
	return e.cache.Model(id)
}

// Lint builds the graph without caching it and returns every consistency
// issue, warnings included. Build failures (unreadable declarations,
// unresolvable targets) are still errors; there is nothing to lint without
// a graph.
func (e *Engine) Lint() ([]graph.Issue, error) {
	g, err := graph.NewBuilder().Build(e.decls)
	if err != nil {
		return nil, err
	}
	return graph.Validate(g), nil
}

// DeriveSchema returns the schema scripts for one model: its own table
// plus any pivot tables its relationships introduce.
func (e *Engine) DeriveSchema(id metadata.ModelID) ([]*schema.Script, error) {
	g, err := e.cache.Graph()
	if err != nil {
		return nil, err
	}
	model, ok := g.Model(id)
	if !ok {
		return nil, fmt.Errorf("model %q is not declared", id)
	}
	return schema.Derive(g, model)
}

// DeriveAllSchemas returns scripts for every model in dependency order, so
// referenced tables are created before the tables that reference them.
// Pivot scripts are deduplicated by table name: both sides of a
// many-to-many derive the identical script, and it appears once, after
// both of its endpoint tables.
func (e *Engine) DeriveAllSchemas() ([]*schema.Script, error) {
	g, err := e.cache.Graph()
	if err != nil {
		return nil, err
	}

	order, err := graph.NewDependencyGraph(g).TopologicalSort()
	if err != nil {
		// cycles are reported as warnings at build time; fall back to
		// declaration order so schema output still covers every model
		e.logger.Warn("falling back to declaration order", zap.Error(err))
		order = g.IDs()
	}

	var out []*schema.Script
	var pivots []*schema.Script
	seenPivot := make(map[string]bool)

	for _, id := range order {
		model, _ := g.Model(id)
		scripts, err := schema.Derive(g, model)
		if err != nil {
			return nil, err
		}
		for _, script := range scripts {
			if script.Pivot {
				if !seenPivot[script.Table] {
					seenPivot[script.Table] = true
					pivots = append(pivots, script)
				}
				continue
			}
			out = append(out, script)
		}
	}

	return append(out, pivots...), nil
}

// DeriveValidationRules returns the field-keyed validation rules for one
// model.
func (e *Engine) DeriveValidationRules(id metadata.ModelID) (map[string][]metadata.RuleDescriptor, error) {
	g, err := e.cache.Graph()
	if err != nil {
		return nil, err
	}
	model, ok := g.Model(id)
	if !ok {
		return nil, fmt.Errorf("model %q is not declared", id)
	}
	return rules.Derive(g, model)
}

// DeriveFormDefinition returns the form descriptors for one model. A
// non-nil record pre-fills descriptor values for edit forms.
func (e *Engine) DeriveFormDefinition(id metadata.ModelID, record map[string]interface{}) ([]form.Descriptor, error) {
	g, err := e.cache.Graph()
	if err != nil {
		return nil, err
	}
	model, ok := g.Model(id)
	if !ok {
		return nil, fmt.Errorf("model %q is not declared", id)
	}
	return form.Derive(g, model, record)
}

// ExportJSONSchema returns a JSON Schema document for one model's payloads.
func (e *Engine) ExportJSONSchema(id metadata.ModelID) (*jsonschema.Schema, error) {
	g, err := e.cache.Graph()
	if err != nil {
		return nil, err
	}
	model, ok := g.Model(id)
	if !ok {
		return nil, fmt.Errorf("model %q is not declared", id)
	}
	return jsderive.Derive(g, model)
}

// DependencyOrder returns model identities ordered so that every model
// appears after the models its foreign keys reference.
func (e *Engine) DependencyOrder() ([]metadata.ModelID, error) {
	g, err := e.cache.Graph()
	if err != nil {
		return nil, err
	}
	return graph.NewDependencyGraph(g).TopologicalSort()
}

// Invalidate drops the cached graph; the next derivation rebuilds it.
func (e *Engine) Invalidate(ids ...metadata.ModelID) {
	e.cache.Invalidate(ids...)
}

// Rebuild builds a fresh graph immediately, keeping the previous one
// published if the build fails.
func (e *Engine) Rebuild() error {
	return e.cache.Rebuild()
}

// Stats summarizes the cached graph.
type Stats struct {
	BuildID       string `json:"build_id"`
	Models        int    `json:"models"`
	Fields        int    `json:"fields"`
	Relationships int    `json:"relationships"`
}

// Stats returns summary counts for the cached graph.
func (e *Engine) Stats() (Stats, error) {
	g, err := e.cache.Graph()
	if err != nil {
		return Stats{}, err
	}
	s := Stats{BuildID: g.BuildID(), Models: g.Len()}
	for _, model := range g.Models() {
		s.Fields += len(model.FieldOrder)
		s.Relationships += len(model.RelationOrder)
	}
	return s, nil
}
