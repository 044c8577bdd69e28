// Package fuzz generates one request variant per catalog encoding from a
// template request and its body.
//
// Each variant carries the body re-encoded under one charset, the resolved
// Content-Type and the rebuilt full request. Per-encoding failures are
// isolated: the failing entry is logged and skipped while the others are
// still produced, each keeping its 1-based catalog position as its index.
package fuzz

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/waftester/wafcharset/pkg/charset"
	"github.com/waftester/wafcharset/pkg/rawhttp"
)

// Variant is one generated request. It is immutable once built.
type Variant struct {
	Index       int                  `json:"index"`
	Spec        charset.EncodingSpec `json:"encoding"`
	ContentType string               `json:"content_type"`
	Body        []byte               `json:"-"`
	FullRequest []byte               `json:"-"`
}

// RequestLength is the byte length of the full request.
func (v Variant) RequestLength() int { return len(v.FullRequest) }

// FailureFunc is called for each catalog entry that could not be built.
type FailureFunc func(index int, spec charset.EncodingSpec, err error)

// Config holds generation configuration
type Config struct {
	// ContentTypeTemplate is the Content-Type value with {encoding}
	// placeholders; empty uses charset.DefaultContentType.
	ContentTypeTemplate string

	// Build selects which headers are rewritten.
	Build rawhttp.BuildOptions

	// Engine encodes bodies; nil uses charset.Default().
	Engine *charset.Engine

	// OnFailure observes per-entry failures during GenerateAll.
	OnFailure FailureFunc

	Logger *slog.Logger
}

// DefaultConfig returns a config that rewrites both entity headers and uses
// the default Content-Type template.
func DefaultConfig() Config {
	return Config{
		ContentTypeTemplate: charset.DefaultContentType,
		Build:               rawhttp.DefaultBuildOptions(),
	}
}

// Orchestrator builds request variants.
type Orchestrator struct {
	cfg    Config
	engine *charset.Engine
	logger *slog.Logger
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.ContentTypeTemplate == "" {
		cfg.ContentTypeTemplate = charset.DefaultContentType
	}
	engine := cfg.Engine
	if engine == nil {
		engine = charset.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{cfg: cfg, engine: engine, logger: logger}
}

// ResolveContentType fills the configured template with the charset token
// for encodingName.
func (o *Orchestrator) ResolveContentType(encodingName string) string {
	return charset.ResolveContentType(o.cfg.ContentTypeTemplate, o.engine.CharsetToken(encodingName))
}

// BuildOne encodes body under encodingName and rebuilds the template around
// it. Names outside the catalog are accepted when the engine can resolve
// them; such variants have index 0 and no family.
func (o *Orchestrator) BuildOne(template, body, encodingName string) (Variant, error) {
	spec, ok := charset.LookupSpec(encodingName)
	if !ok {
		spec = charset.EncodingSpec{Name: encodingName, CharsetToken: o.engine.CharsetToken(encodingName)}
	}
	index := 0
	if ok {
		index = catalogIndex(spec.Name)
	}
	return o.build(index, spec, template, body)
}

func (o *Orchestrator) build(index int, spec charset.EncodingSpec, template, body string) (Variant, error) {
	encoded, err := o.engine.Encode(body, spec.Name)
	if err != nil {
		return Variant{}, err
	}
	ct := o.ResolveContentType(spec.Name)
	return Variant{
		Index:       index,
		Spec:        spec,
		ContentType: ct,
		Body:        encoded,
		FullRequest: rawhttp.Build(template, encoded, ct, o.cfg.Build),
	}, nil
}

// GenerateAll builds one variant per catalog entry, in catalog order.
// Entries that fail to encode are omitted; their indices are left as gaps.
// An empty body yields ErrEmptyBody and no variants.
func (o *Orchestrator) GenerateAll(template, body string) ([]Variant, error) {
	if body == "" {
		return nil, ErrEmptyBody
	}

	specs := charset.Catalog()
	variants := make([]Variant, 0, len(specs))
	for i, spec := range specs {
		index := i + 1
		v, err := o.build(index, spec, template, body)
		if err != nil {
			o.logger.Warn("encoding failed",
				slog.Int("index", index),
				slog.String("encoding", spec.Name),
				slog.String("error", err.Error()),
			)
			if o.cfg.OnFailure != nil {
				o.cfg.OnFailure(index, spec, err)
			}
			continue
		}
		o.logger.Debug("variant built",
			slog.Int("index", index),
			slog.String("encoding", spec.Name),
			slog.Int("request_bytes", v.RequestLength()),
		)
		variants = append(variants, v)
	}
	o.logger.Info("fuzz requests generated", slog.Int("count", len(variants)))
	return variants, nil
}

// Sink receives the variants of a run.
type Sink interface {
	// Reset discards everything from a previous run.
	Reset() error
	// Ready records a freshly built, unsent variant.
	Ready(v Variant) error
}

// Run is the outcome of one generation pass.
type Run struct {
	ID       string
	Variants []Variant
}

// Run starts a fuzz run: it resets sink, generates every variant and hands
// each one to sink as ready. With an empty body sink is still reset and
// ErrEmptyBody is returned.
func (o *Orchestrator) Run(ctx context.Context, template, body string, sink Sink) (Run, error) {
	run := Run{ID: uuid.NewString()}
	if err := sink.Reset(); err != nil {
		return run, fmt.Errorf("fuzz: reset results: %w", err)
	}

	variants, err := o.GenerateAll(template, body)
	if err != nil {
		return run, err
	}
	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		if err := sink.Ready(v); err != nil {
			return run, fmt.Errorf("fuzz: record variant %d: %w", v.Index, err)
		}
		run.Variants = append(run.Variants, v)
	}
	o.logger.Info("fuzz run ready",
		slog.String("run_id", run.ID),
		slog.Int("variants", len(run.Variants)),
	)
	return run, nil
}

func catalogIndex(name string) int {
	for i, s := range charset.Catalog() {
		if s.Name == name {
			return i + 1
		}
	}
	return 0
}
