// Package checker dispatches bound contracts to the plugin registered for
// their type and aggregates the diagnostics in declaration order.
package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/plugins"
)

// ErrDuplicatePlugin is returned by New when two plugins claim one type.
var ErrDuplicatePlugin = errors.New("duplicate plugin")

// Recorder receives per-contract measurements.
type Recorder interface {
	ObserveContract(typ model.ContractType, violations, files int, elapsed time.Duration)
	ObserveInvalid(typ model.ContractType)
}

// Result aggregates a run.
type Result struct {
	Diagnostics      []diag.Diagnostic
	ContractsChecked int
	ViolationsFound  int
	FilesAnalyzed    int
}

// Checker evaluates contracts. It is safe to reuse across runs.
type Checker struct {
	plugins map[model.ContractType]plugins.Plugin
	order   []model.ContractType
	workers int
	rec     Recorder
	log     *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithWorkers evaluates up to n contracts concurrently. n <= 1 keeps the
// single synchronous pass.
func WithWorkers(n int) Option {
	return func(c *Checker) { c.workers = n }
}

// WithMetrics reports every evaluated contract to r.
func WithMetrics(r Recorder) Option {
	return func(c *Checker) { c.rec = r }
}

// WithLogger sets the logger used for dispatch tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.log = l
		}
	}
}

// New indexes ps by contract type.
func New(ps []plugins.Plugin, opts ...Option) (*Checker, error) {
	c := &Checker{
		plugins: make(map[model.ContractType]plugins.Plugin, len(ps)),
		workers: 1,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, p := range ps {
		t := p.Type()
		if _, dup := c.plugins[t]; dup {
			return nil, fmt.Errorf("%w for contract type %s", ErrDuplicatePlugin, t)
		}
		c.plugins[t] = p
		c.order = append(c.order, t)
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Plugins returns the registered plugins in registration order.
func (c *Checker) Plugins() []plugins.Plugin {
	out := make([]plugins.Plugin, len(c.order))
	for i, t := range c.order {
		out[i] = c.plugins[t]
	}
	return out
}

// Execute evaluates contracts against cc. Contracts of unregistered types
// are skipped. A contract whose arguments fail validation yields one
// InvalidContract diagnostic and is not checked. ctx is consulted between
// contracts only.
func (c *Checker) Execute(ctx context.Context, contracts []model.Contract, cc *plugins.Context) (Result, error) {
	if cc == nil || cc.Tree == nil {
		return Result{}, errors.New("check context has no symbol tree")
	}
	if cc.Provider == nil {
		return Result{}, errors.New("check context has no source provider")
	}

	results := make([]plugins.Result, len(contracts))
	if c.workers <= 1 {
		for i, ct := range contracts {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			results[i] = c.evaluate(ct, cc)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.workers)
		for i, ct := range contracts {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = c.evaluate(ct, cc)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
	}

	res := Result{ContractsChecked: len(contracts)}
	for _, r := range results {
		res.Diagnostics = append(res.Diagnostics, r.Diagnostics...)
		res.FilesAnalyzed += r.FilesAnalyzed
	}
	res.ViolationsFound = len(res.Diagnostics)
	return res, nil
}

func (c *Checker) evaluate(ct model.Contract, cc *plugins.Context) plugins.Result {
	p, ok := c.plugins[ct.Type]
	if !ok {
		c.log.Debug("skipping contract with unknown type", "contract", ct.Name, "type", ct.Type)
		return plugins.Result{}
	}
	if msg := p.Validate(ct.Args); msg != "" {
		if c.rec != nil {
			c.rec.ObserveInvalid(ct.Type)
		}
		return plugins.Result{Diagnostics: []diag.Diagnostic{invalid(ct, msg)}}
	}

	start := time.Now()
	r := p.Check(ct, cc)
	elapsed := time.Since(start)
	c.log.Debug("checked contract",
		"contract", ct.Name,
		"type", ct.Type,
		"violations", len(r.Diagnostics),
		"files", r.FilesAnalyzed,
		"elapsed", elapsed)
	if c.rec != nil {
		c.rec.ObserveContract(ct.Type, len(r.Diagnostics), r.FilesAnalyzed, elapsed)
	}
	return r
}

func invalid(ct model.Contract, msg string) diag.Diagnostic {
	var src diag.SourceRef = diag.StructuralRef{Scope: "<config>"}
	if ct.Location != "" {
		src = diag.FileRef{File: ct.Location}
	}
	return diag.New(diag.InvalidContract, src, fmt.Sprintf("Invalid contract '%s': %s", ct.Name, msg)).WithContract(ct)
}
