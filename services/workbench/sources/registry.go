// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sources provides the static registry of data sources.
//
// The registry is read-only and loaded once from an embedded YAML file.
//
// Thread Safety:
//
//	All exported functions and types are safe for concurrent use.
package sources

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/render"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/telemetry"
)

// =============================================================================
// Embedded Default Registry
// =============================================================================

//go:embed sources.yaml
var defaultSourcesYAML []byte

var tracer = otel.Tracer("workbench.sources")

// ErrUnknownSource is returned by Lookup for an id not in the registry.
var ErrUnknownSource = errors.New("sources: unknown source")

// =============================================================================
// Types
// =============================================================================

// registryYAML is the root structure for YAML deserialization.
type registryYAML struct {
	Sources []sourceYAML `yaml:"sources"`
}

type sourceYAML struct {
	ID     string   `yaml:"id"`
	Label  string   `yaml:"label"`
	Fields []string `yaml:"fields,omitempty"`
	Help   []string `yaml:"help,omitempty"`
}

// HelpFunc builds the intro help shown when configuring a source.
type HelpFunc func() *render.Node

// NoHelp is the IntroHelp of a source that has nothing to explain.
var NoHelp HelpFunc

// Source describes one data source.
type Source struct {
	// ID is the stable identifier stored in SourceSelection.
	ID string

	// Label is the display name.
	Label string

	// Fields lists the document fields document views show for this source.
	Fields []string

	// IntroHelp builds the configuration hint. NoHelp when absent.
	IntroHelp HelpFunc
}

// CreateIntroHelp returns the source's help subtree. ok is false for a
// source with NoHelp.
func (s Source) CreateIntroHelp() (help *render.Node, ok bool) {
	if s.IntroHelp == nil {
		return nil, false
	}
	help = s.IntroHelp()
	return help, help != nil
}

// Registry is an ordered, read-only set of sources.
type Registry struct {
	sources []Source
	byID    map[string]int
}

// =============================================================================
// Singleton Registry
// =============================================================================

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry built from the embedded sources.yaml.
//
// # Description
//
// The YAML is parsed on the first call; later calls return the cached
// result, including a cached error.
//
// # Inputs
//
//   - ctx: Used for tracing.
//
// # Outputs
//
//   - *Registry: Never nil on success.
//   - error: Non-nil if the embedded YAML is invalid.
func Default(ctx context.Context) (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = Parse(ctx, defaultSourcesYAML)
	})
	return defaultRegistry, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded file as a
// programming error.
func MustDefault() *Registry {
	r, err := Default(context.Background())
	if err != nil {
		panic(err)
	}
	return r
}

// Parse builds a registry from YAML.
func Parse(ctx context.Context, data []byte) (*Registry, error) {
	_, span := tracer.Start(ctx, "sources.Parse",
		trace.WithAttributes(attribute.Int("sources.bytes", len(data))))
	defer span.End()

	reg, err := parse(data)
	if err != nil {
		telemetry.RegistryLoadErrors.WithLabelValues("sources").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("sources.count", len(reg.sources)))
	return reg, nil
}

func parse(data []byte) (*Registry, error) {
	var raw registryYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing sources: %w", err)
	}
	if len(raw.Sources) == 0 {
		return nil, errors.New("parsing sources: no sources defined")
	}

	sources := make([]Source, 0, len(raw.Sources))
	for i, s := range raw.Sources {
		if strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("parsing sources: entry %d has no id", i)
		}
		if s.Label == "" {
			s.Label = s.ID
		}
		sources = append(sources, Source{
			ID:        s.ID,
			Label:     s.Label,
			Fields:    s.Fields,
			IntroHelp: helpFor(s.ID, s.Help),
		})
	}
	return New(sources...)
}

// helpFor turns YAML help lines into a HelpFunc. No lines means NoHelp.
func helpFor(id string, lines []string) HelpFunc {
	if len(lines) == 0 {
		return NoHelp
	}
	return func() *render.Node {
		children := make([]*render.Node, 0, len(lines))
		for _, l := range lines {
			children = append(children, render.Muted(l))
		}
		return render.Section("source-help-"+id, children...)
	}
}

// New builds a registry from sources in display order.
func New(sources ...Source) (*Registry, error) {
	if len(sources) == 0 {
		return nil, errors.New("sources: registry needs at least one source")
	}
	r := &Registry{
		sources: make([]Source, len(sources)),
		byID:    make(map[string]int, len(sources)),
	}
	for i, s := range sources {
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("sources: duplicate source %q", s.ID)
		}
		r.byID[s.ID] = i
		r.sources[i] = s
	}
	return r, nil
}

// =============================================================================
// Queries
// =============================================================================

// All returns the sources in display order.
func (r *Registry) All() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// IDs returns the source ids in display order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.sources))
	for i, s := range r.sources {
		ids[i] = s.ID
	}
	return ids
}

// Lookup returns the source with id.
func (r *Registry) Lookup(id string) (Source, error) {
	i, ok := r.byID[id]
	if !ok {
		return Source{}, fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	return r.sources[i], nil
}

// Resolve returns the source with id, or the first source when id is unknown.
func (r *Registry) Resolve(id string) Source {
	if s, err := r.Lookup(id); err == nil {
		return s
	}
	return r.sources[0]
}

// Next returns the source after id in display order, wrapping around.
func (r *Registry) Next(id string) Source {
	i, ok := r.byID[id]
	if !ok {
		return r.sources[0]
	}
	return r.sources[(i+1)%len(r.sources)]
}
