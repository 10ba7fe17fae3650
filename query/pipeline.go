// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

// Package query orchestrates the resolution pipeline: parse the text,
// geocode the place mention, project by direction and distance, and index
// the resulting coordinate into an H3 cell.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/geoquery/geoquery/geocode"
	"github.com/geoquery/geoquery/intent"
	"github.com/geoquery/geoquery/spatial"
)

// ErrNoLocationFound is returned when the parser finds no place mention in
// the query text.
var ErrNoLocationFound = errors.New("no location found in query")

// Result is the outcome of a pipeline run. Adjusted is set only when the
// intent carried both a direction and a distance; CellID only when indexing
// was requested. Failures never yield partial results.
type Result struct {
	Intent      *intent.Intent `json:"intent"`
	Point       spatial.Point  `json:"point"`
	DisplayName string         `json:"display_name,omitempty"`
	Adjusted    *spatial.Point `json:"adjusted,omitempty"`
	CellID      string         `json:"cell_id,omitempty"`
}

// Pipeline wires the parser, the geocoder stack and the spatial primitives
// into a single request/response cycle. Build it once and share it; all of
// its state is read-only or internally synchronized.
type Pipeline struct {
	parser     *intent.Parser
	geocoder   geocode.Geocoder
	resolution int
}

// NewPipeline creates a pipeline. A non-positive resolution selects the
// default H3 resolution.
func NewPipeline(parser *intent.Parser, geocoder geocode.Geocoder, resolution int) (*Pipeline, error) {
	if resolution <= 0 {
		resolution = spatial.DefaultResolution
	}

	if resolution > spatial.MaxResolution {
		return nil, fmt.Errorf("%w: %d", spatial.ErrInvalidResolution, resolution)
	}

	return &Pipeline{
		parser:     parser,
		geocoder:   geocoder,
		resolution: resolution,
	}, nil
}

// Handle runs the pipeline over a raw query. Stages run in order with no
// retries; the first failure short-circuits.
func (p *Pipeline) Handle(ctx context.Context, text string, withCell bool) (*Result, error) {
	parsed, err := p.parser.Parse(text)
	if err != nil {
		return nil, err
	}

	if parsed.Entity == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoLocationFound, text)
	}

	resolved, err := p.geocoder.Geocode(ctx, parsed.Entity)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Intent:      parsed,
		Point:       resolved.Point,
		DisplayName: resolved.DisplayName,
	}

	// Direction without distance (or the reverse) is under-specified; the
	// projection is skipped rather than defaulted.
	if parsed.Direction != "" && parsed.DistanceKm != nil {
		adjusted, err := spatial.Project(resolved.Point, parsed.Direction, *parsed.DistanceKm)
		if err != nil {
			return nil, err
		}

		result.Adjusted = &adjusted
	}

	if withCell {
		point := result.Point
		if result.Adjusted != nil {
			point = *result.Adjusted
		}

		cell, err := spatial.Cell(point, p.resolution)
		if err != nil {
			return nil, err
		}

		result.CellID = cell.String()
	}

	return result, nil
}
