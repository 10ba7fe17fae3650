// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves free-text place names to coordinates through
// pluggable providers, a local gazetteer and a TTL cache.
package geocode

import (
	"context"

	"github.com/geoquery/geoquery/spatial"
)

// Result represents a geocoding result from any provider.
type Result struct {
	Point       spatial.Point `json:"point"`
	Confidence  string        `json:"confidence"` // high, medium, low
	Provider    string        `json:"provider"`
	DisplayName string        `json:"display_name"`
}

// Geocoder resolves a free-text location to a coordinate. Implementations
// must honor context cancellation on any network call and return a *Error
// classifying the failure.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (*Result, error)
}

// Chain tries each geocoder in order, falling through on not-found results
// only. Hard provider failures stop the chain: an outage must surface, never
// degrade into a false not-found.
type Chain []Geocoder

// NewChain composes geocoders into a fallback chain.
func NewChain(geocoders ...Geocoder) Chain {
	return Chain(geocoders)
}

// Geocode implements Geocoder.
func (c Chain) Geocode(ctx context.Context, location string) (*Result, error) {
	for _, g := range c {
		result, err := g.Geocode(ctx, location)
		if err == nil {
			return result, nil
		}

		if !IsNotFound(err) {
			return nil, err
		}
	}

	return nil, notFound(location)
}
