// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainFallsThroughNotFound(t *testing.T) {
	miss := &countingGeocoder{err: notFound("Paris")}
	hit := &countingGeocoder{result: parisResult}

	chain := NewChain(miss, hit)

	result, err := chain.Geocode(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Equal(t, parisResult.Point, result.Point)
	assert.EqualValues(t, 1, miss.calls.Load())
	assert.EqualValues(t, 1, hit.calls.Load())
}

func TestChainFirstHitShadowsRest(t *testing.T) {
	hit := &countingGeocoder{result: parisResult}
	fallback := &countingGeocoder{result: parisResult}

	chain := NewChain(hit, fallback)

	_, err := chain.Geocode(context.Background(), "Paris")
	require.NoError(t, err)

	assert.EqualValues(t, 1, hit.calls.Load())
	assert.Zero(t, fallback.calls.Load(), "later geocoders must not be consulted after a hit")
}

func TestChainStopsOnHardFailure(t *testing.T) {
	down := &countingGeocoder{err: &Error{Type: ErrorTypeNetwork, Message: "down"}}
	fallback := &countingGeocoder{result: parisResult}

	chain := NewChain(down, fallback)

	_, err := chain.Geocode(context.Background(), "Paris")
	require.Error(t, err)

	assert.True(t, IsUnavailable(err), "outage must surface instead of degrading into a not-found")
	assert.Zero(t, fallback.calls.Load())
}

func TestChainAllMiss(t *testing.T) {
	chain := NewChain(
		&countingGeocoder{err: notFound("Atlantis")},
		&countingGeocoder{err: notFound("Atlantis")},
	)

	_, err := chain.Geocode(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
