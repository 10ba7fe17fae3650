// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"errors"
	"fmt"

	"github.com/uber/h3-go/v4"
)

// H3 resolution bounds. Resolution 8 covers roughly city-block-scale cells
// and is the default join-key resolution.
const (
	MinResolution     = 0
	MaxResolution     = 15
	DefaultResolution = 8
)

// ErrInvalidResolution is returned for a resolution outside the H3 range.
var ErrInvalidResolution = errors.New("invalid h3 resolution")

// Cell maps a point to its H3 cell at the given resolution. Identical
// (point, resolution) inputs always yield the identical cell id; the ids are
// used as cross-system join keys, so the mapping delegates to the reference
// H3 implementation.
func Cell(p Point, resolution int) (h3.Cell, error) {
	if resolution < MinResolution || resolution > MaxResolution {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidResolution, resolution, MinResolution, MaxResolution)
	}

	if !p.Valid() {
		return 0, fmt.Errorf("%w: point %s out of range", ErrInvalidProjectionInput, p)
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), resolution)
	if err != nil {
		return 0, fmt.Errorf("converting %s to h3 cell at res %d: %w", p, resolution, err)
	}

	return cell, nil
}
