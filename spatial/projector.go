// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// WGS-84 reference ellipsoid.
const (
	wgs84SemiMajor  = 6378137.0
	wgs84Flattening = 1 / 298.257223563
)

// Common errors returned by the projector.
var (
	// ErrInvalidDirection is returned for a direction outside the supported
	// compass set. Unknown directions fail instead of defaulting to north.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidProjectionInput is returned for non-positive distances or
	// non-finite/out-of-range origin coordinates.
	ErrInvalidProjectionInput = errors.New("invalid projection input")
)

// Direction is a cardinal compass direction.
type Direction string

// Supported directions.
const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// bearings maps each direction to degrees clockwise from true north.
var bearings = map[Direction]float64{
	North: 0,
	East:  90,
	South: 180,
	West:  270,
}

// ParseDirection converts a free-form string into a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := bearings[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}

	return d, nil
}

// Opposite returns the reverse compass direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}

	return d
}

// Project computes the destination point reached by travelling distanceKm
// from origin along the given compass direction on the WGS-84 ellipsoid.
func Project(origin Point, dir Direction, distanceKm float64) (Point, error) {
	bearing, ok := bearings[dir]
	if !ok {
		return Point{}, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm <= 0 {
		return Point{}, fmt.Errorf("%w: distance must be a positive number of km, got %v", ErrInvalidProjectionInput, distanceKm)
	}

	if !origin.Valid() {
		return Point{}, fmt.Errorf("%w: origin %s out of range", ErrInvalidProjectionInput, origin)
	}

	lat, lng := vincentyDirect(origin.Lat, origin.Lng, bearing, distanceKm*1000)

	return Point{Lat: lat, Lng: lng}, nil
}

// vincentyDirect solves the geodesic direct problem on the WGS-84 ellipsoid:
// destination latitude/longitude for an origin, an initial bearing in degrees
// and a distance in meters. Accurate to well under a millimeter, which keeps
// projected points within the 1 m agreement bound against reference solvers.
func vincentyDirect(lat1, lng1, bearingDeg, distance float64) (lat2, lng2 float64) {
	const rad = math.Pi / 180

	a := wgs84SemiMajor
	f := wgs84Flattening
	b := a * (1 - f)

	phi1 := lat1 * rad
	alpha1 := bearingDeg * rad

	sinAlpha1 := math.Sin(alpha1)
	cosAlpha1 := math.Cos(alpha1)

	tanU1 := (1 - f) * math.Tan(phi1)
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1

	sigma1 := math.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha
	uSq := cosSqAlpha * (a*a - b*b) / (b * b)

	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	sigma := distance / (b * bigA)

	var sinSigma, cosSigma, cos2SigmaM float64

	for iter := 0; iter < 100; iter++ {
		cos2SigmaM = math.Cos(2*sigma1 + sigma)
		sinSigma = math.Sin(sigma)
		cosSigma = math.Cos(sigma)

		deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*
			(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
				bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

		next := distance/(b*bigA) + deltaSigma
		if math.Abs(next-sigma) < 1e-12 {
			sigma = next

			break
		}

		sigma = next
	}

	cos2SigmaM = math.Cos(2*sigma1 + sigma)
	sinSigma = math.Sin(sigma)
	cosSigma = math.Cos(sigma)

	tmp := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	phi2 := math.Atan2(
		sinU1*cosSigma+cosU1*sinSigma*cosAlpha1,
		(1-f)*math.Sqrt(sinAlpha*sinAlpha+tmp*tmp),
	)

	lambda := math.Atan2(
		sinSigma*sinAlpha1,
		cosU1*cosSigma-sinU1*sinSigma*cosAlpha1,
	)

	c := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
	l := lambda - (1-c)*f*sinAlpha*
		(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

	lat2 = phi2 / rad
	lng2 = normalizeLng(lng1 + l/rad)

	return lat2, lng2
}

// normalizeLng wraps a longitude into [-180, 180].
func normalizeLng(lng float64) float64 {
	lng = math.Mod(lng+540, 360)
	if lng < 0 {
		lng += 360
	}

	return lng - 180
}
