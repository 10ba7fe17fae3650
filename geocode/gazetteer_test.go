// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/geoquery/geoquery/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGazetteer(t *testing.T) (*sql.DB, *Gazetteer) {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err, "opening in-memory database")

	t.Cleanup(func() { db.Close() })

	g := NewGazetteer(db)
	require.NoError(t, g.CreateSchema(), "creating schema")

	return db, g
}

func TestGazetteerSchema(t *testing.T) {
	db, _ := setupGazetteer(t)

	var tableName string

	err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = 'places'").Scan(&tableName)
	require.NoError(t, err, "table not created")
	assert.Equal(t, "places", tableName)
}

func TestGazetteerSaveAndGeocode(t *testing.T) {
	_, g := setupGazetteer(t)

	place := &Place{
		Name:        "Ciudad Vieja",
		DisplayName: "Ciudad Vieja, Montevideo, Uruguay",
		Point:       spatial.Point{Lat: -34.9066, Lng: -56.2074},
	}
	require.NoError(t, g.SavePlace(place))

	assert.NotZero(t, place.H3Res8, "join key should be computed on save")

	result, err := g.Geocode(context.Background(), "ciudad vieja")
	require.NoError(t, err)

	assert.InDelta(t, -34.9066, result.Point.Lat, 1e-4)
	assert.InDelta(t, -56.2074, result.Point.Lng, 1e-4)
	assert.Equal(t, "gazetteer", result.Provider)
	assert.Equal(t, "Ciudad Vieja, Montevideo, Uruguay", result.DisplayName)
}

func TestGazetteerNormalizedLookup(t *testing.T) {
	_, g := setupGazetteer(t)

	require.NoError(t, g.SavePlace(&Place{
		Name:        "São Paulo",
		DisplayName: "São Paulo, Brazil",
		Point:       spatial.Point{Lat: -23.5505, Lng: -46.6333},
	}))

	for _, query := range []string{"São Paulo", "sao paulo", " SAO PAULO "} {
		_, err := g.Geocode(context.Background(), query)
		assert.NoError(t, err, "query %q should hit the normalized entry", query)
	}
}

func TestGazetteerMiss(t *testing.T) {
	_, g := setupGazetteer(t)

	_, err := g.Geocode(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestGazetteerSaveReplaces(t *testing.T) {
	_, g := setupGazetteer(t)

	require.NoError(t, g.SavePlace(&Place{
		Name:  "Paris",
		Point: spatial.Point{Lat: 1, Lng: 1},
	}))
	require.NoError(t, g.SavePlace(&Place{
		Name:  "paris",
		Point: spatial.Point{Lat: 48.8566, Lng: 2.3522},
	}))

	count, err := g.CountPlaces()
	require.NoError(t, err)
	assert.Equal(t, 1, count, "same normalized name should replace, not duplicate")

	result, err := g.Geocode(context.Background(), "Paris")
	require.NoError(t, err)
	assert.InDelta(t, 48.8566, result.Point.Lat, 1e-4)
}

func TestGazetteerBulkInsert(t *testing.T) {
	_, g := setupGazetteer(t)

	places := []*Place{
		{Name: "Paris", Point: spatial.Point{Lat: 48.8566, Lng: 2.3522}},
		{Name: "Tokyo", Point: spatial.Point{Lat: 35.6762, Lng: 139.6503}},
		{Name: "Lima", Point: spatial.Point{Lat: -12.0464, Lng: -77.0428}},
	}
	require.NoError(t, g.BulkInsertPlaces(places))

	count, err := g.CountPlaces()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestGazetteerValidation(t *testing.T) {
	_, g := setupGazetteer(t)

	tests := []struct {
		name  string
		place *Place
	}{
		{name: "nil place", place: nil},
		{name: "empty name", place: &Place{Name: "  ", Point: spatial.Point{Lat: 0, Lng: 0}}},
		{name: "out of range point", place: &Place{Name: "Nowhere", Point: spatial.Point{Lat: 123, Lng: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, g.SavePlace(tt.place))
		})
	}
}
