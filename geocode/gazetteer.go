// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/geoquery/geoquery/spatial"
	"github.com/geoquery/geoquery/utils/textutils"
	"github.com/uber/h3-go/v4"
)

// gazetteerJoinResolution is the H3 resolution stored next to each place so
// gazetteer rows can be joined against other systems keyed by cell id.
const gazetteerJoinResolution = 8

// Place is a curated gazetteer entry. Curated places shadow the remote
// provider: the gazetteer sits first in the resolver chain.
type Place struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name"`
	Point       spatial.Point `json:"point"`
	H3Res8      uint64        `json:"h3_res8"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (p *Place) computeH3() error {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Point.Lat, p.Point.Lng), gazetteerJoinResolution)
	if err != nil {
		return fmt.Errorf("computing h3 cell for %s: %w", p.Point, err)
	}

	p.H3Res8 = uint64(cell)

	return nil
}

// Gazetteer is a DuckDB-backed repository of curated places that implements
// Geocoder. Lookups are by normalized name.
type Gazetteer struct {
	db *sql.DB
}

// NewGazetteer creates a gazetteer over an open DuckDB handle.
func NewGazetteer(db *sql.DB) *Gazetteer {
	return &Gazetteer{db: db}
}

// DB returns the underlying database connection.
func (g *Gazetteer) DB() *sql.DB {
	return g.db
}

// CreateSchema creates the places table.
func (g *Gazetteer) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := g.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = g.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS places_seq START 1;

		CREATE TABLE IF NOT EXISTS places (
			id INTEGER PRIMARY KEY DEFAULT nextval('places_seq'),
			name VARCHAR NOT NULL,
			normalized VARCHAR NOT NULL,
			display_name VARCHAR NOT NULL,
			point POINT_2D NOT NULL,
			h3_res8 UBIGINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(normalized)
		);
	`)

	return err
}

// SavePlace inserts or replaces a place keyed by its normalized name.
func (g *Gazetteer) SavePlace(place *Place) error {
	if err := validatePlace(place); err != nil {
		return err
	}

	if err := place.computeH3(); err != nil {
		return err
	}

	if place.CreatedAt.IsZero() {
		place.CreatedAt = time.Now()
	}

	normalized := textutils.LowerASCIIFolding(place.Name)

	_, err := g.db.Exec(`DELETE FROM places WHERE normalized = ?`, normalized)
	if err != nil {
		return err
	}

	_, err = g.db.Exec(`
		INSERT INTO places(name, normalized, display_name, point, h3_res8, created_at)
		VALUES (?, ?, ?, ST_Point(?, ?), ?, ?)
	`,
		place.Name,
		normalized,
		place.DisplayName,
		place.Point.Lng,
		place.Point.Lat,
		place.H3Res8,
		place.CreatedAt,
	)

	return err
}

// BulkInsertPlaces inserts places in one transaction.
func (g *Gazetteer) BulkInsertPlaces(places []*Place) error {
	tx, err := g.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO places(name, normalized, display_name, point, h3_res8, created_at)
		VALUES (?, ?, ?, ST_Point(?, ?), ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()

		return err
	}
	defer stmt.Close()

	now := time.Now()

	for _, place := range places {
		if err := validatePlace(place); err != nil {
			_ = tx.Rollback()

			return err
		}

		if err := place.computeH3(); err != nil {
			_ = tx.Rollback()

			return err
		}

		if place.CreatedAt.IsZero() {
			place.CreatedAt = now
		}

		_, err = stmt.Exec(
			place.Name,
			textutils.LowerASCIIFolding(place.Name),
			place.DisplayName,
			place.Point.Lng,
			place.Point.Lat,
			place.H3Res8,
			place.CreatedAt,
		)
		if err != nil {
			_ = tx.Rollback()

			return err
		}
	}

	return tx.Commit()
}

// CountPlaces returns the number of curated places.
func (g *Gazetteer) CountPlaces() (int, error) {
	var count int

	err := g.db.QueryRow(`SELECT COUNT(*) FROM places`).Scan(&count)

	return count, err
}

// Geocode implements Geocoder by looking up the normalized name.
func (g *Gazetteer) Geocode(ctx context.Context, location string) (*Result, error) {
	var (
		name        string
		displayName string
		point       spatial.Point
	)

	err := g.db.QueryRowContext(ctx, `
		SELECT name, display_name, point
		FROM places
		WHERE normalized = ?
	`, textutils.LowerASCIIFolding(location)).Scan(&name, &displayName, &point)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(location)
	}

	if err != nil {
		return nil, &Error{Type: ErrorTypeUnknown, Message: "querying gazetteer", Err: err}
	}

	return &Result{
		Point:       point,
		Confidence:  "high",
		Provider:    "gazetteer",
		DisplayName: displayName,
	}, nil
}

func validatePlace(place *Place) error {
	if place == nil {
		return errors.New("place can't be nil")
	}

	if textutils.LowerASCIIFolding(place.Name) == "" {
		return errors.New("place name can't be empty")
	}

	if !place.Point.Valid() {
		return fmt.Errorf("place %q has out-of-range coordinates: %s", place.Name, place.Point)
	}

	return nil
}
