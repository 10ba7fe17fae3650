// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/geoquery/geoquery/geocode"
	"github.com/geoquery/geoquery/spatial"
	"github.com/geoquery/geoquery/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var seedOptions struct {
	GazetteerPath string
}

var seedCmd = &cobra.Command{
	Use:   "seed <places.csv>",
	Short: "Load curated places into the gazetteer",
	Long: `Loads a CSV of curated places (name,lat,lng[,display_name]) into the
DuckDB gazetteer. Curated places shadow the remote geocoding provider.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		places, err := readPlaces(args[0])
		if err != nil {
			return err
		}

		db, err := sql.Open("duckdb", seedOptions.GazetteerPath)
		if err != nil {
			return fmt.Errorf("opening gazetteer database: %w", err)
		}
		defer db.Close()

		gazetteer := geocode.NewGazetteer(db)
		if err := gazetteer.CreateSchema(); err != nil {
			return fmt.Errorf("creating gazetteer schema: %w", err)
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(places),
				progressbar.OptionSetDescription("Seeding gazetteer"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		const batchSize = 500

		for start := 0; start < len(places); start += batchSize {
			end := min(start+batchSize, len(places))

			if err := gazetteer.BulkInsertPlaces(places[start:end]); err != nil {
				return fmt.Errorf("inserting places: %w", err)
			}

			if bar != nil {
				_ = bar.Add(end - start)
			}
		}

		log.Printf("Seed complete - %s places loaded into %s",
			textutils.FormatInt(int64(len(places))),
			seedOptions.GazetteerPath)

		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOptions.GazetteerPath, "gazetteer", "gazetteer.duckdb",
		"path to the DuckDB gazetteer database")
	rootCmd.AddCommand(seedCmd)
}

func readPlaces(path string) ([]*geocode.Place, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening places file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var places []*geocode.Place

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading places file: %w", err)
		}

		if len(record) < 3 {
			return nil, fmt.Errorf("line %d: want name,lat,lng[,display_name], got %d fields", line, len(record))
		}

		lat, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing latitude %q: %w", line, record[1], err)
		}

		lng, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing longitude %q: %w", line, record[2], err)
		}

		place := &geocode.Place{
			Name:  record[0],
			Point: spatial.Point{Lat: lat, Lng: lng},
		}

		if len(record) > 3 {
			place.DisplayName = record[3]
		} else {
			place.DisplayName = record[0]
		}

		places = append(places, place)
	}

	return places, nil
}
