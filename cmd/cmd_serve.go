// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/geoquery/geoquery/geocode"
	"github.com/geoquery/geoquery/intent"
	"github.com/geoquery/geoquery/query"
	"github.com/geoquery/geoquery/spatial"
	"github.com/spf13/cobra"
)

var serveOptions struct {
	Addr          string
	Provider      string
	GazetteerPath string
	Resolution    int
	CacheTTL      time.Duration
	CacheCapacity int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the query resolution HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		parser, err := intent.NewParser(intent.NewProseTagger())
		if err != nil {
			return fmt.Errorf("loading nlp model: %w", err)
		}

		provider, err := buildProvider(cmd)
		if err != nil {
			return err
		}

		geocoder := geocode.Geocoder(provider)

		if serveOptions.GazetteerPath != "" {
			db, err := sql.Open("duckdb", serveOptions.GazetteerPath)
			if err != nil {
				return fmt.Errorf("opening gazetteer database: %w", err)
			}
			defer db.Close()

			gazetteer := geocode.NewGazetteer(db)
			if err := gazetteer.CreateSchema(); err != nil {
				return fmt.Errorf("creating gazetteer schema: %w", err)
			}

			count, err := gazetteer.CountPlaces()
			if err != nil {
				return fmt.Errorf("counting gazetteer places: %w", err)
			}

			log.Printf("gazetteer loaded with %d curated places", count)

			geocoder = geocode.NewChain(gazetteer, provider)
		}

		cached := geocode.NewCachingGeocoder(geocoder, serveOptions.CacheCapacity, serveOptions.CacheTTL)

		pipeline, err := query.NewPipeline(parser, cached, serveOptions.Resolution)
		if err != nil {
			return err
		}

		addr := serveOptions.Addr
		if env := os.Getenv("GEOQUERY_ADDR"); env != "" && !cmd.Flags().Changed("addr") {
			addr = env
		}

		log.Printf("geoquery %s listening on %s (provider: %s)", Version, addr, serveOptions.Provider)

		return query.NewServer(pipeline, cached).Run(addr)
	},
}

func buildProvider(cmd *cobra.Command) (geocode.Geocoder, error) {
	switch serveOptions.Provider {
	case "nominatim":
		return geocode.NewNominatimGeocoder(os.Getenv("NOMINATIM_URL")), nil
	case "google":
		apiKey, err := geocode.ResolveGoogleAPIKey(cmd.Context())
		if err != nil {
			return nil, fmt.Errorf("resolving google maps api key: %w", err)
		}

		return geocode.NewGoogleMapsGeocoder(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want nominatim or google)", serveOptions.Provider)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveOptions.Addr, "addr", "localhost:8080", "listen address")
	serveCmd.Flags().StringVar(&serveOptions.Provider, "provider", "nominatim", "geocoding provider: nominatim or google")
	serveCmd.Flags().StringVar(&serveOptions.GazetteerPath, "gazetteer", "", "path to a DuckDB gazetteer of curated places")
	serveCmd.Flags().IntVar(&serveOptions.Resolution, "resolution", spatial.DefaultResolution, "default H3 resolution")
	serveCmd.Flags().DurationVar(&serveOptions.CacheTTL, "cache-ttl", geocode.DefaultCacheTTL, "geocode cache entry lifetime")
	serveCmd.Flags().IntVar(&serveOptions.CacheCapacity, "cache-size", geocode.DefaultCacheCapacity, "geocode cache capacity")

	rootCmd.AddCommand(serveCmd)
}
