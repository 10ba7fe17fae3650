// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/geoquery/geoquery/geocode"
	"github.com/geoquery/geoquery/intent"
	"github.com/geoquery/geoquery/query"
	"github.com/geoquery/geoquery/spatial"
	"github.com/spf13/cobra"
)

var queryOptions struct {
	Resolution int
	NoIndex    bool
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Resolve a single free-text query and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser, err := intent.NewParser(intent.NewProseTagger())
		if err != nil {
			return fmt.Errorf("loading nlp model: %w", err)
		}

		provider := geocode.NewNominatimGeocoder(os.Getenv("NOMINATIM_URL"))
		cached := geocode.NewCachingGeocoder(provider, 0, 0)

		pipeline, err := query.NewPipeline(parser, cached, queryOptions.Resolution)
		if err != nil {
			return err
		}

		result, err := pipeline.Handle(cmd.Context(), strings.Join(args, " "), !queryOptions.NoIndex)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}

		fmt.Println(string(out))

		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryOptions.Resolution, "resolution", spatial.DefaultResolution, "H3 resolution for the cell id")
	queryCmd.Flags().BoolVar(&queryOptions.NoIndex, "no-index", false, "skip the H3 cell id")

	rootCmd.AddCommand(queryCmd)
}
