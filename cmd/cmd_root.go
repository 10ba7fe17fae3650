// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "geoquery",
	Short: "natural-language geospatial query resolution",
	Long: `
geoquery answers free-text geospatial queries ("restaurants 5km north of
Paris"): it extracts the place, distance, direction and category, resolves
the place to coordinates, projects the offset on the WGS-84 ellipsoid and
produces an H3 cell id for downstream joins.
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
