// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/geoquery/geoquery/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
