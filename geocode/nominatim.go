// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/geoquery/geoquery/spatial"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim search endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

const nominatimUserAgent = "geoquery/1.0 (+https://github.com/geoquery/geoquery)"

// NominatimGeocoder uses the OpenStreetMap Nominatim search API.
type NominatimGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a Nominatim geocoder. An empty baseURL selects
// the public OpenStreetMap endpoint.
func NewNominatimGeocoder(baseURL string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}

	return &NominatimGeocoder{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type nominatimResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

// Geocode implements Geocoder.
func (g *NominatimGeocoder) Geocode(ctx context.Context, location string) (*Result, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")

	reqURL := g.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &Error{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Type: ErrorTypeTimeout, Message: "geocoding request timed out", Err: err}
		}

		return nil, &Error{Type: ErrorTypeNetwork, Message: "geocoding request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &Error{Type: ErrorTypeMalformed, Message: "decoding response", Err: err}
	}

	if len(results) == 0 {
		return nil, notFound(location)
	}

	best := results[0]

	lat, err := strconv.ParseFloat(best.Lat, 64)
	if err != nil {
		return nil, &Error{Type: ErrorTypeMalformed, Message: fmt.Sprintf("parsing latitude %q", best.Lat), Err: err}
	}

	lng, err := strconv.ParseFloat(best.Lon, 64)
	if err != nil {
		return nil, &Error{Type: ErrorTypeMalformed, Message: fmt.Sprintf("parsing longitude %q", best.Lon), Err: err}
	}

	point := spatial.Point{Lat: lat, Lng: lng}
	if !point.Valid() {
		return nil, &Error{Type: ErrorTypeMalformed, Message: fmt.Sprintf("coordinates out of range: %s", point)}
	}

	confidence := "low"

	switch {
	case best.Importance >= 0.6:
		confidence = "high"
	case best.Importance >= 0.3:
		confidence = "medium"
	}

	return &Result{
		Point:       point,
		Confidence:  confidence,
		Provider:    "nominatim",
		DisplayName: best.DisplayName,
	}, nil
}
