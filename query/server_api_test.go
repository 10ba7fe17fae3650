// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geoquery/geoquery/intent"
	"github.com/geoquery/geoquery/spatial"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServerTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	pipeline := newTestPipeline(t,
		&fixedTagger{entities: []intent.Entity{{Text: "Paris", Label: "GPE"}}},
		&mapGeocoder{places: map[string]spatial.Point{"Paris": parisPoint}},
	)

	server := NewServer(pipeline, &mapGeocoder{places: map[string]spatial.Point{"Paris": parisPoint}})

	router := gin.New()
	server.Register(router)

	return router
}

func doGet(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	w := httptest.NewRecorder()

	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)

	router.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "response should be JSON: %s", w.Body.String())

	return w, body
}

func TestRootEndpoint(t *testing.T) {
	router := setupServerTest(t)

	w, body := doGet(t, router, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["message"], "running")
}

func TestParseQueryEndpoint(t *testing.T) {
	router := setupServerTest(t)

	w, body := doGet(t, router, "/parse_query?query=restaurants+within+5km+east+of+Paris")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Paris", body["entity"])
	assert.Equal(t, 5.0, body["distance_km"])
	assert.Equal(t, "east", body["direction"])
	assert.Equal(t, "restaurant", body["category"])
}

func TestParseQueryEndpointMissingParam(t *testing.T) {
	router := setupServerTest(t)

	w, body := doGet(t, router, "/parse_query")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body["error"])
}

func TestGeocodeEndpoint(t *testing.T) {
	router := setupServerTest(t)

	w, body := doGet(t, router, "/geocode?location=Paris")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Paris", body["location"])

	coords, ok := body["coordinates"].(map[string]any)
	require.True(t, ok, "coordinates should be an object")
	assert.InDelta(t, 48.8566, coords["lat"], 1e-4)
	assert.InDelta(t, 2.3522, coords["lng"], 1e-4)
}

func TestGeocodeEndpointNotFound(t *testing.T) {
	router := setupServerTest(t)

	w, body := doGet(t, router, "/geocode?location=Atlantis")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "location not found", body["error"])
}

func TestAdjustCoordinatesEndpoint(t *testing.T) {
	router := setupServerTest(t)

	w, body := doGet(t, router, "/adjust_coordinates?location=Paris&direction=north&distance=10")
	require.Equal(t, http.StatusOK, w.Code)

	original, ok := body["original"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 48.8566, original["lat"], 1e-4)

	adjusted, ok := body["adjusted"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 48.9465, adjusted["lat"], 0.01)
	assert.InDelta(t, 2.3522, adjusted["lng"], 0.01)
}

func TestAdjustCoordinatesEndpointInvalidInput(t *testing.T) {
	router := setupServerTest(t)

	tests := []struct {
		name string
		path string
	}{
		{name: "unknown direction", path: "/adjust_coordinates?location=Paris&direction=up&distance=10"},
		{name: "non-numeric distance", path: "/adjust_coordinates?location=Paris&direction=north&distance=far"},
		{name: "negative distance", path: "/adjust_coordinates?location=Paris&direction=north&distance=-5"},
		{name: "missing location", path: "/adjust_coordinates?direction=north&distance=10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doGet(t, router, tt.path)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestH3IndexEndpoint(t *testing.T) {
	router := setupServerTest(t)

	w, body := doGet(t, router, "/h3_index?location=Paris")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Paris", body["location"])
	assert.NotEmpty(t, body["h3_index"])

	// Same location, same resolution, same id.
	_, again := doGet(t, router, "/h3_index?location=Paris")
	assert.Equal(t, body["h3_index"], again["h3_index"])

	// Another resolution yields another id.
	_, coarse := doGet(t, router, "/h3_index?location=Paris&resolution=3")
	assert.NotEqual(t, body["h3_index"], coarse["h3_index"])
}

func TestH3IndexEndpointInvalidResolution(t *testing.T) {
	router := setupServerTest(t)

	w, body := doGet(t, router, "/h3_index?location=Paris&resolution=42")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body["error"])
}

func TestQueryEndpoint(t *testing.T) {
	router := setupServerTest(t)

	w, body := doGet(t, router, "/query?query=restaurants+within+5km+east+of+Paris")
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotEmpty(t, body["cell_id"])
	assert.NotNil(t, body["adjusted"])

	parsed, ok := body["intent"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Paris", parsed["entity"])
}

func TestQueryEndpointIndexDisabled(t *testing.T) {
	router := setupServerTest(t)

	w, body := doGet(t, router, "/query?query=restaurants+near+Paris&index=false")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, body, "cell_id")
}

func TestQueryEndpointNoLocation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pipeline := newTestPipeline(t, &fixedTagger{}, &mapGeocoder{})
	server := NewServer(pipeline, &mapGeocoder{})

	router := gin.New()
	server.Register(router)

	w, body := doGet(t, router, "/query?query=what+a+lovely+day")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no location found in query", body["error"])
}

func TestQueryEndpointModelUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pipeline := newTestPipeline(t,
		&fixedTagger{err: assert.AnError},
		&mapGeocoder{},
	)
	server := NewServer(pipeline, &mapGeocoder{})

	router := gin.New()
	server.Register(router)

	w, body := doGet(t, router, "/query?query=restaurants+near+Paris")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "language model unavailable", body["error"])
}
