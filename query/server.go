// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/geoquery/geoquery/geocode"
	"github.com/geoquery/geoquery/intent"
	"github.com/geoquery/geoquery/spatial"
	"github.com/gin-gonic/gin"
)

// Server exposes the pipeline over HTTP.
type Server struct {
	pipeline   *Pipeline
	geocoder   geocode.Geocoder
	resolution int
}

// NewServer creates an HTTP server around a pipeline. The geocoder is the
// same stack the pipeline resolves through; the direct endpoints (geocode,
// adjust_coordinates, h3_index) hit it without parsing.
func NewServer(pipeline *Pipeline, geocoder geocode.Geocoder) *Server {
	return &Server{
		pipeline:   pipeline,
		geocoder:   geocoder,
		resolution: pipeline.resolution,
	}
}

// Register mounts the API routes on a gin engine.
func (s *Server) Register(r *gin.Engine) {
	r.GET("/", s.root)
	r.GET("/parse_query", s.parseQuery)
	r.GET("/geocode", s.geocodeLocation)
	r.GET("/adjust_coordinates", s.adjustCoordinates)
	r.GET("/h3_index", s.h3Index)
	r.GET("/query", s.handleQuery)
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	r := gin.Default()
	s.Register(r)

	return r.Run(addr)
}

func (s *Server) root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "geoquery api is running"})
}

func (s *Server) parseQuery(ctx *gin.Context) {
	text := ctx.Query("query")
	if text == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})

		return
	}

	parsed, err := s.pipeline.parser.Parse(text)
	if err != nil {
		renderError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, parsed)
}

func (s *Server) geocodeLocation(ctx *gin.Context) {
	location := ctx.Query("location")
	if location == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "location parameter is required"})

		return
	}

	result, err := s.geocoder.Geocode(ctx.Request.Context(), location)
	if err != nil {
		renderError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"location":    location,
		"coordinates": result.Point,
	})
}

func (s *Server) adjustCoordinates(ctx *gin.Context) {
	location := ctx.Query("location")
	if location == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "location parameter is required"})

		return
	}

	direction, err := spatial.ParseDirection(ctx.Query("direction"))
	if err != nil {
		renderError(ctx, err)

		return
	}

	distance, err := strconv.ParseFloat(ctx.Query("distance"), 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "distance must be a number of km"})

		return
	}

	result, err := s.geocoder.Geocode(ctx.Request.Context(), location)
	if err != nil {
		renderError(ctx, err)

		return
	}

	adjusted, err := spatial.Project(result.Point, direction, distance)
	if err != nil {
		renderError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"original": result.Point,
		"adjusted": adjusted,
	})
}

func (s *Server) h3Index(ctx *gin.Context) {
	location := ctx.Query("location")
	if location == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "location parameter is required"})

		return
	}

	resolution := s.resolution

	if param := ctx.Query("resolution"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "resolution must be an integer"})

			return
		}

		resolution = parsed
	}

	result, err := s.geocoder.Geocode(ctx.Request.Context(), location)
	if err != nil {
		renderError(ctx, err)

		return
	}

	cell, err := spatial.Cell(result.Point, resolution)
	if err != nil {
		renderError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"location": location,
		"h3_index": cell.String(),
	})
}

func (s *Server) handleQuery(ctx *gin.Context) {
	text := ctx.Query("query")
	if text == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})

		return
	}

	withCell := true
	if param := ctx.Query("index"); param != "" {
		parsed, err := strconv.ParseBool(param)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "index must be a boolean"})

			return
		}

		withCell = parsed
	}

	result, err := s.pipeline.Handle(ctx.Request.Context(), text, withCell)
	if err != nil {
		renderError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, result)
}

// renderError maps pipeline failures onto stable JSON payloads. Raw stack
// traces never reach the client.
func renderError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoLocationFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no location found in query"})
	case errors.Is(err, intent.ErrModelUnavailable):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "language model unavailable"})
	case errors.Is(err, spatial.ErrInvalidDirection):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "direction must be one of north, south, east, west"})
	case errors.Is(err, spatial.ErrInvalidProjectionInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid projection input"})
	case errors.Is(err, spatial.ErrInvalidResolution):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "resolution must be between 0 and 15"})
	case geocode.IsNotFound(err):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
	case geocode.IsUnavailable(err):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "geocoding service unavailable"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
