// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

// Package intent extracts a structured geospatial intent from free text:
// a place mention, a distance, a compass direction and a point-of-interest
// category.
package intent

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/geoquery/geoquery/spatial"
)

// ErrModelUnavailable is returned when the NLP model cannot be loaded or run.
// The parser never degrades to a silently empty intent.
var ErrModelUnavailable = errors.New("nlp model unavailable")

// Entity is a named entity recognized in the input text, in reading order.
type Entity struct {
	Text  string
	Label string
}

// Tagger runs named-entity recognition over a text. Implementations must be
// safe for concurrent use; the default is the prose English model, loaded
// once per process.
type Tagger interface {
	Entities(text string) ([]Entity, error)
}

// Intent is the structured reading of a query. Fields are unset when the
// text does not mention them; DistanceKm is a pointer because zero is not a
// valid distance.
type Intent struct {
	Entity     string            `json:"entity,omitempty"`
	DistanceKm *float64          `json:"distance_km,omitempty"`
	Direction  spatial.Direction `json:"direction,omitempty"`
	Category   string            `json:"category,omitempty"`
}

var (
	distanceRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*km`)
	directionRe = regexp.MustCompile(`(?i)\b(north|south|east|west)\s+of\b`)
	tokenRe     = regexp.MustCompile(`[a-zA-Z]+`)
)

// poiVocabulary is the closed set of point-of-interest categories. Tokens
// are lemmatized before matching, so "restaurants" matches "restaurant".
var poiVocabulary = map[string]bool{
	"restaurant": true,
	"hospital":   true,
	"park":       true,
	"school":     true,
	"forest":     true,
	"museum":     true,
	"airport":    true,
}

// Parser extracts intents. Build it once at startup and share it across
// requests; it holds the lemmatizer dictionary and the injected tagger, both
// read-only after construction.
type Parser struct {
	tagger     Tagger
	lemmatizer *golem.Lemmatizer
}

// NewParser creates a Parser backed by the given tagger.
func NewParser(tagger Tagger) (*Parser, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("%w: loading lemmatizer dictionary: %v", ErrModelUnavailable, err)
	}

	return &Parser{tagger: tagger, lemmatizer: lemmatizer}, nil
}

// Parse reads a free-text query into an Intent. It is a pure function of the
// text and the underlying model; it never mutates shared state.
//
// When the text mentions several places, the first one in reading order wins
// and the rest are discarded. Multi-location queries ("from Paris to London")
// therefore resolve against their first mention only.
func (p *Parser) Parse(text string) (*Intent, error) {
	entities, err := p.tagger.Entities(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	intent := &Intent{}

	for _, e := range entities {
		if e.Label == "GPE" || e.Label == "LOC" {
			intent.Entity = e.Text

			break
		}
	}

	if m := distanceRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			intent.DistanceKm = &v
		}
	}

	if m := directionRe.FindStringSubmatch(text); m != nil {
		if d, err := spatial.ParseDirection(m[1]); err == nil {
			intent.Direction = d
		}
	}

	for _, token := range tokenRe.FindAllString(text, -1) {
		lemma := strings.ToLower(p.lemmatizer.Lemma(strings.ToLower(token)))
		if poiVocabulary[lemma] {
			intent.Category = lemma

			break
		}
	}

	return intent, nil
}
