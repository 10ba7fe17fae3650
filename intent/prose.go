// Copyright 2025 The GeoQuery Authors
// SPDX-License-Identifier: Apache-2.0

package intent

import (
	"fmt"

	prose "github.com/jdkato/prose/v2"
)

// ProseTagger tags named entities with the prose English model. The model
// data is embedded in the binary; document construction can still fail, and
// that failure surfaces as ErrModelUnavailable through Parser.Parse.
type ProseTagger struct{}

// NewProseTagger returns the default named-entity tagger.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Entities implements Tagger.
func (*ProseTagger) Entities(text string) ([]Entity, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, fmt.Errorf("running prose pipeline: %w", err)
	}

	proseEntities := doc.Entities()
	entities := make([]Entity, 0, len(proseEntities))

	for _, e := range proseEntities {
		entities = append(entities, Entity{Text: e.Text, Label: e.Label})
	}

	return entities, nil
}
