/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Word is an immutable catalog entry.
type Word struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// WordBank is the catalog secret words are drawn from.
type WordBank []Word

// DefaultWords is the built-in catalog.
var DefaultWords = WordBank{
	{ID: 1, Text: "Playa"},
	{ID: 2, Text: "Supermercado"},
	{ID: 3, Text: "Bosque"},
	{ID: 4, Text: "Teatro"},
	{ID: 5, Text: "Hospital"},
	{ID: 6, Text: "Aeropuerto"},
	{ID: 7, Text: "Fiesta"},
	{ID: 8, Text: "Escuela"},
	{ID: 9, Text: "Montaña"},
	{ID: 10, Text: "Cine"},
}

// ReadWordBank decodes a JSON array of words and validates it.
func ReadWordBank(r io.Reader) (WordBank, error) {
	var bank WordBank

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&bank); err != nil {
		return nil, fmt.Errorf("decode word bank: %w", err)
	}

	if err := bank.Validate(); err != nil {
		return nil, err
	}

	return bank, nil
}

// Validate checks that the bank is non-empty, ids are unique and no entry is blank.
func (b WordBank) Validate() error {
	if len(b) == 0 {
		return ErrEmptyWordBank
	}

	seen := make(map[int]bool, len(b))
	for _, w := range b {
		if strings.TrimSpace(w.Text) == "" {
			return fmt.Errorf("word %d: text is blank", w.ID)
		}
		if seen[w.ID] {
			return fmt.Errorf("word %d: duplicate id", w.ID)
		}
		seen[w.ID] = true
	}

	return nil
}

// Lookup finds the first word whose text matches exactly.
func (b WordBank) Lookup(text string) (Word, bool) {
	for _, w := range b {
		if w.Text == text {
			return w, true
		}
	}

	return Word{}, false
}
