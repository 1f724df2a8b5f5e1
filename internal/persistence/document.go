// Package persistence reads and writes the inventory document: a JSON object
// mapping item names to quantities.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrCorrupt is returned when a document cannot be interpreted as an inventory.
var ErrCorrupt = errors.New("corrupt inventory document")

const indent = "    "

// Encode writes items as an indented JSON object followed by a newline.
func Encode(w io.Writer, items map[string]float64) error {
	if items == nil {
		items = map[string]float64{}
	}
	data, err := json.MarshalIndent(items, "", indent)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// Decode parses a JSON object of item names to numbers.
func Decode(r io.Reader) (map[string]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	// Unmarshal rejects anything after the top-level value.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	// A literal null decodes into a nil map without error.
	if raw == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrCorrupt)
	}

	items := make(map[string]float64, len(raw))
	for name, value := range raw {
		if name == "" {
			return nil, fmt.Errorf("%w: empty item name", ErrCorrupt)
		}
		var qty float64
		if err := json.Unmarshal(value, &qty); err != nil || string(value) == "null" {
			return nil, fmt.Errorf("%w: quantity of %q is not a number", ErrCorrupt, name)
		}
		items[name] = qty
	}
	return items, nil
}

// ReadFile loads the document at path. A missing file yields an error
// matching os.ErrNotExist.
func ReadFile(path string) (map[string]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	items, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// WriteFile replaces the document at path with items.
func WriteFile(path string, items map[string]float64) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := Encode(file, items); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
