package wiki

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a Document from a .json, .yaml or .yml file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return Read(f, filepath.Ext(path))
}

// Read decodes a Document from r. ext selects the format; anything other than
// .yaml/.yml is treated as JSON.
func Read(r io.Reader, ext string) (*Document, error) {
	var doc Document
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml document: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json document: %w", err)
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return &doc, nil
}

// UnmarshalJSON accepts a fractional readingTimeMinutes, rounded to the
// nearest minute.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	aux := struct {
		*plain
		ReadingTimeMinutes float64 `json:"readingTimeMinutes"`
	}{plain: (*plain)(d), ReadingTimeMinutes: float64(d.ReadingTimeMinutes)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	minutes, err := roundMinutes(aux.ReadingTimeMinutes)
	if err != nil {
		return err
	}
	d.ReadingTimeMinutes = minutes
	return nil
}

// UnmarshalYAML applies the same rounding as UnmarshalJSON.
func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	type plain Document
	if value.Kind != yaml.MappingNode {
		return value.Decode((*plain)(d))
	}
	node := *value
	node.Content = slices.Clone(value.Content)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "readingTimeMinutes" {
			continue
		}
		var f float64
		if err := node.Content[i+1].Decode(&f); err != nil {
			return err
		}
		minutes, err := roundMinutes(f)
		if err != nil {
			return err
		}
		rounded := *node.Content[i+1]
		rounded.Tag, rounded.Value = "!!int", strconv.Itoa(minutes)
		node.Content[i+1] = &rounded
	}
	return node.Decode((*plain)(d))
}

func roundMinutes(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("readingTimeMinutes %v is not a usable number", f)
	}
	return int(math.Round(f)), nil
}
