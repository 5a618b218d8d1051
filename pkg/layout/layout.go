// Package layout reads declarative tree descriptions and builds live trees from them.
//
// A layout is YAML or JSON shaped like domain.NodeSpec:
//
//	id: watch-later
//	kind: widget
//	children:
//	  - id: watch-later-options
//	    kind: options
//	    attributes:
//	      data-open: false
//	  - tag: span
//	    classes: badge muted
package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Load reads a layout file. Files ending in .json are parsed as JSON, anything else as YAML.
func Load(path string) (domain.NodeSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.NodeSpec{}, fmt.Errorf("failed to read layout: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return Parse(data, format)
}

// Parse decodes a layout document in the given format ("yaml" or "json").
func Parse(data []byte, format string) (domain.NodeSpec, error) {
	var raw map[string]any
	switch format {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return domain.NodeSpec{}, fmt.Errorf("failed to parse layout json: %w", err)
		}
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return domain.NodeSpec{}, fmt.Errorf("failed to parse layout yaml: %w", err)
		}
	default:
		return domain.NodeSpec{}, fmt.Errorf("layout format %q: %w", format, domain.ErrInvalidArgument)
	}
	if raw == nil {
		return domain.NodeSpec{}, fmt.Errorf("empty layout: %w", domain.ErrInvalidArgument)
	}
	return Decode(raw)
}

// Decode maps a generic document onto a NodeSpec and validates it.
// Unknown keys are rejected. "classes" may be a list or a space separated string,
// and scalar attribute values are converted to strings.
func Decode(raw map[string]any) (domain.NodeSpec, error) {
	var spec domain.NodeSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			classesHook,
			scalarHook,
		),
		ErrorUnused: true,
		Result:      &spec,
	})
	if err != nil {
		return domain.NodeSpec{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return domain.NodeSpec{}, fmt.Errorf("failed to decode layout: %v: %w", err, domain.ErrInvalidArgument)
	}
	if err := Validate(spec); err != nil {
		return domain.NodeSpec{}, err
	}
	return spec, nil
}

// classesHook splits a string on whitespace when the target is a string slice.
func classesHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to.Kind() == reflect.Slice && to.Elem().Kind() == reflect.String {
		return strings.Fields(data.(string)), nil
	}
	return data, nil
}

// scalarHook renders YAML booleans and numbers the way they were written.
func scalarHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int64, reflect.Uint64, reflect.Float64:
		return fmt.Sprint(data), nil
	}
	return data, nil
}

// Validate checks kinds and sibling id uniqueness across the whole description.
func Validate(spec domain.NodeSpec) error {
	var err error
	spec.Walk(func(path []string, s domain.NodeSpec) bool {
		if err != nil {
			return false
		}
		switch s.Kind {
		case "", domain.KindNode, domain.KindSection, domain.KindWidget, domain.KindOptions:
		default:
			err = fmt.Errorf("%s: unknown kind %q: %w", strings.Join(path, "/"), s.Kind, domain.ErrInvalidArgument)
			return false
		}
		seen := make(map[string]bool, len(s.Children))
		for _, c := range s.Children {
			if c.ID == "" {
				continue
			}
			if seen[c.ID] {
				err = fmt.Errorf("%s: child %q: %w", strings.Join(path, "/"), c.ID, domain.ErrDuplicateID)
				return false
			}
			seen[c.ID] = true
		}
		return true
	})
	return err
}
