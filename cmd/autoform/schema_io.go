package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"autoform/internal/schema"
)

// readSchema loads and cleans a schema file. Files ending in .json are read
// as JSON, everything else as YAML. "-" reads YAML or JSON from stdin.
func readSchema(path string) (*schema.FormSchema, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		s, err := schema.CleanJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return s, nil
	}

	// YAML is a superset of JSON, so stdin accepts either.
	var candidate any
	if err := yaml.Unmarshal(data, &candidate); err != nil {
		return nil, fmt.Errorf("%s: failed to parse schema: %w", path, err)
	}
	s, err := schema.Clean(candidate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// writeSchema writes s to path in the format its extension names, or YAML
// to w when path is empty or "-".
func writeSchema(w io.Writer, path string, s *schema.FormSchema) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(s, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	if path == "" || path == "-" {
		_, err = w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
