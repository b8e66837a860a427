// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one run in an export file.
type ExportEntry struct {
	RunSummary `yaml:",inline"`

	Discovery any `json:"discovery,omitempty" yaml:"discovery,omitempty"`
	Citations any `json:"citations,omitempty" yaml:"citations,omitempty"`
}

// ExportYAML writes every stored run of kind (all when empty) to
// <Dir>/index/export.yaml and returns the path.
func (s *Store) ExportYAML(ctx context.Context, kind string) (string, error) {
	return s.export(ctx, kind, "export.yaml")
}

// ExportJSON writes every stored run of kind (all when empty) to
// <Dir>/index/export.json and returns the path.
func (s *Store) ExportJSON(ctx context.Context, kind string) (string, error) {
	return s.export(ctx, kind, "export.json")
}

func (s *Store) export(ctx context.Context, kind, file string) (string, error) {
	entries, err := s.exportEntries(ctx, kind)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, indexDir, file)
	if err := WriteResultFile(path, entries); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) exportEntries(ctx context.Context, kind string) ([]ExportEntry, error) {
	runs, err := s.ListRuns(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(runs))
	for i, r := range runs {
		entries[i].RunSummary = r
		switch r.Kind {
		case KindDiscovery:
			run, err := s.LoadDiscovery(ctx, r.ID)
			if err != nil {
				return nil, err
			}
			entries[i].Discovery = run
		case KindCitation:
			run, err := s.LoadCitations(ctx, r.ID)
			if err != nil {
				return nil, err
			}
			entries[i].Citations = run
		}
	}
	return entries, nil
}

// WriteResultFile writes v to path as YAML (.yaml, .yml) or JSON (.json),
// creating parent directories.
func WriteResultFile(path string, v any) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported result file extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
