// Package output renders analysis results as text, JSON or YAML.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ritzau/check-circular-import/pkg/detector"
	"github.com/ritzau/check-circular-import/pkg/model"
)

// Format selects how a report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for an unsupported report format.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat maps a format name to a Format. The empty name means text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w %q (want text, json or yaml)", ErrUnknownFormat, name)
}

// Report is the serializable form of an analysis result.
type Report struct {
	Root       string         `json:"root_directory" yaml:"root_directory"`
	Stats      detector.Stats `json:"statistics" yaml:"statistics"`
	Cycles     [][]string     `json:"cycles" yaml:"cycles"`
	Components [][]string     `json:"components,omitempty" yaml:"components,omitempty"`
	Graph      *model.Graph   `json:"graph,omitempty" yaml:"graph,omitempty"`
}

// NewReport converts res to a Report. The graph is only attached when
// includeGraph is set.
func NewReport(res *detector.Result, includeGraph bool) *Report {
	r := &Report{
		Root:       res.Root,
		Stats:      res.Stats,
		Cycles:     make([][]string, 0, len(res.Cycles)),
		Components: res.Components,
	}
	for _, c := range res.Cycles {
		r.Cycles = append(r.Cycles, []string(c))
	}
	if includeGraph {
		r.Graph = res.Graph
	}
	return r
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding json report: %w", err)
	}
	return nil
}

// WriteYAML writes r as YAML.
func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding yaml report: %w", err)
	}
	return enc.Close()
}

// Write renders r in format f.
func Write(w io.Writer, f Format, r *Report) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	case FormatText, "":
		PrintText(w, r)
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, f)
}
