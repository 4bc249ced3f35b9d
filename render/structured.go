package render

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"find-text/search"
)

type jsonRenderer struct{}

func (jsonRenderer) Render(w io.Writer, report *search.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(withEmptySlices(report))
}

type yamlRenderer struct{}

func (yamlRenderer) Render(w io.Writer, report *search.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(withEmptySlices(report)); err != nil {
		return err
	}
	return enc.Close()
}

// withEmptySlices keeps "results: []" rather than null in structured output
func withEmptySlices(report *search.Report) *search.Report {
	out := *report
	if out.Results == nil {
		out.Results = []search.SearchResult{}
	}
	if out.Warnings == nil {
		out.Warnings = []search.Warning{}
	}
	return &out
}
