package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format is a report serialization format
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case JSON, "":
		return JSON, nil
	case YAML, "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unsupported report format: %q", s)
}

// Ext returns the file extension for the format
func (f Format) Ext() string {
	if f == YAML {
		return ".yaml"
	}
	return ".json"
}

type summary struct {
	PackageType string `json:"package_type" yaml:"package_type"`
	Valid       bool   `json:"valid" yaml:"valid"`
	Counts
}

// MarshalJSON encodes the report as an object with the summary fields and a
// "results" object keyed by rule id, in report order.
func (r *Report) MarshalJSON() ([]byte, error) {
	counts := r.Counts()
	head, err := json.Marshal(summary{
		PackageType: r.PackageType(),
		Valid:       counts.Errors == 0,
		Counts:      counts,
	})
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	buf.Write(head[:len(head)-1]) // drop closing brace
	buf.WriteString(`,"results":{`)
	for i, e := range r.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(e.ID)
		val, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// MarshalYAML returns the report as an ordered yaml map.
func (r *Report) MarshalYAML() (any, error) {
	counts := r.Counts()
	results := yaml.MapSlice{}
	for _, e := range r.Entries() {
		results = append(results, yaml.MapItem{Key: e.ID, Value: e})
	}
	return yaml.MapSlice{
		{Key: "package_type", Value: r.PackageType()},
		{Key: "valid", Value: counts.Errors == 0},
		{Key: "errors", Value: counts.Errors},
		{Key: "warnings", Value: counts.Warnings},
		{Key: "successes", Value: counts.Successes},
		{Key: "notes", Value: counts.Notes},
		{Key: "skipped", Value: counts.Skipped},
		{Key: "results", Value: results},
	}, nil
}

// Write writes the report to w in format f.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case YAML:
		return yaml.NewEncoder(w).Encode(r)
	default:
		return r.WriteJSON(w)
	}
}

// WriteJSON writes the report in indented JSON format to w.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
