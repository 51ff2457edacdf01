package callsite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// Document is the envelope form of an input file.
type Document struct {
	Records []Record `json:"records" yaml:"records"`
}

// Decode reads records from JSON, either a bare list or a {"records": [...]} envelope.
// Unknown fields are rejected so a misspelled envelope or a lone record object
// cannot decode to an empty input.
func Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var records []Record
		if err := decodeStrictJSON(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
		return records, validate(records)
	}

	var doc Document
	if err := decodeStrictJSON(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode records document: %w", err)
	}
	return doc.Records, validate(doc.Records)
}

func decodeStrictJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after the top-level value")
	}
	return nil
}

// DecodeYAML reads records from YAML, either a bare list or a records envelope.
func DecodeYAML(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	var shape interface{}
	if err := yaml.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	switch shape.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		var records []Record
		if err := yaml.UnmarshalStrict(data, &records); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
		return records, validate(records)
	}

	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode records document: %w", err)
	}
	return doc.Records, validate(doc.Records)
}

// ReadFile loads records, choosing the decoder from the file extension.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return Decode(f)
	}
}

// validate rejects records that are not well-formed. Unknown families are fine.
func validate(records []Record) error {
	for i, rec := range records {
		if strings.TrimSpace(rec.Family) == "" {
			return fmt.Errorf("record #%d (%s): family must not be empty", i+1, rec.Location)
		}
		if rec.Location.Line < 0 {
			return fmt.Errorf("record #%d (%s): line must not be negative", i+1, rec.Location)
		}
	}
	return nil
}
