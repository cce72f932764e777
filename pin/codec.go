package pin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when a document is not valid JSON.
var ErrMalformed = errors.New("pin: malformed document")

// ValidationError describes the first record that failed schema checks.
// Index is -1 for document-level problems.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("pin: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("pin: record %d: %s %s", e.Index, e.Field, e.Reason)
}

// Decode parses a {"pins": [...]} document. Records are checked field by
// field; a malformed record rejects the whole document rather than being
// dropped or coerced. Coordinates are clamped and blank titles defaulted.
func Decode(data []byte) ([]Pin, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc == nil {
		return nil, &ValidationError{Index: -1, Field: "document", Reason: "must be an object"}
	}
	raw, ok := doc["pins"]
	if !ok {
		return nil, &ValidationError{Index: -1, Field: "pins", Reason: "is required"}
	}
	return DecodeList(raw)
}

// DecodeList parses a bare JSON array of pin records.
func DecodeList(raw json.RawMessage) ([]Pin, error) {
	if isNull(raw) {
		return nil, &ValidationError{Index: -1, Field: "pins", Reason: "must be an array"}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &ValidationError{Index: -1, Field: "pins", Reason: "must be an array"}
	}
	pins := make([]Pin, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		p, err := decodeRecord(i, rec)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p.ID]; dup {
			return nil, &ValidationError{Index: i, Field: "id", Reason: "is duplicated"}
		}
		seen[p.ID] = struct{}{}
		pins = append(pins, p)
	}
	return pins, nil
}

// Encode renders pins as an indented {"pins": [...]} document.
func Encode(pins []Pin) ([]byte, error) {
	if pins == nil {
		pins = []Pin{}
	}
	return json.MarshalIndent(Document{Pins: pins}, "", "  ")
}

func decodeRecord(i int, rec json.RawMessage) (Pin, error) {
	var fields map[string]json.RawMessage
	if isNull(rec) || json.Unmarshal(rec, &fields) != nil {
		return Pin{}, &ValidationError{Index: i, Field: "record", Reason: "must be an object"}
	}

	var p Pin
	var err error
	if p.ID, err = requiredString(i, fields, "id"); err != nil {
		return Pin{}, err
	}
	if strings.TrimSpace(p.ID) == "" {
		return Pin{}, &ValidationError{Index: i, Field: "id", Reason: "must not be empty"}
	}
	if p.X, err = requiredNumber(i, fields, "x"); err != nil {
		return Pin{}, err
	}
	if p.Y, err = requiredNumber(i, fields, "y"); err != nil {
		return Pin{}, err
	}
	if p.Title, err = requiredString(i, fields, "title"); err != nil {
		return Pin{}, err
	}
	optional := []struct {
		name string
		dst  *string
	}{
		{"subtitle", &p.Subtitle},
		{"description", &p.Description},
		{"linkedCategory", &p.LinkedCategory},
		{"linkedSlug", &p.LinkedSlug},
	}
	for _, o := range optional {
		if *o.dst, err = optionalString(i, fields, o.name); err != nil {
			return Pin{}, err
		}
	}
	return p.Normalized(), nil
}

func requiredString(i int, fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return "", &ValidationError{Index: i, Field: name, Reason: "is required"}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ValidationError{Index: i, Field: name, Reason: "must be a string"}
	}
	return s, nil
}

func optionalString(i int, fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ValidationError{Index: i, Field: name, Reason: "must be a string"}
	}
	return s, nil
}

func requiredNumber(i int, fields map[string]json.RawMessage, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return 0, &ValidationError{Index: i, Field: name, Reason: "is required"}
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, &ValidationError{Index: i, Field: name, Reason: "must be a number"}
	}
	return f, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
