package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PayloadKind tags which response shape the catalog service returned.
type PayloadKind int

const (
	PayloadBareList PayloadKind = iota + 1
	PayloadEnvelope
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadBareList:
		return "list"
	case PayloadEnvelope:
		return "envelope"
	default:
		return "unknown"
	}
}

// CatalogPayload is a catalog response resolved once at the API boundary.
// Records stay raw so one malformed item does not fail the whole page.
type CatalogPayload struct {
	Kind     PayloadKind
	Records  []json.RawMessage
	Count    int
	Next     string
	Previous string
}

type catalogEnvelope struct {
	Count    *int              `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

// DecodeCatalogPayload accepts either a bare JSON array or a
// {count, next, previous, results} envelope.
func DecodeCatalogPayload(body []byte) (CatalogPayload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return CatalogPayload{}, fmt.Errorf("empty catalog payload")
	}

	switch trimmed[0] {
	case '[':
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return CatalogPayload{}, fmt.Errorf("decode catalog list: %w", err)
		}
		return CatalogPayload{Kind: PayloadBareList, Records: records, Count: len(records)}, nil
	case '{':
		var env catalogEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return CatalogPayload{}, fmt.Errorf("decode catalog envelope: %w", err)
		}
		if env.Results == nil {
			return CatalogPayload{}, fmt.Errorf("catalog envelope has no results field")
		}
		p := CatalogPayload{Kind: PayloadEnvelope, Records: env.Results, Count: len(env.Results)}
		if env.Count != nil {
			p.Count = *env.Count
		}
		if env.Next != nil {
			p.Next = *env.Next
		}
		if env.Previous != nil {
			p.Previous = *env.Previous
		}
		return p, nil
	default:
		return CatalogPayload{}, fmt.Errorf("unexpected catalog payload starting with %q", trimmed[0])
	}
}
