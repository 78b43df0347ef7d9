package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/quintero-labs/shopcore-backend/pkg/errors"
)

// AttributeValue is one selected value for a configurable attribute. A value
// is either a plain scalar or a reference to a linked product with a quantity.
type AttributeValue struct {
	Value           string     `json:"value,omitempty"`
	LinkedProductID *uuid.UUID `json:"linked_product_id,omitempty"`
	Quantity        int        `json:"quantity,omitempty"`
}

func (v AttributeValue) key() string {
	linked := ""
	if v.LinkedProductID != nil {
		linked = v.LinkedProductID.String()
	}
	return fmt.Sprintf("%s|%s|%d", v.Value, linked, v.Quantity)
}

// AttributeSelection maps attribute ids to the customer's chosen values.
// It is the in-memory form of the raw attribute string persisted on a cart
// item and the identity input for merge-vs-insert decisions.
type AttributeSelection map[uuid.UUID][]AttributeValue

// DecodeAttributeSelection parses the persisted scalar form. An empty or
// blank raw value decodes to an empty selection; malformed input is a decode
// error.
func DecodeAttributeSelection(raw string) (AttributeSelection, error) {
	if strings.TrimSpace(raw) == "" {
		return AttributeSelection{}, nil
	}
	var selection AttributeSelection
	if err := json.Unmarshal([]byte(raw), &selection); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode attribute selection")
	}
	if selection == nil {
		selection = AttributeSelection{}
	}
	return selection, nil
}

// Encode serializes the selection into its persisted scalar form. An empty
// selection encodes to the empty string.
func (s AttributeSelection) Encode() string {
	if len(s) == 0 {
		return ""
	}
	// Keys are sorted inside values too so encoding is deterministic.
	normalized := make(AttributeSelection, len(s))
	for id, values := range s {
		sorted := make([]AttributeValue, len(values))
		copy(sorted, values)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].key() < sorted[j].key() })
		normalized[id] = sorted
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		// Only unmarshalable custom types can trip this; the selection holds
		// plain strings, uuids and ints.
		return ""
	}
	return string(encoded)
}

// IsEmpty reports whether the selection carries no attribute values at all.
func (s AttributeSelection) IsEmpty() bool {
	for _, values := range s {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Equals reports set-equality over (attribute id, value) pairs. Two cart
// items for the same product with equal selections are the same configured
// item.
func (s AttributeSelection) Equals(other AttributeSelection) bool {
	return s.pairSet().equal(other.pairSet())
}

// Contains reports whether every (attribute id, value) pair of other is
// present in s.
func (s AttributeSelection) Contains(other AttributeSelection) bool {
	pairs := s.pairSet()
	for pair := range other.pairSet() {
		if _, ok := pairs[pair]; !ok {
			return false
		}
	}
	return true
}

// MergeKeysFrom adds any attribute present in other but absent in s and
// returns the superset. Used to build a batch-prefetch selection; s itself is
// not modified.
func (s AttributeSelection) MergeKeysFrom(other AttributeSelection) AttributeSelection {
	merged := make(AttributeSelection, len(s)+len(other))
	for id, values := range s {
		merged[id] = append([]AttributeValue(nil), values...)
	}
	for id, values := range other {
		if _, ok := merged[id]; ok {
			continue
		}
		merged[id] = append([]AttributeValue(nil), values...)
	}
	return merged
}

// AttributeIDs returns the distinct attribute ids in the selection.
func (s AttributeSelection) AttributeIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

type pairSet map[string]struct{}

func (s AttributeSelection) pairSet() pairSet {
	pairs := make(pairSet)
	for id, values := range s {
		for _, value := range values {
			pairs[id.String()+"/"+value.key()] = struct{}{}
		}
	}
	return pairs
}

func (p pairSet) equal(other pairSet) bool {
	if len(p) != len(other) {
		return false
	}
	for pair := range p {
		if _, ok := other[pair]; !ok {
			return false
		}
	}
	return true
}
