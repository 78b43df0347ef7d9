package types

import (
	"testing"

	"github.com/google/uuid"
	pkgerrors "github.com/quintero-labs/shopcore-backend/pkg/errors"
)

func TestDecodeAttributeSelectionEmptyInput(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "\n"} {
		selection, err := DecodeAttributeSelection(raw)
		if err != nil {
			t.Fatalf("blank input %q must not error: %v", raw, err)
		}
		if !selection.IsEmpty() {
			t.Fatalf("blank input %q should decode to an empty selection", raw)
		}
	}
}

func TestDecodeAttributeSelectionMalformed(t *testing.T) {
	t.Parallel()

	_, err := DecodeAttributeSelection("{not json")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDecode {
		t.Fatalf("expected DECODE_ERROR, got %v", err)
	}
}

func TestEncodeDecodeRoundTripPreservesEquality(t *testing.T) {
	t.Parallel()

	colorID := uuid.New()
	sizeID := uuid.New()
	linked := uuid.New()

	selection := AttributeSelection{
		colorID: {{Value: "red"}, {Value: "blue"}},
		sizeID:  {{LinkedProductID: &linked, Quantity: 2}},
	}

	decoded, err := DecodeAttributeSelection(selection.Encode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !selection.Equals(decoded) {
		t.Fatalf("round trip changed the selection: %s vs %s", selection.Encode(), decoded.Encode())
	}
}

func TestEqualsIsOrderInsensitive(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	a := AttributeSelection{id: {{Value: "s"}, {Value: "m"}}}
	b := AttributeSelection{id: {{Value: "m"}, {Value: "s"}}}

	if !a.Equals(b) {
		t.Fatal("value order must not affect equality")
	}
}

func TestEqualsDistinguishesValuesAndQuantities(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	linked := uuid.New()

	a := AttributeSelection{id: {{Value: "red"}}}
	b := AttributeSelection{id: {{Value: "blue"}}}
	if a.Equals(b) {
		t.Fatal("different values must not compare equal")
	}

	c := AttributeSelection{id: {{LinkedProductID: &linked, Quantity: 1}}}
	d := AttributeSelection{id: {{LinkedProductID: &linked, Quantity: 2}}}
	if c.Equals(d) {
		t.Fatal("linked-product quantity is part of identity")
	}
}

func TestMergeKeysFromAddsOnlyMissingAttributes(t *testing.T) {
	t.Parallel()

	colorID := uuid.New()
	sizeID := uuid.New()

	a := AttributeSelection{colorID: {{Value: "red"}}}
	b := AttributeSelection{
		colorID: {{Value: "green"}},
		sizeID:  {{Value: "xl"}},
	}

	merged := a.MergeKeysFrom(b)

	if len(merged[colorID]) != 1 || merged[colorID][0].Value != "red" {
		t.Fatalf("existing attribute must keep its values, got %+v", merged[colorID])
	}
	if len(merged[sizeID]) != 1 || merged[sizeID][0].Value != "xl" {
		t.Fatalf("missing attribute must be added, got %+v", merged[sizeID])
	}
	if len(a) != 1 {
		t.Fatal("merge must not mutate the receiver")
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	super := AttributeSelection{id: {{Value: "a"}, {Value: "b"}}}
	sub := AttributeSelection{id: {{Value: "b"}}}

	if !super.Contains(sub) {
		t.Fatal("superset should contain subset")
	}
	if sub.Contains(super) {
		t.Fatal("subset should not contain superset")
	}
}
