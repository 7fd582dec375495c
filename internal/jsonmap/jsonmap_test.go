package jsonmap

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestUnmarshalKeepsDocumentOrder(t *testing.T) {
	var m Map[int]
	if err := json.Unmarshal([]byte(`{"zeta": 1, "alpha": 2, "mid": 3}`), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"zeta", "alpha", "mid"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected keys %v, got %v", want, got)
	}

	if got := m.Values(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("unexpected values: %v", got)
	}
}

func TestUnmarshalDuplicateKeyKeepsFirstPosition(t *testing.T) {
	var m Map[string]
	if err := json.Unmarshal([]byte(`{"a": "x", "b": "y", "a": "z"}`), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := m.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected keys: %v", got)
	}
	if v, _ := m.Get("a"); v != "z" {
		t.Fatalf("expected last value to win, got %q", v)
	}
}

func TestUnmarshalNestedStruct(t *testing.T) {
	type profile struct {
		Items []string `json:"items"`
	}

	var m Map[profile]
	if err := json.Unmarshal([]byte(`{"senior": {"items": ["a"]}, "junior": {"items": []}}`), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Keys()[0] != "senior" {
		t.Fatalf("expected senior first, got %v", m.Keys())
	}
	p, ok := m.Get("senior")
	if !ok || len(p.Items) != 1 {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestUnmarshalNullAndErrors(t *testing.T) {
	var m Map[int]
	if err := json.Unmarshal([]byte(`null`), &m); err != nil {
		t.Fatalf("unexpected error on null: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty map after null")
	}

	if err := json.Unmarshal([]byte(`[1, 2]`), &m); err == nil {
		t.Fatalf("expected error for array input")
	}

	if err := json.Unmarshal([]byte(`{"a": "not a number"}`), &m); err == nil {
		t.Fatalf("expected error for mistyped value")
	}
}

func TestMarshalRoundTripsOrder(t *testing.T) {
	m := New[int]()
	m.Set("b", 2)
	m.Set("a", 1)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(data) != `{"b":2,"a":1}` {
		t.Fatalf("unexpected encoding: %s", data)
	}
}

func TestNilMapIsEmpty(t *testing.T) {
	var m *Map[int]
	if m.Len() != 0 || m.Keys() != nil || m.Has("x") {
		t.Fatalf("expected nil map to behave as empty")
	}
}
