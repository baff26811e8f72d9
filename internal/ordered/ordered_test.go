package ordered

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMapSetGetDelete(t *testing.T) {
	m := NewMap[int]()

	if m.Len() != 0 {
		t.Errorf("Expected empty map, got len %d", m.Len())
	}

	m.Set("a", 1)
	m.Set("b", 2)

	v, ok := m.Get("a")
	if !ok || v != 1 {
		t.Errorf("Expected a=1, got %d (ok=%v)", v, ok)
	}

	if !m.Has("b") {
		t.Error("Expected Has(b) to be true")
	}
	if m.Has("c") {
		t.Error("Expected Has(c) to be false")
	}

	m.Delete("a")
	if m.Has("a") {
		t.Error("Expected a to be deleted")
	}
	if m.Len() != 1 {
		t.Errorf("Expected len 1 after delete, got %d", m.Len())
	}

	// Deleting an absent key is a no-op
	m.Delete("missing")
	if m.Len() != 1 {
		t.Errorf("Expected len 1, got %d", m.Len())
	}
}

func TestMapSetOverwriteKeepsPosition(t *testing.T) {
	m := NewMap[string]()
	m.Set("first", "1")
	m.Set("second", "2")
	m.Set("first", "updated")

	keys := m.Keys()
	expected := []string{"first", "second"}
	if !reflect.DeepEqual(keys, expected) {
		t.Errorf("Expected keys %v, got %v", expected, keys)
	}

	v, _ := m.Get("first")
	if v != "updated" {
		t.Errorf("Expected updated value, got %s", v)
	}
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := NewMap[int]()
	inserted := []string{"zebra", "apple", "mango", "banana"}
	for i, k := range inserted {
		m.Set(k, i)
	}

	if !reflect.DeepEqual(m.Keys(), inserted) {
		t.Errorf("Expected keys in insertion order %v, got %v", inserted, m.Keys())
	}

	values := m.Values()
	for i, v := range values {
		if v != i {
			t.Errorf("Expected value %d at position %d, got %d", i, i, v)
		}
	}
}

func TestMapMarshalOrder(t *testing.T) {
	m := NewMap[int]()
	m.Set("z", 1)
	m.Set("a", 2)
	m.Set("m", 3)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	expected := `{"z":1,"a":2,"m":3}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, string(data))
	}
}

func TestMapUnmarshalPreservesFileOrder(t *testing.T) {
	input := `{"third.mp4":3,"first.mp4":1,"second.mp4":2}`

	m := NewMap[int]()
	if err := json.Unmarshal([]byte(input), m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	expected := []string{"third.mp4", "first.mp4", "second.mp4"}
	if !reflect.DeepEqual(m.Keys(), expected) {
		t.Errorf("Expected keys %v, got %v", expected, m.Keys())
	}
}

func TestMapRoundTrip(t *testing.T) {
	type entry struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
	}

	m := NewMap[entry]()
	m.Set("b.mp4", entry{Name: "b.mp4", Size: 100})
	m.Set("a.mp4", entry{Name: "a.mp4", Size: 200})

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	decoded := NewMap[entry]()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(decoded.Keys(), m.Keys()) {
		t.Errorf("Expected keys %v, got %v", m.Keys(), decoded.Keys())
	}
	got, _ := decoded.Get("a.mp4")
	if got.Size != 200 {
		t.Errorf("Expected size 200, got %d", got.Size)
	}
}

func TestMapUnmarshalRejectsNonObject(t *testing.T) {
	m := NewMap[int]()
	if err := json.Unmarshal([]byte(`[1,2,3]`), m); err == nil {
		t.Error("Expected error unmarshaling a JSON array")
	}
}
