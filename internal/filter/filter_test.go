package filter

import "testing"

func TestApplyEmptyExpression(t *testing.T) {
	data := map[string]any{"a": 1}
	result, err := Apply(data, "")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	m, ok := result.(map[string]any)
	if !ok || m["a"] != 1 {
		t.Fatalf("expected input unchanged, got %v", result)
	}
}

func TestApplySingleValue(t *testing.T) {
	data := map[string]any{"name": "alpha", "size": float64(3)}
	result, err := Apply(data, ".name")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if result != "alpha" {
		t.Fatalf("expected 'alpha', got %v", result)
	}
}

func TestApplyMultipleValues(t *testing.T) {
	data := []any{
		map[string]any{"id": float64(1)},
		map[string]any{"id": float64(2)},
	}
	result, err := Apply(data, ".[].id")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	arr, ok := result.([]any)
	if !ok {
		t.Fatalf("expected []any, got %T", result)
	}
	if len(arr) != 2 || arr[0] != float64(1) || arr[1] != float64(2) {
		t.Fatalf("expected [1 2], got %v", arr)
	}
}

func TestApplyFixesShellEscapes(t *testing.T) {
	data := map[string]any{"a": 1, "b": nil}
	result, err := Apply(data, `[.a, .b] | map(select(. \!= null))`)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	arr, ok := result.([]any)
	if !ok {
		t.Fatalf("expected []any, got %T", result)
	}
	// gojq preserves int when input is int (not JSON-unmarshaled float64)
	if len(arr) != 1 || arr[0] != 1 {
		t.Fatalf("expected [1], got %v", arr)
	}
}

func TestApplyInvalidExpression(t *testing.T) {
	if _, err := Apply(map[string]any{}, ".["); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyToJSON(t *testing.T) {
	out, err := ApplyToJSON([]byte(`{"items":[{"id":1},{"id":2}]}`), ".items | length")
	if err != nil {
		t.Fatalf("ApplyToJSON failed: %v", err)
	}
	if string(out) != "2" {
		t.Fatalf("expected 2, got %s", out)
	}
}

func TestApplyToJSONInvalidInput(t *testing.T) {
	if _, err := ApplyToJSON([]byte(`{not json`), ".a"); err == nil {
		t.Fatal("expected invalid JSON error")
	}
}

func TestApplyFromJSON(t *testing.T) {
	result, err := ApplyFromJSON([]byte(`{"st": "o", "ib": 48}`), "{st: .st, ib: .ib}")
	if err != nil {
		t.Fatalf("ApplyFromJSON failed: %v", err)
	}
	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", result)
	}
	if m["st"] != "o" {
		t.Fatalf("expected st=o, got %v", m["st"])
	}
	if m["ib"] != float64(48) {
		t.Fatalf("expected ib=48, got %v", m["ib"])
	}
}
