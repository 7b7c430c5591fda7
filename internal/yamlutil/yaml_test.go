package yamlutil

import (
	"errors"
	"strings"
	"testing"
)

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	var v struct {
		Title string `yaml:"title"`
		Count int    `yaml:"count"`
	}
	if err := Unmarshal([]byte("title: Hello\ncount: 3\n"), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.Title != "Hello" || v.Count != 3 {
		t.Errorf("got %+v", v)
	}
}

func TestUnmarshalValidation(t *testing.T) {
	t.Parallel()

	var v any
	if err := Unmarshal(nil, &v); !errors.Is(err, ErrNilData) {
		t.Errorf("nil data error = %v, want ErrNilData", err)
	}
	if err := Unmarshal([]byte("a: 1"), nil); !errors.Is(err, ErrNilDestination) {
		t.Errorf("nil destination error = %v, want ErrNilDestination", err)
	}

	big := []byte("a: " + strings.Repeat("x", MaxInputSize))
	if err := Unmarshal(big, &v); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("oversized input error = %v, want ErrInputTooLarge", err)
	}
}

func TestUnmarshalOrdered(t *testing.T) {
	t.Parallel()

	ms, err := UnmarshalOrdered([]byte("zeta: 1\nalpha: 2\nmid: 3\n"))
	if err != nil {
		t.Fatalf("UnmarshalOrdered() error = %v", err)
	}
	keys := make([]string, 0, len(ms))
	for _, item := range ms {
		keys = append(keys, item.Key.(string))
	}
	want := []string{"zeta", "alpha", "mid"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("key order = %v, want %v", keys, want)
		}
	}
}

func TestUnmarshalOrderedNotMapping(t *testing.T) {
	t.Parallel()

	if _, err := UnmarshalOrdered([]byte("- a\n- b\n")); !errors.Is(err, ErrNotMapping) {
		t.Errorf("sequence root error = %v, want ErrNotMapping", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	in := map[string]string{"title": "Doc"}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out map[string]string
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out["title"] != "Doc" {
		t.Errorf("round trip = %v", out)
	}
}
