package codec

import (
	"encoding/json"
	"testing"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		if !ok {
			t.Fatalf("ByName(%q) not found", name)
		}
		if c.Name() != name {
			t.Errorf("Name() = %q, want %q", c.Name(), name)
		}
	}
	if _, ok := ByName("msgpack"); ok {
		t.Error("unknown codec should not resolve")
	}
}

func TestRawMessagePassthrough(t *testing.T) {
	// The store depends on metadata surviving verbatim as a RawMessage.
	input := []byte(`{"id":"a","metadata":{"embedding":[1,2],"extra":{"k":"v"}}}`)

	type doc struct {
		ID       string          `json:"id"`
		Metadata json.RawMessage `json:"metadata"`
	}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		var d doc
		if err := c.Unmarshal(input, &d); err != nil {
			t.Fatalf("%s: %v", c.Name(), err)
		}
		want := `{"embedding":[1,2],"extra":{"k":"v"}}`
		if string(d.Metadata) != want {
			t.Errorf("%s: metadata = %s, want %s", c.Name(), d.Metadata, want)
		}
	}
}

func TestMalformedInput(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		var v map[string]any
		if err := c.Unmarshal([]byte(`{"id":`), &v); err == nil {
			t.Errorf("%s: expected error for truncated JSON", c.Name())
		}
	}
}
