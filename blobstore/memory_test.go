package blobstore

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Put("a/1.json", []byte("one"))
	s.Put("a/2.json", []byte("two"))
	s.Put("b/3.json", []byte("three"))

	keys, err := s.List(ctx, "a/")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "a/1.json" || keys[1] != "a/2.json" {
		t.Errorf("List = %v", keys)
	}

	data, err := s.Fetch(ctx, "a/1.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one" {
		t.Errorf("Fetch = %q", data)
	}

	if _, err := s.Fetch(ctx, "missing"); err != ErrNotFound {
		t.Errorf("Fetch(missing) = %v, want ErrNotFound", err)
	}

	// Fetch returns a copy; callers cannot corrupt the stored blob.
	data[0] = 'X'
	again, _ := s.Fetch(ctx, "a/1.json")
	if string(again) != "one" {
		t.Errorf("stored blob mutated: %q", again)
	}
}
