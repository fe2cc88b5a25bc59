package memdb

import (
	"bytes"
	"context"
	"testing"

	"github.com/empower1/wasmvm/internal/backend"
)

func TestSetGetRemoveRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	if _, err := s.Set(ctx, []byte("foo"), []byte("bar")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, _, err := s.Get(ctx, []byte("foo"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(v, []byte("bar")) {
		t.Fatalf("got %q, want %q", v, "bar")
	}

	if _, err := s.Remove(ctx, []byte("foo")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	v, _, err = s.Get(ctx, []byte("foo"))
	if err != nil {
		t.Fatalf("Get after remove: %v", err)
	}
	if v != nil {
		t.Fatalf("expected absent value after remove, got %q", v)
	}
}

func TestScanAscendingAndDescending(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)
	for _, k := range []string{"a", "b", "c", "d"} {
		if _, err := s.Set(ctx, []byte(k), []byte(k)); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	id, _, err := s.Scan(ctx, []byte("a"), []byte("d"), backend.Ascending)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var got []string
	for {
		kv, _, err := s.Next(ctx, id)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if kv == nil {
			break
		}
		got = append(got, string(kv.Key))
	}
	want := []string{"a", "b", "c"} // end "d" is exclusive
	if len(got) != len(want) {
		t.Fatalf("ascending scan got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ascending scan got %v, want %v", got, want)
		}
	}

	descID, _, err := s.Scan(ctx, []byte("a"), []byte("d"), backend.Descending)
	if err != nil {
		t.Fatalf("Scan descending: %v", err)
	}
	kv, _, err := s.Next(ctx, descID)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if kv == nil || string(kv.Key) != "c" {
		t.Fatalf("descending scan should start at c, got %v", kv)
	}
}

func TestNextOnUnknownIteratorFails(t *testing.T) {
	s := NewStore(nil)
	_, _, err := s.Next(context.Background(), 999)
	if err == nil {
		t.Fatal("expected error reusing an iterator ID from a prior call")
	}
}
