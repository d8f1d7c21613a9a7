package kvstore

import "testing"

func TestBoltBackendSetGetRemove(t *testing.T) {
	dir := t.TempDir()
	b := NewBoltBackend(dir)
	if err := b.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer b.Disconnect()

	s := New(b, nil)
	if err := s.Set("k", &Value{Type: "text/plain", Data: []byte("v1")}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("k", &Value{Type: "text/plain", Data: []byte("v2")}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	values, err := b.Get("k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("Get() returned %d values, want 2", len(values))
	}
	if string(values[0].Data) != "v2" {
		t.Fatalf("most recent write = %q, want v2 first", values[0].Data)
	}

	if err := b.Remove("k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	values, _ = b.Get("k")
	if len(values) != 0 {
		t.Fatalf("Get() after Remove() returned %d values, want 0", len(values))
	}
}
