package dpi

import (
	"testing"

	"github.com/sentrywaf/engine/pkg/field"
	"github.com/sentrywaf/engine/pkg/types"
)

func TestAddGetRemoveRoundTrip(t *testing.T) {
	d := New()
	f := field.Create("User", types.FieldTypeNulStr, "alice")
	if err := d.Add(f); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := d.Get("user")
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v, want field with no error", got, err)
	}

	removed, err := d.Remove("USER")
	if err != nil || removed == nil {
		t.Fatalf("Remove() = %v, %v, want field with no error", removed, err)
	}

	got, err = d.Get("user")
	if err != nil {
		t.Fatalf("Get() after remove error = %v", err)
	}
	if got != nil {
		t.Fatalf("Get() after remove = %v, want nil (NotFound)", got)
	}
}

func TestAddDuplicateNameFailsExists(t *testing.T) {
	d := New()
	_ = d.AddNum("x", 1)
	err := d.AddNum("X", 2)
	if types.KindOf(err) != types.Exists {
		t.Fatalf("second Add kind = %v, want Exists", types.KindOf(err))
	}
}

func TestGetAllPreservesInsertionOrder(t *testing.T) {
	d := New()
	_ = d.AddNum("a", 1)
	_ = d.AddNum("b", 2)
	_ = d.AddNum("c", 3)
	_, _ = d.Remove("b")
	_ = d.AddNum("d", 4)

	all := d.GetAll()
	names := make([]string, len(all))
	for i, f := range all {
		names[i] = f.Name()
	}
	want := []string{"a", "c", "d"}
	if len(names) != len(want) {
		t.Fatalf("GetAll() names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("GetAll() names = %v, want %v", names, want)
		}
	}
}

func TestExpandStrIdentityWithoutReferences(t *testing.T) {
	d := New()
	const template = "plain text with % and no braces"
	out, err := d.ExpandStr(template)
	if err != nil {
		t.Fatalf("ExpandStr() error = %v", err)
	}
	if out != template {
		t.Fatalf("ExpandStr() = %q, want identity %q", out, template)
	}
}

func TestExpandStrSubstitutesKnownField(t *testing.T) {
	d := New()
	_ = d.AddNulStr("user", "alice")
	out, err := d.ExpandStr("hello %{user}")
	if err != nil {
		t.Fatalf("ExpandStr() error = %v", err)
	}
	if out != "hello alice" {
		t.Fatalf("ExpandStr() = %q, want %q", out, "hello alice")
	}
}

func TestExpandStrAbsentNameIsEmptyNotError(t *testing.T) {
	d := New()
	out, err := d.ExpandStr("x=%{missing}y")
	if err != nil {
		t.Fatalf("ExpandStr() error = %v", err)
	}
	if out != "x=y" {
		t.Fatalf("ExpandStr() = %q, want %q", out, "x=y")
	}
}

func TestExpandTestStrDetectsWellFormedReference(t *testing.T) {
	if !ExpandTestStr("hello %{user}") {
		t.Fatal("ExpandTestStr() = false, want true")
	}
	if ExpandTestStr("no refs here, just a % sign") {
		t.Fatal("ExpandTestStr() = true, want false")
	}
}
