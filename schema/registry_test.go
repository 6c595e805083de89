package schema

import "testing"

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	d := NewClassDescriptor("person")

	if err := reg.Register(d); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, ok := reg.Lookup("person")
	if !ok {
		t.Fatal("Lookup: got !ok")
	}
	if got != d {
		t.Error("Lookup returned a different descriptor")
	}

	if _, ok := reg.Lookup("ghost"); ok {
		t.Error("Lookup(ghost): got ok")
	}
}

func TestRegistry_ReRegisterSameDescriptor(t *testing.T) {
	reg := NewRegistry()
	d := NewClassDescriptor("person")

	if err := reg.Register(d); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(d); err != nil {
		t.Errorf("re-registering the same descriptor: %v", err)
	}
}

func TestRegistry_NameConflict(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(NewClassDescriptor("person")); err != nil {
		t.Fatal(err)
	}

	err := reg.Register(NewClassDescriptor("person"))
	if err == nil {
		t.Fatal("conflicting registration accepted")
	}
	if _, ok := err.(*ConflictError); !ok {
		t.Errorf("error type: got %T, want *ConflictError", err)
	}
}

func TestRegistry_TypeNames(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"a", "b"} {
		if err := reg.Register(NewClassDescriptor(name)); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(reg.TypeNames()); got != 2 {
		t.Errorf("TypeNames: got %d entries, want 2", got)
	}
}
