// pkg/engine/registry_test.go
package engine

import (
	"context"
	"errors"
	"testing"
)

// --- Mock Module for Testing ---

type mockModule struct {
	meta    Metadata
	runFunc func(ctx context.Context, opts *Options) (Result, error)
}

func (m *mockModule) Metadata() Metadata {
	return m.meta
}

func (m *mockModule) Run(ctx context.Context, opts *Options) (Result, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return Result{ResultKey: "mock run complete"}, nil
}

func mockFactory(name, description string) Factory {
	return func() Module {
		return &mockModule{
			meta: Metadata{
				Name:        name,
				Description: description,
				Version:     "1.0.0",
				Author:      "test",
				Options: []OptionSpec{
					{Name: "target", Description: "Target host", Type: OptionString, Required: true},
					{Name: "ports", Description: "Port spec", Type: OptionString, Default: "1-1000"},
				},
			},
		}
	}
}

// --- End Mock Module ---

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(mockFactory("test-module", "A test module.")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	factory, err := r.Lookup("test-module")
	if err != nil {
		t.Fatalf("Lookup after Register failed: %v", err)
	}
	if factory == nil {
		t.Fatal("Lookup returned a nil factory.")
	}
	if got := factory().Metadata().Name; got != "test-module" {
		t.Errorf("Expected module name 'test-module', got '%s'", got)
	}
}

func TestRegistry_Register_DuplicateKeepsOriginal(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(mockFactory("dup-module", "the original")); err != nil {
		t.Fatalf("First Register failed: %v", err)
	}

	err := r.Register(mockFactory("dup-module", "the impostor"))
	if err == nil {
		t.Fatal("Expected error for duplicate registration, got nil.")
	}
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}

	var dupErr *DuplicateNameError
	if !errors.As(err, &dupErr) {
		t.Fatalf("Expected *DuplicateNameError, got %T", err)
	}
	if dupErr.Name != "dup-module" {
		t.Errorf("Expected duplicate name 'dup-module', got '%s'", dupErr.Name)
	}

	// The earlier registration must remain intact.
	metas := r.List()
	if len(metas) != 1 {
		t.Fatalf("Expected 1 registered module, got %d", len(metas))
	}
	if metas[0].Description != "the original" {
		t.Errorf("Expected original registration to survive, got description '%s'", metas[0].Description)
	}
}

func TestRegistry_Register_ContractViolations(t *testing.T) {
	valid := Metadata{
		Name:        "valid-module",
		Description: "desc",
		Version:     "0.1.0",
		Author:      "test",
	}

	tests := []struct {
		name    string
		factory Factory
	}{
		{"nil factory", nil},
		{"factory returns nil", func() Module { return nil }},
		{"empty name", func() Module {
			meta := valid
			meta.Name = ""
			return &mockModule{meta: meta}
		}},
		{"uppercase name", func() Module {
			meta := valid
			meta.Name = "Invalid-Name"
			return &mockModule{meta: meta}
		}},
		{"empty description", func() Module {
			meta := valid
			meta.Description = ""
			return &mockModule{meta: meta}
		}},
		{"bad version", func() Module {
			meta := valid
			meta.Version = "not-semver"
			return &mockModule{meta: meta}
		}},
		{"empty author", func() Module {
			meta := valid
			meta.Author = ""
			return &mockModule{meta: meta}
		}},
		{"duplicate option", func() Module {
			meta := valid
			meta.Options = []OptionSpec{
				{Name: "target", Type: OptionString},
				{Name: "target", Type: OptionString},
			}
			return &mockModule{meta: meta}
		}},
		{"unsupported option type", func() Module {
			meta := valid
			meta.Options = []OptionSpec{{Name: "target", Type: "duration"}}
			return &mockModule{meta: meta}
		}},
		{"default does not match type", func() Module {
			meta := valid
			meta.Options = []OptionSpec{{Name: "timing", Type: OptionInt, Default: "fast"}}
			return &mockModule{meta: meta}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(tt.factory)
			if err == nil {
				t.Fatal("Expected contract violation, got nil.")
			}
			if !errors.Is(err, ErrContract) {
				t.Errorf("Expected ErrContract, got %v", err)
			}
			if r.Len() != 0 {
				t.Errorf("Registry must stay empty after rejected registration, has %d entries", r.Len())
			}
		})
	}
}

func TestRegistry_Lookup_NotFound(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("non-existent-module")
	if err == nil {
		t.Fatal("Expected error for non-existent module, got nil.")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("Expected *NotFoundError, got %T", err)
	}
	if nfErr.Name != "non-existent-module" {
		t.Errorf("Expected name 'non-existent-module', got '%s'", nfErr.Name)
	}
}

func TestRegistry_List_RegistrationOrder(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"zeta-module", "alpha-module", "mid-module"} {
		if err := r.Register(mockFactory(name, "desc")); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	names := r.Names()
	want := []string{"zeta-module", "alpha-module", "mid-module"}
	if len(names) != len(want) {
		t.Fatalf("Expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s (registration order, not sorted)", i, names[i], want[i])
		}
	}
}

func TestRegistry_Instantiate_FreshInstances(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(mockFactory("fresh-module", "desc")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	first, err := r.Instantiate("fresh-module")
	if err != nil {
		t.Fatalf("Instantiate failed: %v", err)
	}
	second, err := r.Instantiate("fresh-module")
	if err != nil {
		t.Fatalf("Instantiate failed: %v", err)
	}

	if first == second {
		t.Error("Instantiate must return a fresh instance per call.")
	}
}

func TestGlobalRegistry_RoundTrip(t *testing.T) {
	MustRegisterModuleFactory(mockFactory("global-roundtrip-module", "desc"))

	instance, err := GetModuleInstance("global-roundtrip-module")
	if err != nil {
		t.Fatalf("GetModuleInstance failed: %v", err)
	}
	if instance.Metadata().Name != "global-roundtrip-module" {
		t.Errorf("Expected module name 'global-roundtrip-module', got '%s'", instance.Metadata().Name)
	}
}

func TestMustRegisterModuleFactory_PanicsOnDuplicate(t *testing.T) {
	MustRegisterModuleFactory(mockFactory("global-panic-module", "desc"))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("Expected MustRegisterModuleFactory to panic on duplicate.")
		}
	}()
	MustRegisterModuleFactory(mockFactory("global-panic-module", "desc"))
}
