package helpers_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"weftc-go/packages/compiler/src/helpers"
)

func TestRegistry(t *testing.T) {
	t.Run("should define a source for every helper", func(t *testing.T) {
		for _, h := range helpers.Registry() {
			if h.Source == "" {
				t.Errorf("Helper %q has no source", h.Name)
			}
			if !strings.HasPrefix(h.Source, "function "+h.Name+" (") {
				t.Errorf("Helper %q source does not define it: %q", h.Name, h.Source)
			}
		}
	})

	t.Run("should only depend on registered helpers", func(t *testing.T) {
		for _, h := range helpers.Registry() {
			for _, dep := range h.Deps {
				if _, err := helpers.Lookup(dep); err != nil {
					t.Errorf("Helper %q depends on unregistered %q", h.Name, dep)
				}
			}
		}
	})

	t.Run("should list names in registry order", func(t *testing.T) {
		names := helpers.Names()
		reg := helpers.Registry()
		if len(names) != len(reg) {
			t.Fatalf("Expected %d names, got %d", len(reg), len(names))
		}
		for i, h := range reg {
			if names[i] != h.Name {
				t.Errorf("Expected name %q at %d, got %q", h.Name, i, names[i])
			}
		}
	})
}

func TestLookup(t *testing.T) {
	t.Run("should find a registered helper", func(t *testing.T) {
		h, err := helpers.Lookup("appendNode")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if h.Name != "appendNode" {
			t.Errorf("Expected %q, got %q", "appendNode", h.Name)
		}
	})

	t.Run("should fail for an unknown helper", func(t *testing.T) {
		_, err := helpers.Lookup("teleportNode")
		var unknown *helpers.UnknownHelperError
		if !errors.As(err, &unknown) {
			t.Fatalf("Expected an *UnknownHelperError, got %T: %v", err, err)
		}
		if unknown.Name != "teleportNode" {
			t.Errorf("Expected error to name %q, got %q", "teleportNode", unknown.Name)
		}
	})
}

func TestExpand(t *testing.T) {
	names := func(expanded []helpers.Helper) []string {
		out := make([]string, len(expanded))
		for i, h := range expanded {
			out[i] = h.Name
		}
		return out
	}

	t.Run("should keep first-use order", func(t *testing.T) {
		expanded, err := helpers.Expand([]string{"createText", "insertNode", "noop"})
		if err != nil {
			t.Fatalf("Expand failed: %v", err)
		}
		expected := []string{"createText", "insertNode", "noop"}
		if diff := cmp.Diff(expected, names(expanded)); diff != "" {
			t.Errorf("Expansion mismatch (-expected +got):\n%s", diff)
		}
	})

	t.Run("should insert dependencies before their dependents", func(t *testing.T) {
		expanded, err := helpers.Expand([]string{"detachBetween"})
		if err != nil {
			t.Fatalf("Expand failed: %v", err)
		}
		expected := []string{"detachNode", "detachBetween"}
		if diff := cmp.Diff(expected, names(expanded)); diff != "" {
			t.Errorf("Expansion mismatch (-expected +got):\n%s", diff)
		}
	})

	t.Run("should collapse duplicates", func(t *testing.T) {
		expanded, err := helpers.Expand([]string{"detachNode", "detachBetween", "detachNode"})
		if err != nil {
			t.Fatalf("Expand failed: %v", err)
		}
		expected := []string{"detachNode", "detachBetween"}
		if diff := cmp.Diff(expected, names(expanded)); diff != "" {
			t.Errorf("Expansion mismatch (-expected +got):\n%s", diff)
		}
	})

	t.Run("should fail on an unknown name", func(t *testing.T) {
		_, err := helpers.Expand([]string{"noop", "teleportNode"})
		var unknown *helpers.UnknownHelperError
		if !errors.As(err, &unknown) {
			t.Fatalf("Expected an *UnknownHelperError, got %T: %v", err, err)
		}
	})

	t.Run("should expand nothing to nothing", func(t *testing.T) {
		expanded, err := helpers.Expand(nil)
		if err != nil {
			t.Fatalf("Expand failed: %v", err)
		}
		if len(expanded) != 0 {
			t.Errorf("Expected no helpers, got %d", len(expanded))
		}
	})
}
