package dom

import "fmt"

// InvalidOptionsError reports a Block constructed without a required option.
type InvalidOptionsError struct {
	Missing string
}

func (e *InvalidOptionsError) Error() string {
	return fmt.Sprintf("block options missing required field %s", e.Missing)
}

// DeclarationConflictError reports a local variable registered twice with
// differing initializers. A nil initializer is the bare declaration form.
type DeclarationConflictError struct {
	Name     string
	Existing *string
	New      *string
}

func (e *DeclarationConflictError) Error() string {
	return fmt.Sprintf("variable %q already declared with a different initializer (existing: %s, new: %s)",
		e.Name, formatInitializer(e.Existing), formatInitializer(e.New))
}

func formatInitializer(init *string) string {
	if init == nil {
		return "none"
	}
	return fmt.Sprintf("%q", *init)
}
