// Package program loads serialized block programs and assembles them into
// JavaScript modules. A program is the hand-off format between the template
// front end and this back end: every fragment of generated code has already
// been computed, and the program records how the fragments distribute over
// blocks and phases.
package program

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"weftc-go/packages/compiler/src/util"
)

// Program is one compiled component: a component name plus its block tree.
type Program struct {
	Component string `yaml:"component"`

	// Helpers selects how runtime helpers reach the module: "inline" embeds
	// their definitions, "import" emits an import declaration. Empty means
	// inline.
	Helpers string `yaml:"helpers,omitempty"`

	// Import is the module specifier helpers are imported from when Helpers
	// is "import".
	Import string `yaml:"import,omitempty"`

	Blocks []BlockIR `yaml:"blocks"`
}

// BlockIR is the serialized form of one block. Fragments hold pre-computed
// statements keyed by phase; placeholders of the form ${target}, ${anchor},
// ${component}, ${key}, ${outros}, ${outrocallback}, ${alias:role} and
// ${helper:name} are resolved during assembly.
type BlockIR struct {
	Name                string              `yaml:"name"`
	Params              []string            `yaml:"params,omitempty"`
	Component           string              `yaml:"component,omitempty"`
	Key                 string              `yaml:"key,omitempty"`
	Expression          string              `yaml:"expression,omitempty"`
	Context             string              `yaml:"context,omitempty"`
	Contexts            map[string]string   `yaml:"contexts,omitempty"`
	ContextDependencies map[string][]string `yaml:"context_dependencies,omitempty"`
	Indexes             map[string]string   `yaml:"indexes,omitempty"`
	IndexNames          map[string]string   `yaml:"index_names,omitempty"`
	ListNames           map[string]string   `yaml:"list_names,omitempty"`
	Dependencies        []string            `yaml:"dependencies,omitempty"`
	Variables           []VariableIR        `yaml:"variables,omitempty"`
	Elements            []ElementIR         `yaml:"elements,omitempty"`
	Fragments           map[string][]string `yaml:"fragments,omitempty"`
	HasUpdateMethod     bool                `yaml:"has_update_method,omitempty"`
	HasIntroMethod      bool                `yaml:"has_intro_method,omitempty"`
	HasOutroMethod      bool                `yaml:"has_outro_method,omitempty"`
	Outros              int                 `yaml:"outros,omitempty"`
	Autofocus           string              `yaml:"autofocus,omitempty"`
	First               string              `yaml:"first,omitempty"`
	Comment             string              `yaml:"comment,omitempty"`
	Children            []BlockIR           `yaml:"children,omitempty"`
}

// VariableIR is one declared local. A nil Init is the bare declaration form.
type VariableIR struct {
	Name string  `yaml:"name"`
	Init *string `yaml:"init,omitempty"`
}

// ElementIR is one node construction. Create is the construct expression,
// Parent the name of the enclosing node within the block (empty for
// top-level).
type ElementIR struct {
	Name            string `yaml:"name"`
	Create          string `yaml:"create"`
	Parent          string `yaml:"parent,omitempty"`
	NeedsIdentifier bool   `yaml:"needs_identifier,omitempty"`
}

// ValidateError reports a structurally invalid program. Block is empty for
// program-level problems.
type ValidateError struct {
	Block string
	Field string
	Msg   string
}

func (e *ValidateError) Error() string {
	if e.Block == "" {
		return fmt.Sprintf("invalid program: %s %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("invalid block %q: %s %s", e.Block, e.Field, e.Msg)
}

var phaseOrder = []string{
	"create", "mount", "intro", "update", "outro", "unmount", "detach_raw", "destroy",
}

var knownPhases = func() map[string]bool {
	m := make(map[string]bool, len(phaseOrder))
	for _, phase := range phaseOrder {
		m[phase] = true
	}
	return m
}()

// Load reads and parses the program at path.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}
	prog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Parse decodes a YAML program and validates its structure.
func Parse(data []byte) (*Program, error) {
	var prog Program
	if err := yaml.Unmarshal(data, &prog); err != nil {
		return nil, fmt.Errorf("parse program: %w", err)
	}
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	return &prog, nil
}

// Validate checks the program structure without assembling it.
func (p *Program) Validate() error {
	if p.Component == "" {
		return &ValidateError{Field: "component", Msg: "is required"}
	}
	if !util.IsLegalIdentifier(p.Component) {
		return &ValidateError{Field: "component", Msg: fmt.Sprintf("%q is not a legal identifier", p.Component)}
	}
	switch p.Helpers {
	case "", "inline", "import":
	default:
		return &ValidateError{Field: "helpers", Msg: fmt.Sprintf("must be inline or import, got %q", p.Helpers)}
	}
	if len(p.Blocks) == 0 {
		return &ValidateError{Field: "blocks", Msg: "is empty"}
	}

	seen := make(map[string]bool)
	for i := range p.Blocks {
		if err := p.Blocks[i].validate(seen); err != nil {
			return err
		}
	}
	return nil
}

func (ir *BlockIR) validate(seen map[string]bool) error {
	if ir.Name == "" {
		return &ValidateError{Field: "name", Msg: "is required"}
	}
	if !util.IsLegalIdentifier(ir.Name) {
		return &ValidateError{Block: ir.Name, Field: "name", Msg: "is not a legal identifier"}
	}
	if seen[ir.Name] {
		return &ValidateError{Block: ir.Name, Field: "name", Msg: "is already defined"}
	}
	seen[ir.Name] = true

	if ir.Outros < 0 {
		return &ValidateError{Block: ir.Name, Field: "outros", Msg: "must not be negative"}
	}
	for phase := range ir.Fragments {
		if !knownPhases[phase] {
			return &ValidateError{Block: ir.Name, Field: "fragments", Msg: fmt.Sprintf("has unknown phase %q", phase)}
		}
	}
	for _, v := range ir.Variables {
		if v.Name == "" {
			return &ValidateError{Block: ir.Name, Field: "variables", Msg: "has an entry without a name"}
		}
	}
	for _, el := range ir.Elements {
		if el.Name == "" {
			return &ValidateError{Block: ir.Name, Field: "elements", Msg: "has an entry without a name"}
		}
		if el.Create == "" {
			return &ValidateError{Block: ir.Name, Field: "elements", Msg: fmt.Sprintf("%q has no create expression", el.Name)}
		}
	}
	for i := range ir.Children {
		if err := ir.Children[i].validate(seen); err != nil {
			return err
		}
	}
	return nil
}
