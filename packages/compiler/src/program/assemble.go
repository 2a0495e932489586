package program

import (
	"fmt"
	"regexp"
	"strings"

	"weftc-go/packages/compiler/src/codebuilder"
	"weftc-go/packages/compiler/src/dom"
	"weftc-go/packages/compiler/src/helpers"
	"weftc-go/packages/compiler/src/namer"
	"weftc-go/packages/compiler/src/util"
)

// Unit is an assembled program: the rendered block functions plus the
// runtime helpers they ended up referencing, closed over dependencies.
type Unit struct {
	Component  string
	Mode       string
	ImportPath string
	Helpers    []helpers.Helper
	Blocks     []string
}

// JS serializes the unit into module text: helper definitions (or a single
// import declaration) followed by the block functions in program order.
func (u *Unit) JS() string {
	var out strings.Builder
	if u.Mode == "import" {
		if len(u.Helpers) > 0 {
			names := make([]string, len(u.Helpers))
			for i, h := range u.Helpers {
				names[i] = h.Name
			}
			out.WriteString("import { " + strings.Join(names, ", ") + " } from " + util.QuoteJS(u.ImportPath) + ";\n\n")
		}
	} else {
		for _, h := range u.Helpers {
			out.WriteString(h.Source)
			out.WriteString("\n\n")
		}
	}
	for i, block := range u.Blocks {
		if i > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString(block)
	}
	out.WriteString("\n")
	return out.String()
}

// placeholderRe matches ${name} and ${name:argument} fragment placeholders.
var placeholderRe = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(?::([a-zA-Z_$][a-zA-Z0-9_$]*))?\}`)

type assembler struct {
	namer *namer.Namer
	used  map[string]bool
	order []string
	err   error
}

// Assemble builds every block of prog bottom-up and renders it. All blocks
// of a program share one name allocator, with the helper names and every
// name the program declares pre-claimed so generated locals never shadow
// either; a child's rendered text is copied into its parent's create phase
// as an opaque unit.
func Assemble(prog *Program) (*Unit, error) {
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	mode := prog.Helpers
	if mode == "" {
		mode = "inline"
	}
	if mode == "import" && prog.Import == "" {
		return nil, &ValidateError{Field: "import", Msg: "is required when helpers are imported"}
	}

	a := &assembler{
		namer: namer.NewNamer(),
		used:  make(map[string]bool),
	}
	for _, name := range helpers.Names() {
		a.namer.Claim(name)
	}
	claimDeclaredNames(a.namer, prog.Blocks)

	blocks := make([]string, 0, len(prog.Blocks))
	for i := range prog.Blocks {
		text, err := a.assembleBlock(&prog.Blocks[i], nil)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, text)
	}

	used, err := helpers.Expand(a.order)
	if err != nil {
		return nil, err
	}
	return &Unit{
		Component:  prog.Component,
		Mode:       mode,
		ImportPath: prog.Import,
		Helpers:    used,
		Blocks:     blocks,
	}, nil
}

// claimDeclaredNames marks every block, variable and element name of the
// tree as taken, keeping allocated names clear of names the program owns.
// The whole tree is claimed before any block renders: children render
// before their parent's elements are registered.
func claimDeclaredNames(nm *namer.Namer, blocks []BlockIR) {
	for i := range blocks {
		nm.Claim(blocks[i].Name)
		for _, v := range blocks[i].Variables {
			nm.Claim(v.Name)
		}
		for _, el := range blocks[i].Elements {
			nm.Claim(el.Name)
		}
		claimDeclaredNames(nm, blocks[i].Children)
	}
}

func (a *assembler) assembleBlock(ir *BlockIR, parent *dom.Block) (string, error) {
	opts := dom.Options{
		Name:                ir.Name,
		Params:              ir.Params,
		Component:           ir.Component,
		Key:                 ir.Key,
		Expression:          ir.Expression,
		Context:             ir.Context,
		Contexts:            ir.Contexts,
		ContextDependencies: ir.ContextDependencies,
		Indexes:             ir.Indexes,
		IndexNames:          ir.IndexNames,
		ListNames:           ir.ListNames,
		Comment:             ir.Comment,
	}

	var b *dom.Block
	var err error
	if parent != nil {
		b, err = parent.Child(opts)
	} else {
		opts.Namer = a.namer
		opts.Helper = a.helper
		b, err = dom.New(opts)
	}
	if err != nil {
		return "", err
	}

	b.AddDependencies(ir.Dependencies...)
	b.First = ir.First
	b.Autofocus = ir.Autofocus
	b.HasUpdateMethod = ir.HasUpdateMethod
	b.HasIntroMethod = ir.HasIntroMethod
	b.HasOutroMethod = ir.HasOutroMethod
	b.Outros = ir.Outros

	for _, v := range ir.Variables {
		if v.Init != nil {
			init, err := a.resolve(b, *v.Init)
			if err != nil {
				return "", err
			}
			err = b.AddVariable(v.Name, init)
			if err != nil {
				return "", fmt.Errorf("block %s: %w", ir.Name, err)
			}
		} else if err := b.AddVariable(v.Name); err != nil {
			return "", fmt.Errorf("block %s: %w", ir.Name, err)
		}
	}

	// Children first: their finished text lands in this block's create
	// phase before any of its own statements.
	for i := range ir.Children {
		text, err := a.assembleBlock(&ir.Children[i], b)
		if err != nil {
			return "", err
		}
		b.Builders.Create.AddBlock(text)
	}

	for _, el := range ir.Elements {
		create, err := a.resolve(b, el.Create)
		if err != nil {
			return "", err
		}
		b.AddElement(el.Name, create, el.Parent, el.NeedsIdentifier)
	}

	for _, phase := range phaseOrder {
		builder := phaseBuilder(b, phase)
		for _, frag := range ir.Fragments[phase] {
			text, err := a.resolve(b, frag)
			if err != nil {
				return "", err
			}
			if strings.Contains(text, "\n") {
				builder.AddBlock(text)
			} else {
				builder.AddLine(text)
			}
		}
	}

	return b.Render(), nil
}

// resolve substitutes fragment placeholders against the block being built.
func (a *assembler) resolve(b *dom.Block, text string) (string, error) {
	var resolveErr error
	out := placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		groups := placeholderRe.FindStringSubmatch(match)
		kind, arg := groups[1], groups[2]
		switch kind {
		case "target":
			return b.Target
		case "anchor":
			return b.Anchor
		case "component":
			return b.Component
		case "key":
			if b.KeyName == "" {
				resolveErr = &ValidateError{Block: b.Name, Field: "fragments", Msg: "uses ${key} in an unkeyed block"}
				return match
			}
			return b.KeyName
		case "outros":
			return b.Alias("outros")
		case "outrocallback":
			return b.Alias("outrocallback")
		case "alias":
			if arg == "" {
				resolveErr = &ValidateError{Block: b.Name, Field: "fragments", Msg: "uses ${alias} without a role"}
				return match
			}
			return b.Alias(arg)
		case "helper":
			if arg == "" {
				resolveErr = &ValidateError{Block: b.Name, Field: "fragments", Msg: "uses ${helper} without a name"}
				return match
			}
			return a.helper(arg)
		default:
			resolveErr = &ValidateError{Block: b.Name, Field: "fragments", Msg: fmt.Sprintf("uses unknown placeholder %q", kind)}
			return match
		}
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	if a.err != nil {
		err := a.err
		a.err = nil
		return "", err
	}
	return out, nil
}

// helper records a runtime helper reference and returns the name to emit.
// Unknown names are reported through the next resolve call.
func (a *assembler) helper(name string) string {
	if a.used[name] {
		return name
	}
	if _, err := helpers.Lookup(name); err != nil {
		if a.err == nil {
			a.err = err
		}
		return name
	}
	a.used[name] = true
	a.order = append(a.order, name)
	return name
}

func phaseBuilder(b *dom.Block, phase string) *codebuilder.Builder {
	switch phase {
	case "create":
		return &b.Builders.Create
	case "mount":
		return &b.Builders.Mount
	case "intro":
		return &b.Builders.Intro
	case "update":
		return &b.Builders.Update
	case "outro":
		return &b.Builders.Outro
	case "unmount":
		return &b.Builders.Unmount
	case "detach_raw":
		return &b.Builders.DetachRaw
	case "destroy":
		return &b.Builders.Destroy
	}
	panic(fmt.Sprintf("AssertionError: unknown phase %q", phase))
}
