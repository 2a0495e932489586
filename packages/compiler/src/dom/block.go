// Package dom assembles blocks: compiled rendering units that accumulate
// generated statements into per-phase code builders and render themselves
// into a self-contained lifecycle function.
package dom

import (
	"sort"

	"weftc-go/packages/compiler/src/codebuilder"
	"weftc-go/packages/compiler/src/expression"
	"weftc-go/packages/compiler/src/namer"
)

// Options configures a new Block. Name, Namer and Helper are required;
// everything else has a usable zero value.
type Options struct {
	// Name is the generated function name of the block.
	Name string

	// Params are the reactive state slots the lifecycle functions receive.
	// The first param is the state object expressions are rewritten against.
	Params []string

	// Component is the naming hint for the component handle parameter.
	// Defaults to "component".
	Component string

	// Key marks the block as part of a keyed iteration. A keyed block takes
	// an extra key parameter and exposes it as the key property.
	Key string

	// Expression and Context describe the enclosing loop, if any.
	Expression string
	Context    string

	// Contexts maps a context name to the source expression it is read from.
	Contexts map[string]string

	// ContextDependencies maps a context name to the outer state names its
	// source expression depends on.
	ContextDependencies map[string][]string

	// Indexes maps an index variable to the context it indexes; IndexNames
	// and ListNames are the reverse lookups from a context to its index and
	// list variables.
	Indexes    map[string]string
	IndexNames map[string]string
	ListNames  map[string]string

	// Namer allocates identifiers that are unique across the whole unit.
	Namer *namer.Namer

	// Helper resolves a runtime helper name to the reference emitted into
	// generated code, registering the helper with the unit as a side effect.
	Helper func(name string) string

	// Comment is emitted above the rendered function when set.
	Comment string
}

// Builders holds the eight phase accumulators of a block. Each phase is an
// independent ordered sequence; nothing is shared between blocks.
type Builders struct {
	Create    codebuilder.Builder
	Mount     codebuilder.Builder
	Intro     codebuilder.Builder
	Update    codebuilder.Builder
	Outro     codebuilder.Builder
	Unmount   codebuilder.Builder
	DetachRaw codebuilder.Builder
	Destroy   codebuilder.Builder
}

type variable struct {
	name string
	init *string
}

// Block is one rendering unit of a compiled component. Statements are
// accumulated into Builders as the template is walked; the flags record
// which optional lifecycle methods the finished artifact must expose.
type Block struct {
	Name   string
	Params []string

	Key        string
	Expression string
	Context    string
	Comment    string

	// Component, Target and Anchor are the allocated parameter names of the
	// lifecycle functions. KeyName is the allocated key parameter, set only
	// for keyed blocks.
	Component string
	Target    string
	Anchor    string
	KeyName   string

	Builders Builders

	// First names the node the block reports as its first property, used by
	// keyed lists to reorder blocks without re-rendering them.
	First string

	// Autofocus names a node to focus once creation is complete.
	Autofocus string

	HasUpdateMethod bool
	HasIntroMethod  bool
	HasOutroMethod  bool

	// Outros counts the transitions that must report completion before an
	// outro invocation may call back.
	Outros int

	contexts            map[string]string
	contextDependencies map[string][]string
	indexes             map[string]string
	indexNames          map[string]string
	listNames           map[string]string

	dependencies map[string]bool
	variables    []variable
	varIndex     map[string]int
	aliases      map[string]string

	namer  *namer.Namer
	helper func(name string) string
	parent *Block
}

// New creates a Block from opts. Context maps are copied so the block owns
// them exclusively, and the params are claimed against the namer so allocated
// identifiers never collide with them.
func New(opts Options) (*Block, error) {
	if opts.Name == "" {
		return nil, &InvalidOptionsError{Missing: "Name"}
	}
	if opts.Namer == nil {
		return nil, &InvalidOptionsError{Missing: "Namer"}
	}
	if opts.Helper == nil {
		return nil, &InvalidOptionsError{Missing: "Helper"}
	}

	componentHint := opts.Component
	if componentHint == "" {
		componentHint = "component"
	}

	b := &Block{
		Name:       opts.Name,
		Params:     append([]string(nil), opts.Params...),
		Key:        opts.Key,
		Expression: opts.Expression,
		Context:    opts.Context,
		Comment:    opts.Comment,

		contexts:            copyStringMap(opts.Contexts),
		contextDependencies: copyListMap(opts.ContextDependencies),
		indexes:             copyStringMap(opts.Indexes),
		indexNames:          copyStringMap(opts.IndexNames),
		listNames:           copyStringMap(opts.ListNames),

		dependencies: make(map[string]bool),
		varIndex:     make(map[string]int),
		aliases:      make(map[string]string),

		namer:  opts.Namer,
		helper: opts.Helper,
	}

	for _, param := range b.Params {
		b.namer.Claim(param)
	}
	b.Component = b.namer.Allocate(componentHint)
	b.Target = b.namer.Allocate("target")
	b.Anchor = b.namer.Allocate("anchor")
	if b.Key != "" {
		b.KeyName = b.namer.Allocate("key")
	}

	return b, nil
}

// AddDependencies unions names into the block's dependency set.
func (b *Block) AddDependencies(names ...string) {
	for _, name := range names {
		b.dependencies[name] = true
	}
}

// HasDependency reports whether name is in the block's dependency set.
func (b *Block) HasDependency(name string) bool {
	return b.dependencies[name]
}

// Dependencies returns the block's dependency set in sorted order.
func (b *Block) Dependencies() []string {
	names := make([]string, 0, len(b.dependencies))
	for name := range b.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindDependencies returns the outer state names expr depends on, resolved
// through the block's context map.
func (b *Block) FindDependencies(expr string) ([]string, error) {
	return expression.Dependencies(b.contextDependencies, b.indexes, expr)
}

// Contextualize rewrites expr so every free identifier resolves against the
// block's context: loop contexts become their source expressions, index
// variables keep their generated names, and everything else is read off the
// state param.
func (b *Block) Contextualize(expr string) (string, error) {
	indexes := make(map[string]string, len(b.indexes))
	for indexVar, context := range b.indexes {
		if name, ok := b.indexNames[context]; ok {
			indexes[indexVar] = name
		} else {
			indexes[indexVar] = indexVar
		}
	}
	state := "state"
	if len(b.Params) > 0 {
		state = b.Params[0]
	}
	contexts := make(map[string]string, len(b.contexts))
	for name, source := range b.contexts {
		contexts[name] = source
	}
	return expression.Contextualize(contexts, indexes, state, expr)
}

// AddVariable registers a local declared at the top of the create phase.
// Registering the same name again is a no-op if the initializer matches and a
// DeclarationConflictError otherwise.
func (b *Block) AddVariable(name string, init ...string) error {
	var newInit *string
	if len(init) > 0 {
		newInit = &init[0]
	}
	if i, ok := b.varIndex[name]; ok {
		existing := b.variables[i].init
		if !initEqual(existing, newInit) {
			return &DeclarationConflictError{Name: name, Existing: existing, New: newInit}
		}
		return nil
	}
	b.varIndex[name] = len(b.variables)
	b.variables = append(b.variables, variable{name: name, init: newInit})
	return nil
}

// Alias returns a block-stable unique name for an internal role. The first
// request allocates the name; later requests for the same role return it
// unchanged.
func (b *Block) Alias(role string) string {
	if name, ok := b.aliases[role]; ok {
		return name
	}
	name := b.namer.Allocate(role)
	b.aliases[role] = name
	return name
}

// AddElement emits the code that constructs a node. Nodes that must stay
// addressable, and nodes with no parent inside the block, get a named
// declaration plus a mount registration; anything else is appended straight
// to its parent with no binding. Top-level nodes also register their
// detachment, since only they are connected to the insertion point.
func (b *Block) AddElement(name, constructExpr, parentNode string, needsIdentifier bool) {
	isTopLevel := parentNode == ""
	if needsIdentifier || isTopLevel {
		b.Builders.Create.AddLine("var " + name + " = " + constructExpr + ";")
		b.Mount(name, parentNode)
	} else {
		b.Builders.Create.AddLine(b.helper("appendNode") + "( " + constructExpr + ", " + parentNode + " );")
	}
	if isTopLevel {
		b.Builders.Unmount.AddLine(b.helper("detachNode") + "( " + name + " );")
	}
}

// Mount registers how a named node reaches the document. Nested nodes are
// appended to their parent during create; top-level nodes are inserted
// relative to the externally supplied anchor during mount, so the block can
// be placed at an arbitrary position.
func (b *Block) Mount(name, parentNode string) {
	if parentNode != "" {
		b.Builders.Create.AddLine(b.helper("appendNode") + "( " + name + ", " + parentNode + " );")
	} else {
		b.Builders.Mount.AddLine(b.helper("insertNode") + "( " + name + ", " + b.Target + ", " + b.Anchor + " );")
	}
}

// Child creates an independent block that inherits this block's context,
// namer and helper resolver. Non-zero fields of overrides replace the
// inherited value wholesale. The child owns its builders; its finished
// output must be copied into a parent accumulator explicitly.
func (b *Block) Child(overrides Options) (*Block, error) {
	opts := overrides
	if opts.Params == nil {
		opts.Params = b.Params
	}
	if opts.Expression == "" {
		opts.Expression = b.Expression
	}
	if opts.Context == "" {
		opts.Context = b.Context
	}
	if opts.Contexts == nil {
		opts.Contexts = b.contexts
	}
	if opts.ContextDependencies == nil {
		opts.ContextDependencies = b.contextDependencies
	}
	if opts.Indexes == nil {
		opts.Indexes = b.indexes
	}
	if opts.IndexNames == nil {
		opts.IndexNames = b.indexNames
	}
	if opts.ListNames == nil {
		opts.ListNames = b.listNames
	}
	opts.Namer = b.namer
	opts.Helper = b.helper

	child, err := New(opts)
	if err != nil {
		return nil, err
	}
	child.parent = b
	return child, nil
}

// Parent returns the block this one was spawned from, or nil for a root.
func (b *Block) Parent() *Block {
	return b.parent
}

// ListName returns the list variable registered for a context name.
func (b *Block) ListName(context string) (string, bool) {
	name, ok := b.listNames[context]
	return name, ok
}

// IndexName returns the index variable registered for a context name.
func (b *Block) IndexName(context string) (string, bool) {
	name, ok := b.indexNames[context]
	return name, ok
}

func initEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyStringMap(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyListMap(src map[string][]string) map[string][]string {
	dst := make(map[string][]string, len(src))
	for k, v := range src {
		dst[k] = append([]string(nil), v...)
	}
	return dst
}
