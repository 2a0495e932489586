// Package codebuilder accumulates ordered fragments of generated JavaScript
// and serializes them into a single chunk of source text.
package codebuilder

import "strings"

type fragmentKind int

const (
	lineFragment fragmentKind = iota
	blockFragment
)

type fragment struct {
	kind fragmentKind
	text string
}

// Builder collects code fragments in insertion order. A fragment is either a
// single line or a multi-line block; blocks are set off from their neighbors
// by a blank line when serialized. The zero value is an empty builder ready
// for use.
type Builder struct {
	fragments []fragment
}

// AddLine appends a single-line fragment.
func (b *Builder) AddLine(text string) {
	b.fragments = append(b.fragments, fragment{kind: lineFragment, text: text})
}

// AddBlock appends a multi-line fragment.
func (b *Builder) AddBlock(text string) {
	b.fragments = append(b.fragments, fragment{kind: blockFragment, text: text})
}

// AddLineAtStart prepends a single-line fragment.
func (b *Builder) AddLineAtStart(text string) {
	b.fragments = append([]fragment{{kind: lineFragment, text: text}}, b.fragments...)
}

// AddBlockAtStart prepends a multi-line fragment.
func (b *Builder) AddBlockAtStart(text string) {
	b.fragments = append([]fragment{{kind: blockFragment, text: text}}, b.fragments...)
}

// AddBuilder appends a copy of every fragment of nested, preserving order
// and kind. Later changes to nested are not reflected here.
func (b *Builder) AddBuilder(nested *Builder) {
	b.fragments = append(b.fragments, nested.fragments...)
}

// AddBuilderAtStart prepends a copy of every fragment of nested, preserving
// order and kind.
func (b *Builder) AddBuilderAtStart(nested *Builder) {
	merged := make([]fragment, 0, len(nested.fragments)+len(b.fragments))
	merged = append(merged, nested.fragments...)
	merged = append(merged, b.fragments...)
	b.fragments = merged
}

// IsEmpty reports whether nothing has been added.
func (b *Builder) IsEmpty() bool {
	return len(b.fragments) == 0
}

// String serializes the accumulated fragments. Consecutive lines are joined
// with a single newline; a block fragment gets a blank line between itself
// and either neighbor. An empty builder serializes to the empty string.
func (b *Builder) String() string {
	var out strings.Builder
	for i, f := range b.fragments {
		if i > 0 {
			if f.kind == blockFragment || b.fragments[i-1].kind == blockFragment {
				out.WriteString("\n\n")
			} else {
				out.WriteString("\n")
			}
		}
		out.WriteString(f.text)
	}
	return out.String()
}
