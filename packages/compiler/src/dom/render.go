package dom

import (
	"fmt"
	"strconv"
	"strings"

	"weftc-go/packages/compiler/src/codebuilder"
	"weftc-go/packages/compiler/src/util"
)

// Render synthesizes the block into a lifecycle function. The returned text
// declares every registered variable once, runs the create phase, and
// returns an object whose properties are derived from the accumulated phases:
// empty mount, unmount and destroy phases collapse to the shared noop, intro
// and outro bodies are wrapped in re-entrancy guards, and raw detachment
// statements run before everything else in unmount. Render may be called
// once per block; it appends to the builders it reads.
func (b *Block) Render() string {
	hasIntros := !b.Builders.Intro.IsEmpty()
	hasOutros := !b.Builders.Outro.IsEmpty()

	var introing, outroing string
	if hasIntros {
		introing = b.Alias("introing")
		b.mustAddVariable(introing)
	}
	if hasOutros {
		outroing = b.Alias("outroing")
		b.mustAddVariable(outroing)
	}

	if len(b.variables) > 0 {
		decls := make([]string, len(b.variables))
		for i, v := range b.variables {
			if v.init != nil {
				decls[i] = v.name + " = " + *v.init
			} else {
				decls[i] = v.name
			}
		}
		b.Builders.Create.AddBlockAtStart("var " + strings.Join(decls, ", ") + ";")
	}

	if b.Autofocus != "" {
		b.Builders.Create.AddLine(b.Autofocus + ".focus();")
	}

	// Raw detachment must happen before the per-node detachments so ranges
	// are still bounded by their comment markers when they are removed.
	b.Builders.Unmount.AddBuilderAtStart(&b.Builders.DetachRaw)

	var properties codebuilder.Builder

	if b.KeyName != "" {
		properties.AddBlock("key: " + b.KeyName + ",")
	}

	if b.First != "" {
		properties.AddBlock("first: " + b.First + ",")
	}

	if b.Builders.Mount.IsEmpty() {
		properties.AddBlock("mount: " + b.helper("noop") + ",")
	} else {
		properties.AddBlock(lifecycleMethod("mount", b.Target+", "+b.Anchor, &b.Builders.Mount) + ",")
	}

	if b.HasUpdateMethod {
		if b.Builders.Update.IsEmpty() {
			properties.AddBlock("update: " + b.helper("noop") + ",")
		} else {
			signature := strings.Join(append([]string{"changed"}, b.Params...), ", ")
			properties.AddBlock(lifecycleMethod("update", signature, &b.Builders.Update) + ",")
		}
	}

	if b.HasIntroMethod {
		var body codebuilder.Builder
		if hasIntros {
			guard := "if ( " + introing + " ) return;\n" + introing + " = true;"
			if hasOutros {
				guard += "\n" + outroing + " = false;"
			}
			body.AddBlock(guard)
			body.AddBuilder(&b.Builders.Intro)
			body.AddBlock("this.mount( " + b.Target + ", " + b.Anchor + " );")
		} else {
			body.AddLine("this.mount( " + b.Target + ", " + b.Anchor + " );")
		}
		properties.AddBlock(lifecycleMethod("intro", b.Target+", "+b.Anchor, &body) + ",")
	}

	if b.HasOutroMethod {
		var body codebuilder.Builder
		if hasOutros {
			guard := "if ( " + outroing + " ) return;\n" + outroing + " = true;"
			if hasIntros {
				guard += "\n" + introing + " = false;"
			}
			body.AddBlock(guard)
			// One counter per invocation, so overlapping outro rounds
			// cannot steal each other's completions.
			body.AddBlock("var " + b.Alias("outros") + " = " + strconv.Itoa(b.Outros) + ";")
			body.AddBuilder(&b.Builders.Outro)
			properties.AddBlock(lifecycleMethod("outro", b.Alias("outrocallback"), &body) + ",")
		} else {
			body.AddLine("outrocallback();")
			properties.AddBlock(lifecycleMethod("outro", "outrocallback", &body) + ",")
		}
	}

	if b.Builders.Unmount.IsEmpty() {
		properties.AddBlock("unmount: " + b.helper("noop") + ",")
	} else {
		properties.AddBlock(lifecycleMethod("unmount", "", &b.Builders.Unmount) + ",")
	}

	if b.Builders.Destroy.IsEmpty() {
		properties.AddBlock("destroy: " + b.helper("noop"))
	} else {
		properties.AddBlock(lifecycleMethod("destroy", "", &b.Builders.Destroy))
	}

	signature := strings.Join(append(append([]string(nil), b.Params...), b.Component), ", ")
	if b.KeyName != "" {
		signature += ", " + b.KeyName
	}

	var out strings.Builder
	if b.Comment != "" {
		out.WriteString("// " + b.Comment + "\n")
	}
	out.WriteString("function " + b.Name + " ( " + signature + " ) {\n")
	if !b.Builders.Create.IsEmpty() {
		out.WriteString(util.Indent(b.Builders.Create.String(), "\t"))
		out.WriteString("\n\n")
	}
	out.WriteString("\treturn {\n")
	out.WriteString(util.Indent(properties.String(), "\t\t"))
	out.WriteString("\n\t};\n")
	out.WriteString("}")
	return out.String()
}

func lifecycleMethod(name, signature string, body *codebuilder.Builder) string {
	header := "function ()"
	if signature != "" {
		header = "function ( " + signature + " )"
	}
	return name + ": " + header + " {\n" + util.Indent(body.String(), "\t") + "\n}"
}

func (b *Block) mustAddVariable(name string) {
	if err := b.AddVariable(name); err != nil {
		panic(fmt.Sprintf("AssertionError: transition guard %s conflicts with a declared variable", name))
	}
}
