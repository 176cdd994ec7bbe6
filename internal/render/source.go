package render

import (
	"fmt"
	"strings"

	"github.com/morphohq/morpho/internal/lang"
	"github.com/morphohq/morpho/internal/model"
)

// FunctionSource pretty-prints one function under its file header. The
// displayed name drops the file-path component but keeps the item path, so
// methods render as `Type::method`.
func FunctionSource(fn *model.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", model.FilePart(fn.FQN))

	head := modifierPrefix(fn) + "fn " + model.ItemPart(fn.FQN) + "(" + strings.Join(fn.Params, ", ") + ")"
	if fn.Return != "" {
		head += " -> " + fn.Return
	}
	if fn.Body == nil {
		b.WriteString(head + " { ... }\n")
		return b.String()
	}
	b.WriteString(head + " " + reindent(lang.NodeText(fn.Body, fn.Src)) + "\n")
	return b.String()
}

// TypeSource pretty-prints one type declaration under its file header.
func TypeSource(ti *model.TypeItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", model.FilePart(ti.FQN))
	b.WriteString(reindent(lang.NodeText(ti.Decl, ti.Src)) + "\n")
	return b.String()
}
