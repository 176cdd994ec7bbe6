// Package render turns resolved models and call trees into text output.
package render

import (
	"strings"

	"github.com/morphohq/morpho/internal/model"
)

// Signature renders the one-line listing form of a function, with the fully
// qualified name and the return type defaulting to the unit type.
func Signature(fn *model.Function) string {
	ret := fn.Return
	if ret == "" {
		ret = "()"
	}
	return modifierPrefix(fn) + "fn " + fn.FQN + "(" + strings.Join(fn.Params, ", ") + ") -> " + ret
}

func modifierPrefix(fn *model.Function) string {
	var b strings.Builder
	if fn.Visibility == model.Public {
		b.WriteString("pub ")
	}
	if fn.Async {
		b.WriteString("async ")
	}
	if fn.Const {
		b.WriteString("const ")
	}
	if fn.Unsafe {
		b.WriteString("unsafe ")
	}
	return b.String()
}

// reindent normalizes a declaration's source text to four spaces per brace
// level. Brace counting is textual: a brace inside a string literal shifts
// the depth. Best effort, not meant to byte-match any formatter.
func reindent(src string) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	depth := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			out = append(out, "")
			continue
		}
		d := depth
		if strings.HasPrefix(trimmed, "}") {
			d--
		}
		if d < 0 {
			d = 0
		}
		out = append(out, strings.Repeat("    ", d)+trimmed)
		depth += strings.Count(trimmed, "{") - strings.Count(trimmed, "}")
		if depth < 0 {
			depth = 0
		}
	}
	return strings.Join(out, "\n")
}
