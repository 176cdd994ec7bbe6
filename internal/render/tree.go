package render

import (
	"fmt"
	"strings"

	"github.com/morphohq/morpho/internal/model"
	"github.com/morphohq/morpho/internal/parse"
	"github.com/morphohq/morpho/internal/project"
)

// CallTree renders a resolved call tree. Type declarations referenced by the
// signatures of reached functions print first, grouped by file; then the root
// function's file header, its full signature, and the box-drawing tree.
// Cycle leaves render as `name (already shown)`, call contexts as
// `name [in: ctx]`.
func CallTree(root *model.Function, tree *model.CallNode, reached []*model.Function, fed *project.Federation, filt *project.Filter) string {
	var b strings.Builder
	writeTypesPreamble(&b, reached, fed, filt)
	fmt.Fprintf(&b, "=== %s ===\n", model.FilePart(root.FQN))
	b.WriteString(Signature(root))
	b.WriteByte('\n')
	writeBranches(&b, tree, "")
	return b.String()
}

// writeTypesPreamble prints the declarations of project types named in the
// reached functions' signatures, grouped by declaring file.
func writeTypesPreamble(b *strings.Builder, reached []*model.Function, fed *project.Federation, filt *project.Filter) {
	var types []*model.TypeItem
	seen := make(map[string]bool)
	for _, fn := range reached {
		for _, name := range parse.SignatureTypeNames(fn) {
			ti := fed.TypeByShortName(name)
			if ti == nil || seen[ti.FQN] || !filt.AllowsType(ti) {
				continue
			}
			seen[ti.FQN] = true
			types = append(types, ti)
		}
	}
	for _, s := range collectSections(fed, nil, types, nil) {
		writeSection(b, s)
	}
}

func writeBranches(b *strings.Builder, node *model.CallNode, prefix string) {
	for i, child := range node.Children {
		branch, extension := "├── ", "│   "
		if i == len(node.Children)-1 {
			branch, extension = "└── ", "    "
		}
		b.WriteString(prefix)
		b.WriteString(branch)
		b.WriteString(child.Name)
		if child.Context != "" {
			b.WriteString(" [in: " + child.Context + "]")
		}
		if child.Cycle {
			b.WriteString(" (already shown)")
		}
		b.WriteByte('\n')
		writeBranches(b, child, prefix+extension)
	}
}
