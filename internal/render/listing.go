package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/morphohq/morpho/internal/lang"
	"github.com/morphohq/morpho/internal/model"
	"github.com/morphohq/morpho/internal/project"
)

type fileSection struct {
	rank  int
	path  string
	types []*model.TypeItem
	funcs []*model.Function
}

// Listing renders every declared item the filter allows, grouped by
// declaring file under `=== <path> ===` headers. Files are sorted by path
// (root rank breaks ties across roots); within a file, type declarations
// come first, then function signatures, each group sorted by FQN. Identical
// inputs produce byte-identical output.
func Listing(fed *project.Federation, filt *project.Filter) string {
	sections := collectSections(fed, filt, fed.Types(), fed.Functions())

	var b strings.Builder
	for _, s := range sections {
		writeSection(&b, s)
	}
	return b.String()
}

func collectSections(fed *project.Federation, filt *project.Filter, types []*model.TypeItem, funcs []*model.Function) []*fileSection {
	rank := make(map[string]int, len(fed.Roots))
	for _, r := range fed.Roots {
		rank[r.Name] = r.Rank
	}

	type key struct {
		rank int
		path string
	}
	byFile := make(map[key]*fileSection)
	section := func(root, path string) *fileSection {
		k := key{rank[root], path}
		s := byFile[k]
		if s == nil {
			s = &fileSection{rank: k.rank, path: path}
			byFile[k] = s
		}
		return s
	}

	for _, ti := range types {
		if filt.AllowsType(ti) {
			s := section(ti.Root, model.FilePart(ti.FQN))
			s.types = append(s.types, ti)
		}
	}
	for _, fn := range funcs {
		if filt.AllowsFunction(fn) {
			s := section(fn.Root, model.FilePart(fn.FQN))
			s.funcs = append(s.funcs, fn)
		}
	}

	sections := make([]*fileSection, 0, len(byFile))
	for _, s := range byFile {
		sections = append(sections, s)
	}
	sort.Slice(sections, func(i, j int) bool {
		if sections[i].path != sections[j].path {
			return sections[i].path < sections[j].path
		}
		return sections[i].rank < sections[j].rank
	})
	return sections
}

func writeSection(b *strings.Builder, s *fileSection) {
	fmt.Fprintf(b, "=== %s ===\n", s.path)

	sort.Slice(s.types, func(i, j int) bool { return s.types[i].FQN < s.types[j].FQN })
	for _, ti := range s.types {
		b.WriteString(reindent(lang.NodeText(ti.Decl, ti.Src)))
		b.WriteByte('\n')
	}

	sort.Slice(s.funcs, func(i, j int) bool { return s.funcs[i].FQN < s.funcs[j].FQN })
	for _, fn := range s.funcs {
		b.WriteString(Signature(fn))
		b.WriteByte('\n')
	}
}
