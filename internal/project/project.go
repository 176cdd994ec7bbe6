// Package project assembles per-root models from parsed files and answers
// name lookups across the federated set of roots.
package project

import (
	"github.com/morphohq/morpho/internal/model"
	"github.com/morphohq/morpho/internal/parse"
)

// Build extracts every declared item from the given files into a fresh model,
// tagging each item with the owning root's name. Files keep their given
// order; duplicate FQNs keep the first declaration's position and the last
// declaration's definition.
func Build(files []*parse.File, rootName string) *model.Project {
	p := model.NewProject()
	for _, f := range files {
		funcs, types := parse.ExtractItems(f)
		for _, fn := range funcs {
			fn.Root = rootName
			p.AddFunction(fn)
		}
		for _, ti := range types {
			ti.Root = rootName
			p.AddType(ti)
		}
	}
	return p
}
