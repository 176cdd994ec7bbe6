// Package graph expands call-graph trees against a federated model.
package graph

import (
	"github.com/morphohq/morpho/internal/model"
	"github.com/morphohq/morpho/internal/parse"
	"github.com/morphohq/morpho/internal/project"
)

// Trace expands fn's call tree depth-first. Every call expression in a body
// is visited in document order; callees that resolve into the federation and
// pass the filter become children, everything else is dropped. The first
// reach of an FQN expands it, every later reference in the same query becomes
// a leaf with Cycle set and no children, whether true recursion or a diamond.
// Trees are finite: each FQN expands at most once.
//
// The second return value lists every expanded function in reach order, root
// first; renderers use it for the reachable-types preamble.
func Trace(fn *model.Function, fed *project.Federation, filt *project.Filter) (*model.CallNode, []*model.Function) {
	t := &tracer{fed: fed, filt: filt, visited: make(map[string]bool)}
	root := t.expand(fn, "")
	return root, t.reached
}

type tracer struct {
	fed     *project.Federation
	filt    *project.Filter
	visited map[string]bool
	reached []*model.Function
}

func (t *tracer) expand(fn *model.Function, ctx string) *model.CallNode {
	t.visited[fn.FQN] = true
	t.reached = append(t.reached, fn)
	node := &model.CallNode{FQN: fn.FQN, Name: fn.ShortName, Context: ctx}

	for _, call := range parse.Calls(fn.Body, fn.Src) {
		callee := t.fed.ResolveCallee(call.Name, fn)
		if callee == nil {
			continue // external, dropped entirely
		}
		if !t.filt.AllowsFunction(callee) {
			continue
		}
		if t.visited[callee.FQN] {
			node.Children = append(node.Children, &model.CallNode{
				FQN:     callee.FQN,
				Name:    callee.ShortName,
				Context: call.Context,
				Cycle:   true,
			})
			continue
		}
		node.Children = append(node.Children, t.expand(callee, call.Context))
	}
	return node
}
