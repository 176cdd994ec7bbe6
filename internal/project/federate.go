package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/morphohq/morpho/internal/model"
)

var (
	// ErrNotFound reports a query name that matches nothing in any scoped root.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous reports a name that matches several declared items.
	ErrAmbiguous = errors.New("ambiguous")
)

// Federation is the read-only view over every ingested root for one query.
// Roots are in rank order, primary first; Projects is keyed by root name.
// A root missing from Projects contributed nothing.
type Federation struct {
	Roots    []model.SourceRoot
	Projects map[string]*model.Project
}

// Functions returns every declared function: roots in rank order,
// declaration order within each root.
func (f *Federation) Functions() []*model.Function {
	var out []*model.Function
	for _, r := range f.Roots {
		p := f.Projects[r.Name]
		if p == nil {
			continue
		}
		for _, fqn := range p.FunctionFQNs {
			out = append(out, p.Functions[fqn])
		}
	}
	return out
}

// Types returns every declared type in the same order as Functions.
func (f *Federation) Types() []*model.TypeItem {
	var out []*model.TypeItem
	for _, r := range f.Roots {
		p := f.Projects[r.Name]
		if p == nil {
			continue
		}
		for _, fqn := range p.TypeFQNs {
			out = append(out, p.Types[fqn])
		}
	}
	return out
}

// ResolveQuery resolves a user-supplied function name. Exact FQN matches win;
// otherwise the name must match a unique `::`-suffix within the scope. Several
// matches yield ErrAmbiguous with the candidates spelled out, none yields
// ErrNotFound. Visibility and blacklist predicates do not apply to the
// explicitly named query root, only the scope does.
func (f *Federation) ResolveQuery(name string, filt *Filter) (*model.Function, error) {
	var exact, suffix []*model.Function
	target := "::" + name
	for _, fn := range f.Functions() {
		if !filt.InScope(fn.Root, model.FilePart(fn.FQN)) {
			continue
		}
		switch {
		case fn.FQN == name:
			exact = append(exact, fn)
		case strings.HasSuffix(fn.FQN, target):
			suffix = append(suffix, fn)
		}
	}
	if len(exact) > 0 {
		return pick("function", name, exact)
	}
	if len(suffix) > 0 {
		return pick("function", name, suffix)
	}
	return nil, fmt.Errorf("function %q: %w", name, ErrNotFound)
}

// ResolveQueryType is ResolveQuery for type declarations.
func (f *Federation) ResolveQueryType(name string, filt *Filter) (*model.TypeItem, error) {
	var exact, suffix []*model.TypeItem
	target := "::" + name
	for _, ti := range f.Types() {
		if !filt.InScope(ti.Root, model.FilePart(ti.FQN)) {
			continue
		}
		switch {
		case ti.FQN == name:
			exact = append(exact, ti)
		case strings.HasSuffix(ti.FQN, target):
			suffix = append(suffix, ti)
		}
	}
	if len(exact) > 0 {
		return pickType("type", name, exact)
	}
	if len(suffix) > 0 {
		return pickType("type", name, suffix)
	}
	return nil, fmt.Errorf("type %q: %w", name, ErrNotFound)
}

// ResolveCallee resolves a call target seen inside caller's body. A scoped
// name ("Engine::new") is matched as an FQN suffix first, then by its final
// segment; a bare name by short name. Lookup prefers the caller's file, then
// the caller's root, then the remaining roots in rank order; within each,
// declaration order. Never ambiguous: the first match wins. nil means no
// project function matches, so the call is external.
func (f *Federation) ResolveCallee(name string, caller *model.Function) *model.Function {
	if strings.Contains(name, "::") {
		suffix := "::" + name
		if fn := f.calleeMatch(caller, func(fn *model.Function) bool {
			return strings.HasSuffix(fn.FQN, suffix)
		}); fn != nil {
			return fn
		}
		name = model.LastSegment(name)
	}
	return f.calleeMatch(caller, func(fn *model.Function) bool {
		return fn.ShortName == name
	})
}

func (f *Federation) calleeMatch(caller *model.Function, match func(*model.Function) bool) *model.Function {
	callerFile := model.FilePart(caller.FQN)

	if p := f.Projects[caller.Root]; p != nil {
		var sameRoot *model.Function
		for _, fqn := range p.FunctionFQNs {
			fn := p.Functions[fqn]
			if !match(fn) {
				continue
			}
			if model.FilePart(fqn) == callerFile {
				return fn
			}
			if sameRoot == nil {
				sameRoot = fn
			}
		}
		if sameRoot != nil {
			return sameRoot
		}
	}

	for _, r := range f.Roots {
		if r.Name == caller.Root {
			continue
		}
		p := f.Projects[r.Name]
		if p == nil {
			continue
		}
		for _, fqn := range p.FunctionFQNs {
			if fn := p.Functions[fqn]; match(fn) {
				return fn
			}
		}
	}
	return nil
}

// TypeByShortName returns the first type with the given short name in rank
// and declaration order, nil if none exists.
func (f *Federation) TypeByShortName(name string) *model.TypeItem {
	for _, ti := range f.Types() {
		if ti.ShortName == name {
			return ti
		}
	}
	return nil
}

func pick(kind, name string, matches []*model.Function) (*model.Function, error) {
	if len(matches) == 1 {
		return matches[0], nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.FQN + " (" + m.Root + ")"
	}
	return nil, ambiguous(kind, name, names)
}

func pickType(kind, name string, matches []*model.TypeItem) (*model.TypeItem, error) {
	if len(matches) == 1 {
		return matches[0], nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.FQN + " (" + m.Root + ")"
	}
	return nil, ambiguous(kind, name, names)
}

func ambiguous(kind, name string, candidates []string) error {
	return fmt.Errorf("%s %q is %w: matches %s; use a fully qualified name or a scope",
		kind, name, ErrAmbiguous, strings.Join(candidates, ", "))
}
