package project

import (
	"strings"

	"github.com/morphohq/morpho/internal/model"
)

// Filter combines the visibility, blacklist and scope predicates. All three
// must pass for an item to appear in query output. A nil *Filter allows
// everything.
type Filter struct {
	PublicOnly bool
	Blacklist  []string
	scope      *scopeSet
}

// scopeSet maps root names to a required file-path prefix, "" meaning the
// whole root. A non-nil set with no entries matches nothing: the scope string
// resolved to no configured root.
type scopeSet struct {
	prefixes map[string]string
}

// NewFilter resolves scope against the configured roots and returns the
// combined predicate. An unresolvable scope matches nothing; queries then
// produce an empty result, not an error.
func NewFilter(roots []model.SourceRoot, publicOnly bool, blacklist []string, scope string) *Filter {
	return &Filter{
		PublicOnly: publicOnly,
		Blacklist:  blacklist,
		scope:      resolveScope(roots, scope),
	}
}

// resolveScope interprets a scope string: an exact root name, a
// "name/subpath" pair, or an absolute path prefix of a root.
func resolveScope(roots []model.SourceRoot, scope string) *scopeSet {
	if scope == "" {
		return nil
	}
	s := &scopeSet{prefixes: make(map[string]string)}

	for _, r := range roots {
		if r.Name == scope {
			s.prefixes[r.Name] = ""
		}
	}
	if len(s.prefixes) > 0 {
		return s
	}

	if name, sub, ok := strings.Cut(scope, "/"); ok && name != "" {
		for _, r := range roots {
			if r.Name == name {
				s.prefixes[r.Name] = "./" + sub
			}
		}
		if len(s.prefixes) > 0 {
			return s
		}
	}

	for _, r := range roots {
		if scope == r.Path {
			s.prefixes[r.Name] = ""
			return s
		}
		if strings.HasPrefix(scope, r.Path+"/") {
			s.prefixes[r.Name] = "./" + strings.TrimPrefix(scope, r.Path+"/")
			return s
		}
	}

	return s
}

// RootInScope reports whether any path under the named root can fall inside
// the resolved scope. Ingest skips roots this rejects.
func (f *Filter) RootInScope(root string) bool {
	if f == nil || f.scope == nil {
		return true
	}
	_, ok := f.scope.prefixes[root]
	return ok
}

// InScope reports whether a file path in the given root falls inside the
// resolved scope.
func (f *Filter) InScope(root, path string) bool {
	if f == nil || f.scope == nil {
		return true
	}
	prefix, ok := f.scope.prefixes[root]
	if !ok {
		return false
	}
	return prefix == "" || strings.HasPrefix(path, prefix)
}

// Blacklisted reports whether path contains any blacklist substring.
// Matching is case-sensitive and applies to the whole normalized path, so an
// entry excludes directories and filenames alike.
func (f *Filter) Blacklisted(path string) bool {
	if f == nil {
		return false
	}
	for _, b := range f.Blacklist {
		if b != "" && strings.Contains(path, b) {
			return true
		}
	}
	return false
}

// AllowsFunction applies all three predicates to a declared function.
func (f *Filter) AllowsFunction(fn *model.Function) bool {
	if f == nil {
		return true
	}
	if f.PublicOnly && fn.Visibility != model.Public {
		return false
	}
	path := model.FilePart(fn.FQN)
	return !f.Blacklisted(path) && f.InScope(fn.Root, path)
}

// AllowsType applies all three predicates to a declared type.
func (f *Filter) AllowsType(ti *model.TypeItem) bool {
	if f == nil {
		return true
	}
	if f.PublicOnly && ti.Visibility != model.Public {
		return false
	}
	path := model.FilePart(ti.FQN)
	return !f.Blacklisted(path) && f.InScope(ti.Root, path)
}
