// Package model defines core data structures for morpho.
package model

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Visibility is the coarse public/non-public flag read from a declaration's
// visibility marker. pub(crate), pub(super) and pub(in ...) all count public.
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// TypeKind indicates the syntactic kind of a type declaration.
type TypeKind string

const (
	Struct TypeKind = "struct"
	Enum   TypeKind = "enum"
	Trait  TypeKind = "trait"
	Other  TypeKind = "other"
)

// SourceRoot is one configured top-level directory analyzed as an independent
// codebase. Rank 0 is the primary root; higher ranks are dependencies, in
// configuration order. The set is fixed at startup.
type SourceRoot struct {
	Name string
	Path string
	Rank int
}

// Function is a declared function or method, keyed by FQN.
// Decl covers the whole item, Body its block; both point into the parse tree
// held alive by Tree. Src is the declaring file's source bytes.
type Function struct {
	FQN        string
	ShortName  string
	Params     []string
	Return     string
	Visibility Visibility
	Async      bool
	Const      bool
	Unsafe     bool
	Decl       *sitter.Node
	Body       *sitter.Node
	Src        []byte
	Tree       *sitter.Tree
	Root       string
}

// TypeItem is a declared struct, enum, trait or type alias, keyed by FQN.
type TypeItem struct {
	FQN        string
	ShortName  string
	Visibility Visibility
	Kind       TypeKind
	Decl       *sitter.Node
	Src        []byte
	Tree       *sitter.Tree
	Root       string
}

// Project holds everything declared under one source root. The FQN slices
// preserve declaration order for deterministic iteration; the maps are never
// mutated after Build returns.
type Project struct {
	Functions    map[string]*Function
	Types        map[string]*TypeItem
	FunctionFQNs []string
	TypeFQNs     []string
}

// NewProject returns an empty project.
func NewProject() *Project {
	return &Project{
		Functions: make(map[string]*Function),
		Types:     make(map[string]*TypeItem),
	}
}

// AddFunction indexes fn under its FQN, keeping declaration order.
func (p *Project) AddFunction(fn *Function) {
	if _, ok := p.Functions[fn.FQN]; !ok {
		p.FunctionFQNs = append(p.FunctionFQNs, fn.FQN)
	}
	p.Functions[fn.FQN] = fn
}

// AddType indexes ti under its FQN, keeping declaration order.
func (p *Project) AddType(ti *TypeItem) {
	if _, ok := p.Types[ti.FQN]; !ok {
		p.TypeFQNs = append(p.TypeFQNs, ti.FQN)
	}
	p.Types[ti.FQN] = ti
}

// CallNode is one node of a rendered call-graph tree. Trees are rebuilt per
// query and never cached. Cycle marks a repeat reference to an FQN already
// expanded earlier in the same query; such nodes have no children.
type CallNode struct {
	FQN      string
	Name     string
	Context  string
	Children []*CallNode
	Cycle    bool
}

// Call is a single call expression found in a function body, in document
// order. Name is the textual target (identifier, a::b path, or method name);
// Context describes the nearest enclosing construct, "" at body level.
type Call struct {
	Name    string
	Context string
}

// FilePart returns the file-path component of an FQN, "" if malformed.
func FilePart(fqn string) string {
	if i := strings.Index(fqn, "::"); i >= 0 {
		return fqn[:i]
	}
	return ""
}

// ItemPart returns the item-path component of an FQN (module/type/function
// segments), "" if malformed.
func ItemPart(fqn string) string {
	if i := strings.Index(fqn, "::"); i >= 0 {
		return fqn[i+2:]
	}
	return ""
}

// LastSegment returns the final :: segment of a path, the whole string when
// there is none.
func LastSegment(path string) string {
	if i := strings.LastIndex(path, "::"); i >= 0 {
		return path[i+2:]
	}
	return path
}
