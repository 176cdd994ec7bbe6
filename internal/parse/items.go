// Package parse extracts declared items and call expressions from Rust
// syntax trees.
package parse

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/morphohq/morpho/internal/lang"
	"github.com/morphohq/morpho/internal/model"
)

// File is one ingested source file. Path is the normalized root-relative
// path used as the FQN prefix ("./src/lib.rs"). Tree keeps the parse tree
// alive for as long as extracted items reference its nodes.
type File struct {
	Path string
	Src  []byte
	Tree *sitter.Tree
}

// ParseFile parses src and wraps the result. The parser must be configured
// for Rust and must not be shared across goroutines. The returned tree is
// never closed; items extracted from it hold node handles into it.
// Trees containing error nodes are kept, extraction is best effort.
func ParseFile(ctx context.Context, parser *sitter.Parser, path string, src []byte) (*File, error) {
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &File{Path: path, Src: src, Tree: tree}, nil
}

// ExtractItems walks a file's tree and returns the declared functions and
// types in document order. Functions cover free functions, impl methods
// (keyed by the self type) and functions nested in inline mod blocks. Items
// declared inside function bodies are not returned.
func ExtractItems(f *File) ([]*model.Function, []*model.TypeItem) {
	root := f.Tree.RootNode()
	var funcs []*model.Function
	var types []*model.TypeItem
	extractFrom(root, f, nil, &funcs, &types)
	return funcs, types
}

func extractFrom(node *sitter.Node, f *File, itemPath []string, funcs *[]*model.Function, types *[]*model.TypeItem) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "function_item":
			*funcs = append(*funcs, newFunction(child, f, itemPath))

		case "impl_item":
			target := implTargetName(child, f.Src)
			body := child.ChildByFieldName("body")
			if target == "" || body == nil {
				continue
			}
			implPath := append(append([]string{}, itemPath...), target)
			for j := 0; j < int(body.NamedChildCount()); j++ {
				item := body.NamedChild(j)
				if item.Type() == "function_item" {
					*funcs = append(*funcs, newFunction(item, f, implPath))
				}
			}

		case "mod_item":
			name := child.ChildByFieldName("name")
			body := child.ChildByFieldName("body")
			if name == nil || body == nil {
				continue // `mod foo;` declares a separate file, indexed on its own
			}
			modPath := append(append([]string{}, itemPath...), lang.NodeText(name, f.Src))
			extractFrom(body, f, modPath, funcs, types)

		case "struct_item":
			*types = append(*types, newTypeItem(child, f, itemPath, model.Struct))
		case "enum_item":
			*types = append(*types, newTypeItem(child, f, itemPath, model.Enum))
		case "trait_item":
			*types = append(*types, newTypeItem(child, f, itemPath, model.Trait))
		case "type_item", "union_item":
			*types = append(*types, newTypeItem(child, f, itemPath, model.Other))
		}
	}
}

func newFunction(node *sitter.Node, f *File, itemPath []string) *model.Function {
	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = lang.NodeText(n, f.Src)
	}

	fn := &model.Function{
		FQN:        joinFQN(f.Path, itemPath, name),
		ShortName:  name,
		Visibility: visibilityOf(node),
		Decl:       node,
		Body:       node.ChildByFieldName("body"),
		Src:        f.Src,
		Tree:       f.Tree,
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = paramTypes(params, f.Src)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		fn.Return = lang.CollapseWhitespace(lang.NodeText(ret, f.Src))
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "function_modifiers" {
			continue
		}
		for _, mod := range strings.Fields(lang.NodeText(child, f.Src)) {
			switch mod {
			case "async":
				fn.Async = true
			case "const":
				fn.Const = true
			case "unsafe":
				fn.Unsafe = true
			}
		}
	}

	return fn
}

func newTypeItem(node *sitter.Node, f *File, itemPath []string, kind model.TypeKind) *model.TypeItem {
	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = lang.NodeText(n, f.Src)
	}
	return &model.TypeItem{
		FQN:        joinFQN(f.Path, itemPath, name),
		ShortName:  name,
		Visibility: visibilityOf(node),
		Kind:       kind,
		Decl:       node,
		Src:        f.Src,
		Tree:       f.Tree,
	}
}

func joinFQN(filePath string, itemPath []string, name string) string {
	parts := append(append([]string{filePath}, itemPath...), name)
	return strings.Join(parts, "::")
}

// visibilityOf reads the coarse public flag: any pub form (pub, pub(crate),
// pub(super), pub(in ...)) counts public.
func visibilityOf(node *sitter.Node) model.Visibility {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "visibility_modifier" {
			return model.Public
		}
	}
	return model.Private
}

// implTargetName returns the name of an impl block's self type: the base
// identifier for generic types, the last path segment for qualified ones.
func implTargetName(implNode *sitter.Node, source []byte) string {
	t := implNode.ChildByFieldName("type")
	if t == nil {
		return ""
	}
	return typeName(t, source)
}

func typeName(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "type_identifier":
		return lang.NodeText(node, source)
	case "generic_type":
		if base := node.ChildByFieldName("type"); base != nil {
			return typeName(base, source)
		}
	case "scoped_type_identifier":
		if n := node.ChildByFieldName("name"); n != nil {
			return lang.NodeText(n, source)
		}
	case "reference_type":
		if inner := node.ChildByFieldName("type"); inner != nil {
			return typeName(inner, source)
		}
	}
	return lang.CollapseWhitespace(lang.NodeText(node, source))
}

// paramTypes returns the parameter type strings in order; receivers render
// as "self" whatever their borrow form.
func paramTypes(params *sitter.Node, source []byte) []string {
	var out []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "parameter":
			if t := p.ChildByFieldName("type"); t != nil {
				out = append(out, lang.CollapseWhitespace(lang.NodeText(t, source)))
			}
		case "self_parameter":
			out = append(out, "self")
		case "variadic_parameter":
			out = append(out, "...")
		}
	}
	return out
}
