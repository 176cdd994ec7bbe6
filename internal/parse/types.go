package parse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/morphohq/morpho/internal/lang"
	"github.com/morphohq/morpho/internal/model"
)

// SignatureTypeNames returns the base type names referenced by a function's
// parameter and return types, in document order without duplicates. Receiver
// parameters are skipped and generic type arguments are not descended, so
// `items: Vec<Config>` contributes only "Vec".
func SignatureTypeNames(fn *model.Function) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	if params := fn.Decl.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			if p.Type() != "parameter" {
				continue
			}
			if t := p.ChildByFieldName("type"); t != nil {
				collectTypeNames(t, fn.Src, add)
			}
		}
	}
	if ret := fn.Decl.ChildByFieldName("return_type"); ret != nil {
		collectTypeNames(ret, fn.Src, add)
	}
	return out
}

func collectTypeNames(node *sitter.Node, src []byte, add func(string)) {
	switch node.Type() {
	case "type_identifier":
		add(lang.NodeText(node, src))
	case "generic_type":
		if base := node.ChildByFieldName("type"); base != nil {
			collectTypeNames(base, src, add)
		}
	case "scoped_type_identifier":
		if name := node.ChildByFieldName("name"); name != nil {
			add(lang.NodeText(name, src))
		}
	case "reference_type":
		if inner := node.ChildByFieldName("type"); inner != nil {
			collectTypeNames(inner, src, add)
		}
	case "array_type":
		if elem := node.ChildByFieldName("element"); elem != nil {
			collectTypeNames(elem, src, add)
		}
	}
}
