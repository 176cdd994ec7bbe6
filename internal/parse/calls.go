package parse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/morphohq/morpho/internal/lang"
	"github.com/morphohq/morpho/internal/model"
)

// Calls returns every call target inside body in document order, each tagged
// with the nearest enclosing control-flow construct. Loops without a
// condition, plain blocks, async blocks and closures are transparent; a call
// at statement level carries an empty context. Macro invocations are opaque.
func Calls(body *sitter.Node, src []byte) []model.Call {
	if body == nil {
		return nil
	}
	c := &callCollector{src: src}
	c.walk(body, "")
	return c.calls
}

type callCollector struct {
	src   []byte
	calls []model.Call
}

func (c *callCollector) add(name, ctx string) {
	if name == "" {
		return
	}
	c.calls = append(c.calls, model.Call{Name: name, Context: ctx})
}

func (c *callCollector) walk(node *sitter.Node, ctx string) {
	switch node.Type() {
	case "call_expression":
		if fn := node.ChildByFieldName("function"); fn != nil {
			c.target(fn, ctx)
		}
		if args := node.ChildByFieldName("arguments"); args != nil {
			c.walkChildren(args, ctx)
		}

	case "macro_invocation":
		return

	case "function_item":
		// Nested fn: its body starts a fresh context.
		if b := node.ChildByFieldName("body"); b != nil {
			c.walk(b, "")
		}

	case "if_expression":
		cond := node.ChildByFieldName("condition")
		if cond != nil {
			c.walk(cond, ctx)
		}
		if cons := node.ChildByFieldName("consequence"); cons != nil {
			c.walk(cons, "if "+c.text(cond))
		}
		if alt := node.ChildByFieldName("alternative"); alt != nil {
			c.walkChildren(alt, "else")
		}

	case "match_expression":
		if v := node.ChildByFieldName("value"); v != nil {
			c.walk(v, ctx)
		}
		if b := node.ChildByFieldName("body"); b != nil {
			for i := 0; i < int(b.NamedChildCount()); i++ {
				arm := b.NamedChild(i)
				if arm.Type() != "match_arm" {
					continue
				}
				armCtx := "match " + c.armPattern(arm)
				if pat := arm.ChildByFieldName("pattern"); pat != nil {
					if guard := pat.ChildByFieldName("condition"); guard != nil {
						c.walk(guard, armCtx)
					}
				}
				if v := arm.ChildByFieldName("value"); v != nil {
					c.walk(v, armCtx)
				}
			}
		}

	case "while_expression":
		cond := node.ChildByFieldName("condition")
		if cond != nil {
			c.walk(cond, ctx)
		}
		if b := node.ChildByFieldName("body"); b != nil {
			c.walk(b, "while "+c.text(cond))
		}

	case "for_expression":
		value := node.ChildByFieldName("value")
		if value != nil {
			c.walk(value, ctx)
		}
		if b := node.ChildByFieldName("body"); b != nil {
			c.walk(b, "for "+c.text(value))
		}

	default:
		c.walkChildren(node, ctx)
	}
}

func (c *callCollector) walkChildren(node *sitter.Node, ctx string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c.walk(node.NamedChild(i), ctx)
	}
}

// target records the called name for the function side of a call expression.
// Method and chained calls walk the receiver first so names come out in
// source order.
func (c *callCollector) target(fn *sitter.Node, ctx string) {
	switch fn.Type() {
	case "identifier":
		c.add(lang.NodeText(fn, c.src), ctx)
	case "scoped_identifier":
		// Full path text: resolution tries the path as an FQN suffix before
		// falling back to the final segment.
		c.add(lang.NodeText(fn, c.src), ctx)
	case "field_expression":
		if v := fn.ChildByFieldName("value"); v != nil {
			c.walk(v, ctx)
		}
		if f := fn.ChildByFieldName("field"); f != nil {
			c.add(lang.NodeText(f, c.src), ctx)
		}
	case "generic_function":
		if inner := fn.ChildByFieldName("function"); inner != nil {
			c.target(inner, ctx)
		}
	default:
		// Computed callee (parenthesized, indexed, ...): no stable name,
		// but it may contain calls of its own.
		c.walk(fn, ctx)
	}
}

func (c *callCollector) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return lang.CollapseWhitespace(lang.NodeText(node, c.src))
}

// armPattern is the arm's pattern without any trailing guard.
func (c *callCollector) armPattern(arm *sitter.Node) string {
	pat := arm.ChildByFieldName("pattern")
	if pat == nil {
		return ""
	}
	if guard := pat.ChildByFieldName("condition"); guard != nil {
		end := pat.EndByte()
		for i := 0; i < int(pat.ChildCount()); i++ {
			if pat.Child(i).Type() == "if" {
				end = pat.Child(i).StartByte()
				break
			}
		}
		return lang.CollapseWhitespace(string(c.src[pat.StartByte():end]))
	}
	return c.text(pat)
}
