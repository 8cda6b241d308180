package template

import "text/template/parse"

// collectPlaceholders walks a parsed template's syntax tree and returns
// every placeholder name it references.
//
// required is every {{.name}} field read while "." still refers to the
// render namespace (the root Namespace map): once a {{range}} or {{with}}
// rebinds ".", the fields read inside its body belong to the rebound
// value (e.g. the KV.Key/KV.Value fields in {{range .labels}}{{.Key}}...)
// and are not collected.
//
// optional is every key named in an {{optional "name"}} call anywhere in
// the tree — the template author's way of marking a placeholder as
// allowed to be absent, evaluating to "" instead of failing the render.
func collectPlaceholders(tree *parse.Tree) (required, optional map[string]bool) {
	required = map[string]bool{}
	optional = map[string]bool{}

	var walk func(n parse.Node, rootDot bool)
	walk = func(n parse.Node, rootDot bool) {
		switch node := n.(type) {
		case *parse.ListNode:
			if node == nil {
				return
			}
			for _, c := range node.Nodes {
				walk(c, rootDot)
			}
		case *parse.ActionNode:
			walk(node.Pipe, rootDot)
		case *parse.PipeNode:
			if node == nil {
				return
			}
			for _, cmd := range node.Cmds {
				walk(cmd, rootDot)
			}
		case *parse.CommandNode:
			if len(node.Args) >= 2 {
				if ident, ok := node.Args[0].(*parse.IdentifierNode); ok && ident.Ident == "optional" {
					if str, ok := node.Args[1].(*parse.StringNode); ok {
						optional[str.Text] = true
					}
				}
			}
			for _, arg := range node.Args {
				walk(arg, rootDot)
			}
		case *parse.FieldNode:
			if rootDot && len(node.Ident) > 0 {
				required[node.Ident[0]] = true
			}
		case *parse.ChainNode:
			walk(node.Node, rootDot)
			if rootDot && len(node.Field) > 0 {
				required[node.Field[0]] = true
			}
		case *parse.IfNode:
			walk(node.Pipe, rootDot)
			walk(node.List, rootDot)
			if node.ElseList != nil {
				walk(node.ElseList, rootDot)
			}
		case *parse.RangeNode:
			walk(node.Pipe, rootDot)
			walk(node.List, false)
			if node.ElseList != nil {
				walk(node.ElseList, rootDot)
			}
		case *parse.WithNode:
			walk(node.Pipe, rootDot)
			walk(node.List, false)
			if node.ElseList != nil {
				walk(node.ElseList, rootDot)
			}
		case *parse.TemplateNode:
			walk(node.Pipe, rootDot)
		}
	}

	walk(tree.Root, true)
	return required, optional
}

// optionalLookup is the "optional" template func: it reads key out of ns
// directly rather than through "."'s missingkey=error field access, so a
// template can name a placeholder that's allowed to be absent.
func optionalLookup(ns map[string]any) func(string) any {
	return func(key string) any {
		if v, ok := ns[key]; ok {
			return v
		}
		return ""
	}
}
