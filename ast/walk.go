package ast

// Walk calls fn for node and every node reachable from it. A nil child is
// skipped.
func Walk(node Node, fn func(Node)) {
	if node == nil {
		return
	}
	fn(node)
	switch n := node.(type) {
	case *Program:
		for _, s := range n.Body {
			Walk(s, fn)
		}
	case *ExpressionStatement:
		Walk(n.Expression, fn)
	case *BlockStatement:
		for _, s := range n.Body {
			Walk(s, fn)
		}
	case *VariableDeclaration:
		for _, d := range n.Declarations {
			Walk(d, fn)
		}
	case *VariableDeclarator:
		Walk(n.Id, fn)
		if n.Init != nil {
			Walk(n.Init, fn)
		}
	case *ReturnStatement:
		if n.Argument != nil {
			Walk(n.Argument, fn)
		}
	case *IfStatement:
		Walk(n.Test, fn)
		Walk(n.Consequent, fn)
		if n.Alternate != nil {
			Walk(n.Alternate, fn)
		}
	case *WhileStatement:
		Walk(n.Test, fn)
		Walk(n.Body, fn)
	case *DoWhileStatement:
		Walk(n.Body, fn)
		Walk(n.Test, fn)
	case *ForStatement:
		if n.Init != nil {
			Walk(n.Init, fn)
		}
		if n.Test != nil {
			Walk(n.Test, fn)
		}
		if n.Update != nil {
			Walk(n.Update, fn)
		}
		Walk(n.Body, fn)
	case *ForInStatement:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
		Walk(n.Body, fn)
	case *BreakStatement:
		if n.Label != nil {
			Walk(n.Label, fn)
		}
	case *ContinueStatement:
		if n.Label != nil {
			Walk(n.Label, fn)
		}
	case *SwitchStatement:
		Walk(n.Discriminant, fn)
		for _, c := range n.Cases {
			Walk(c, fn)
		}
	case *SwitchCase:
		if n.Test != nil {
			Walk(n.Test, fn)
		}
		for _, s := range n.Consequent {
			Walk(s, fn)
		}
	case *ThrowStatement:
		Walk(n.Argument, fn)
	case *TryStatement:
		Walk(n.Block, fn)
		if n.Handler != nil {
			Walk(n.Handler, fn)
		}
		if n.Finalizer != nil {
			Walk(n.Finalizer, fn)
		}
	case *CatchClause:
		Walk(n.Param, fn)
		Walk(n.Body, fn)
	case *LabeledStatement:
		Walk(n.Label, fn)
		Walk(n.Body, fn)
	case *WithStatement:
		Walk(n.Object, fn)
		Walk(n.Body, fn)
	case *FunctionDeclaration:
		if n.Id != nil {
			Walk(n.Id, fn)
		}
		for _, p := range n.Params {
			Walk(p, fn)
		}
		Walk(n.Body, fn)
	case *FunctionExpression:
		if n.Id != nil {
			Walk(n.Id, fn)
		}
		for _, p := range n.Params {
			Walk(p, fn)
		}
		Walk(n.Body, fn)
	case *ArrayExpression:
		for _, e := range n.Elements {
			if e != nil {
				Walk(e, fn)
			}
		}
	case *ObjectExpression:
		for _, p := range n.Properties {
			Walk(p, fn)
		}
	case *Property:
		Walk(n.Key, fn)
		Walk(n.Value, fn)
	case *UnaryExpression:
		Walk(n.Argument, fn)
	case *UpdateExpression:
		Walk(n.Argument, fn)
	case *BinaryExpression:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *LogicalExpression:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *AssignmentExpression:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *ConditionalExpression:
		Walk(n.Test, fn)
		Walk(n.Consequent, fn)
		Walk(n.Alternate, fn)
	case *CallExpression:
		Walk(n.Callee, fn)
		for _, a := range n.Arguments {
			Walk(a, fn)
		}
	case *NewExpression:
		Walk(n.Callee, fn)
		for _, a := range n.Arguments {
			Walk(a, fn)
		}
	case *MemberExpression:
		Walk(n.Object, fn)
		Walk(n.Property, fn)
	case *SequenceExpression:
		for _, e := range n.Expressions {
			Walk(e, fn)
		}
	}
}

// StripPositions zeroes every node position under node. Stripped nodes are
// treated as internal startup code by the step loop.
func StripPositions(node Node) {
	Walk(node, func(n Node) {
		n.SetPos(0, 0)
	})
}
