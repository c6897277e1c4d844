package interpreter

import (
	"math"

	"github.com/pawsong/js-interp/ast"
	"github.com/pawsong/js-interp/builtins"
	"github.com/pawsong/js-interp/runtime"
)

type identifierFrame struct {
	frameBase
	name string
}

func (f *identifierFrame) step(ip *Interpreter) error {
	if f.components {
		ip.popRef(&reference{scope: f.scope, name: f.name})
		return nil
	}
	if f.n == 1 { // getter finished
		ip.popValue(f.value)
		return nil
	}
	for s := f.scope; s != nil; s = s.Parent {
		if !ip.HasProperty(s.Object, f.name) {
			continue
		}
		v, getter, err := ip.GetPropertyOrGetter(s.Object, f.name)
		if err != nil {
			return err
		}
		if getter != nil {
			f.n = 1
			ip.push(newPendingCall(nil, getter, s.Object, nil, f.scope, false))
			return nil
		}
		ip.popValue(v)
		return nil
	}
	return ip.ReferenceError("%s is not defined", f.name)
}

type literalFrame struct {
	frameBase
	lit *ast.Literal
}

func (f *literalFrame) step(ip *Interpreter) error {
	switch f.lit.Kind {
	case ast.LiteralNumber:
		ip.popValue(ip.NewNumber(f.lit.Number))
	case ast.LiteralString:
		ip.popValue(ip.NewString(f.lit.Str))
	case ast.LiteralBoolean:
		ip.popValue(ip.NewBoolean(f.lit.Boolean))
	case ast.LiteralNull:
		ip.popValue(ip.Null)
	case ast.LiteralRegExp:
		re, err := builtins.NewRegExp(ip.Realm, f.lit.Pattern, f.lit.Flags)
		if err != nil {
			return err
		}
		ip.popValue(re)
	default:
		ip.popValue(ip.Undefined)
	}
	return nil
}

type thisFrame struct {
	frameBase
}

func (f *thisFrame) step(ip *Interpreter) error {
	v := f.scope.ThisValue()
	if v == nil {
		v = ip.Undefined
	}
	ip.popValue(v)
	return nil
}

type arrayLitFrame struct {
	frameBase
	expr *ast.ArrayExpression
	arr  *runtime.Object
	idx  int
}

func (f *arrayLitFrame) step(ip *Interpreter) error {
	if f.arr == nil {
		f.arr = ip.NewArray()
		f.arr.Length = len(f.expr.Elements)
	} else {
		f.arr.Set(indexKey(f.idx), f.value)
		f.idx++
	}
	for f.idx < len(f.expr.Elements) {
		el := f.expr.Elements[f.idx]
		if el == nil { // elision
			f.idx++
			continue
		}
		ip.pushNode(el, f.scope)
		return nil
	}
	ip.popValue(f.arr)
	return nil
}

type objectLitFrame struct {
	frameBase
	expr *ast.ObjectExpression
	obj  *runtime.Object
	idx  int
}

func (f *objectLitFrame) step(ip *Interpreter) error {
	if f.obj == nil {
		f.obj = ip.NewObject(nil)
	} else {
		p := f.expr.Properties[f.idx]
		f.idx++
		key := propertyKeyName(ip, p.Key)
		switch p.Kind {
		case "get", "set":
			fn, _ := f.value.(*runtime.Object)
			yes := true
			desc := runtime.Descriptor{Enumerable: &yes, Configurable: &yes}
			if p.Kind == "get" {
				desc.Getter = fn
			} else {
				desc.Setter = fn
			}
			if err := ip.DefineProperty(f.obj, key, desc); err != nil {
				return err
			}
		default:
			f.obj.Set(key, f.value)
		}
	}
	if f.idx < len(f.expr.Properties) {
		ip.pushNode(f.expr.Properties[f.idx].Value, f.scope)
		return nil
	}
	ip.popValue(f.obj)
	return nil
}

func propertyKeyName(ip *Interpreter, key ast.Expression) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.Literal:
		switch k.Kind {
		case ast.LiteralNumber:
			return runtime.FormatNumber(k.Number)
		case ast.LiteralString:
			return k.Str
		}
	}
	return ""
}

type functionLitFrame struct {
	frameBase
	fn *ast.FunctionExpression
}

func (f *functionLitFrame) step(ip *Interpreter) error {
	scope := f.scope
	if f.fn.Id != nil {
		// a named function expression sees its own name
		scope = runtime.NewScope(f.scope, f.scope.Strict)
	}
	fn := ip.NewFunction(f.fn, scope)
	if f.fn.Id != nil {
		scope.Object.Set(f.fn.Id.Name, fn)
		scope.Object.NotWritable[f.fn.Id.Name] = true
	}
	ip.popValue(fn)
	return nil
}

type unaryFrame struct {
	frameBase
	expr *ast.UnaryExpression
}

func (f *unaryFrame) step(ip *Interpreter) error {
	op := f.expr.Operator
	if f.n == 0 {
		f.n = 1
		if op == "typeof" {
			if id, ok := f.expr.Argument.(*ast.Identifier); ok {
				// typeof tolerates undeclared names
				v, _, found := ip.ScopeLookup(f.scope, id.Name)
				if !found {
					ip.popValue(ip.NewString("undefined"))
					return nil
				}
				ip.popValue(ip.NewString(runtime.TypeOf(v)))
				return nil
			}
		}
		if op == "delete" {
			switch f.expr.Argument.(type) {
			case *ast.Identifier, *ast.MemberExpression:
				fb := ip.pushNode(f.expr.Argument, f.scope)
				fb.components = true
				return nil
			}
			// deleting a non-reference is true
			ip.pushNode(f.expr.Argument, f.scope)
			return nil
		}
		ip.pushNode(f.expr.Argument, f.scope)
		return nil
	}
	if op == "delete" {
		if f.ref == nil {
			ip.popValue(ip.True)
			return nil
		}
		ok, err := ip.deleteRef(f.ref)
		if err != nil {
			return err
		}
		ip.popValue(ip.NewBoolean(ok))
		return nil
	}
	v := f.value
	switch op {
	case "-":
		ip.popValue(ip.NewNumber(-ip.ToNumber(v)))
	case "+":
		ip.popValue(ip.NewNumber(ip.ToNumber(v)))
	case "!":
		ip.popValue(ip.NewBoolean(!ip.ToBoolean(v)))
	case "~":
		ip.popValue(ip.NewNumber(float64(^ip.ToInt32(v))))
	case "typeof":
		ip.popValue(ip.NewString(runtime.TypeOf(v)))
	case "void":
		ip.popValue(ip.Undefined)
	default:
		return ip.SyntaxError("Unknown unary operator: %s", op)
	}
	return nil
}

type updateFrame struct {
	frameBase
	expr   *ast.UpdateExpression
	old    float64
	result runtime.Value
}

func (f *updateFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		f.n = 1
		fb := ip.pushNode(f.expr.Argument, f.scope)
		fb.components = true
	case 1:
		v, getter, this, err := ip.getValue(f.ref)
		if err != nil {
			return err
		}
		if getter != nil {
			f.n = 2
			ip.push(newPendingCall(nil, getter, this, nil, f.scope, false))
			return nil
		}
		return f.apply(ip, v)
	case 2: // getter finished
		return f.apply(ip, f.value)
	default: // setter finished
		ip.popValue(f.result)
	}
	return nil
}

func (f *updateFrame) apply(ip *Interpreter, v runtime.Value) error {
	f.old = ip.ToNumber(v)
	delta := 1.0
	if f.expr.Operator == "--" {
		delta = -1
	}
	updated := ip.NewNumber(f.old + delta)
	if f.expr.Prefix {
		f.result = updated
	} else {
		f.result = ip.NewNumber(f.old)
	}
	setter, err := ip.setValueRef(f.ref, updated)
	if err != nil {
		return err
	}
	if setter != nil {
		f.n = 3
		ip.push(newPendingCall(nil, setter, refThis(ip, f.ref), []runtime.Value{updated}, f.scope, false))
		return nil
	}
	ip.popValue(f.result)
	return nil
}

type binaryFrame struct {
	frameBase
	expr *ast.BinaryExpression
	left runtime.Value
}

func (f *binaryFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		f.n = 1
		ip.pushNode(f.expr.Left, f.scope)
	case 1:
		f.n = 2
		f.left = f.value
		ip.pushNode(f.expr.Right, f.scope)
	default:
		v, err := ip.binaryOp(f.expr.Operator, f.left, f.value)
		if err != nil {
			return err
		}
		ip.popValue(v)
	}
	return nil
}

// binaryOp evaluates one binary operator over two values. Shared by binary
// expressions and compound assignment.
func (ip *Interpreter) binaryOp(op string, a, b runtime.Value) (runtime.Value, error) {
	switch op {
	case "+":
		ap := ip.ToPrimitive(a)
		bp := ip.ToPrimitive(b)
		if isStringPrimitive(ap) || isStringPrimitive(bp) {
			return ip.NewString(ip.ToString(ap) + ip.ToString(bp)), nil
		}
		return ip.NewNumber(ip.ToNumber(ap) + ip.ToNumber(bp)), nil
	case "-":
		return ip.NewNumber(ip.ToNumber(a) - ip.ToNumber(b)), nil
	case "*":
		return ip.NewNumber(ip.ToNumber(a) * ip.ToNumber(b)), nil
	case "/":
		return ip.NewNumber(ip.ToNumber(a) / ip.ToNumber(b)), nil
	case "%":
		return ip.NewNumber(math.Mod(ip.ToNumber(a), ip.ToNumber(b))), nil
	case "==":
		return ip.NewBoolean(ip.AbstractEquals(a, b)), nil
	case "!=":
		return ip.NewBoolean(!ip.AbstractEquals(a, b)), nil
	case "===":
		return ip.NewBoolean(ip.StrictEquals(a, b)), nil
	case "!==":
		return ip.NewBoolean(!ip.StrictEquals(a, b)), nil
	case "<":
		c, ok := ip.Compare(a, b)
		return ip.NewBoolean(ok && c < 0), nil
	case ">":
		c, ok := ip.Compare(a, b)
		return ip.NewBoolean(ok && c > 0), nil
	case "<=":
		c, ok := ip.Compare(a, b)
		return ip.NewBoolean(ok && c <= 0), nil
	case ">=":
		c, ok := ip.Compare(a, b)
		return ip.NewBoolean(ok && c >= 0), nil
	case "&":
		return ip.NewNumber(float64(ip.ToInt32(a) & ip.ToInt32(b))), nil
	case "|":
		return ip.NewNumber(float64(ip.ToInt32(a) | ip.ToInt32(b))), nil
	case "^":
		return ip.NewNumber(float64(ip.ToInt32(a) ^ ip.ToInt32(b))), nil
	case "<<":
		return ip.NewNumber(float64(ip.ToInt32(a) << (ip.ToUint32(b) & 31))), nil
	case ">>":
		return ip.NewNumber(float64(ip.ToInt32(a) >> (ip.ToUint32(b) & 31))), nil
	case ">>>":
		return ip.NewNumber(float64(ip.ToUint32(a) >> (ip.ToUint32(b) & 31))), nil
	case "in":
		if _, ok := b.(*runtime.Object); !ok {
			return nil, ip.TypeError("Cannot use 'in' operator to search for '%s' in %s", ip.ToString(a), ip.ToString(b))
		}
		return ip.NewBoolean(ip.HasProperty(b, ip.ToString(a))), nil
	case "instanceof":
		return ip.instanceOf(a, b)
	}
	return nil, ip.SyntaxError("Unknown binary operator: %s", op)
}

func isStringPrimitive(v runtime.Value) bool {
	p, ok := v.(*runtime.Primitive)
	return ok && p.Kind == runtime.KindString
}

func (ip *Interpreter) instanceOf(a, b runtime.Value) (runtime.Value, error) {
	fn, ok := b.(*runtime.Object)
	if !ok || !fn.IsFunction() {
		return nil, ip.TypeError("Right-hand side of 'instanceof' is not callable")
	}
	for fn.BoundTarget != nil {
		fn = fn.BoundTarget
	}
	obj, ok := a.(*runtime.Object)
	if !ok {
		return ip.False, nil
	}
	protoVal, err := ip.GetProperty(fn, "prototype")
	if err != nil {
		return nil, err
	}
	proto, ok := protoVal.(*runtime.Object)
	if !ok {
		return nil, ip.TypeError("Function has non-object prototype in instanceof check")
	}
	for p := obj.Proto; p != nil; p = p.Proto {
		if p == proto {
			return ip.True, nil
		}
	}
	return ip.False, nil
}

type logicalFrame struct {
	frameBase
	expr *ast.LogicalExpression
}

func (f *logicalFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		f.n = 1
		ip.pushNode(f.expr.Left, f.scope)
	case 1:
		truthy := ip.ToBoolean(f.value)
		if (f.expr.Operator == "&&" && !truthy) || (f.expr.Operator == "||" && truthy) {
			ip.popValue(f.value)
			return nil
		}
		f.n = 2
		ip.pushNode(f.expr.Right, f.scope)
	default:
		ip.popValue(f.value)
	}
	return nil
}

type assignFrame struct {
	frameBase
	expr   *ast.AssignmentExpression
	old    runtime.Value
	result runtime.Value
}

func (f *assignFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		f.n = 1
		fb := ip.pushNode(f.expr.Left, f.scope)
		fb.components = true
	case 1:
		if f.expr.Operator == "=" {
			f.n = 3
			ip.pushNode(f.expr.Right, f.scope)
			return nil
		}
		v, getter, this, err := ip.getValue(f.ref)
		if err != nil {
			return err
		}
		if getter != nil {
			f.n = 2
			ip.push(newPendingCall(nil, getter, this, nil, f.scope, false))
			return nil
		}
		f.old = v
		f.n = 3
		ip.pushNode(f.expr.Right, f.scope)
	case 2: // getter finished
		f.old = f.value
		f.n = 3
		ip.pushNode(f.expr.Right, f.scope)
	case 3:
		result := f.value
		if f.expr.Operator != "=" {
			op := f.expr.Operator[:len(f.expr.Operator)-1]
			var err error
			if result, err = ip.binaryOp(op, f.old, f.value); err != nil {
				return err
			}
		}
		f.result = result
		setter, err := ip.setValueRef(f.ref, result)
		if err != nil {
			return err
		}
		if setter != nil {
			f.n = 4
			ip.push(newPendingCall(nil, setter, refThis(ip, f.ref), []runtime.Value{result}, f.scope, false))
			return nil
		}
		ip.popValue(result)
	default: // setter finished
		ip.popValue(f.result)
	}
	return nil
}

type conditionalFrame struct {
	frameBase
	expr *ast.ConditionalExpression
}

func (f *conditionalFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		f.n = 1
		ip.pushNode(f.expr.Test, f.scope)
	case 1:
		f.n = 2
		if ip.ToBoolean(f.value) {
			ip.pushNode(f.expr.Consequent, f.scope)
		} else {
			ip.pushNode(f.expr.Alternate, f.scope)
		}
	default:
		ip.popValue(f.value)
	}
	return nil
}

type memberFrame struct {
	frameBase
	expr   *ast.MemberExpression
	object runtime.Value
	name   string
}

func (f *memberFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		f.n = 1
		ip.pushNode(f.expr.Object, f.scope)
	case 1:
		f.object = f.value
		if !f.expr.Computed {
			f.name = f.expr.Property.(*ast.Identifier).Name
			return f.resolve(ip)
		}
		f.n = 2
		ip.pushNode(f.expr.Property, f.scope)
	case 2:
		f.name = ip.ToString(f.value)
		return f.resolve(ip)
	default: // getter finished
		ip.popValue(f.value)
	}
	return nil
}

func (f *memberFrame) resolve(ip *Interpreter) error {
	if f.components {
		ip.popRef(&reference{base: f.object, scope: f.scope, name: f.name})
		return nil
	}
	v, getter, err := ip.GetPropertyOrGetter(f.object, f.name)
	if err != nil {
		return err
	}
	if getter != nil {
		f.n = 3
		ip.push(newPendingCall(nil, getter, f.object, nil, f.scope, false))
		return nil
	}
	ip.popValue(v)
	return nil
}

type sequenceFrame struct {
	frameBase
	expr *ast.SequenceExpression
}

func (f *sequenceFrame) step(ip *Interpreter) error {
	if f.n < len(f.expr.Expressions) {
		e := f.expr.Expressions[f.n]
		f.n++
		ip.pushNode(e, f.scope)
		return nil
	}
	ip.popValue(f.value)
	return nil
}

type callFrame struct {
	frameBase
	callee    ast.Expression
	arguments []ast.Expression
	isNew     bool

	fn      runtime.Value
	this    runtime.Value
	args    []runtime.Value
	argIdx  int
	started bool
}

func (f *callFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		f.n = 1
		switch f.callee.(type) {
		case *ast.Identifier, *ast.MemberExpression:
			fb := ip.pushNode(f.callee, f.scope)
			fb.components = true
		default:
			ip.pushNode(f.callee, f.scope)
		}
	case 1:
		if f.ref == nil {
			f.fn = f.value
			f.this = ip.Undefined
			return f.nextArg(ip)
		}
		if f.ref.base != nil {
			f.this = f.ref.base
		} else {
			f.this = ip.Undefined
		}
		v, getter, this, err := ip.getValue(f.ref)
		if err != nil {
			return err
		}
		if getter != nil {
			f.n = 2
			ip.push(newPendingCall(nil, getter, this, nil, f.scope, false))
			return nil
		}
		f.fn = v
		return f.nextArg(ip)
	case 2: // callee getter finished
		f.fn = f.value
		return f.nextArg(ip)
	case 3: // an argument finished
		f.args = append(f.args, f.value)
		return f.nextArg(ip)
	default: // call finished
		ip.popValue(f.value)
	}
	return nil
}

func (f *callFrame) nextArg(ip *Interpreter) error {
	if f.argIdx < len(f.arguments) {
		arg := f.arguments[f.argIdx]
		f.argIdx++
		f.n = 3
		ip.pushNode(arg, f.scope)
		return nil
	}
	return f.dispatch(ip)
}

func (f *callFrame) dispatch(ip *Interpreter) error {
	fn, ok := f.fn.(*runtime.Object)
	if !ok || !fn.IsFunction() {
		return ip.TypeError("%s is not a function", calleeName(f.callee))
	}
	f.n = 4
	pc := newPendingCall(f.node, fn, f.this, f.args, f.scope, f.isNew)
	pc.name = calleeName(f.callee)
	ip.push(pc)
	return nil
}

// calleeName reconstructs a readable name for "x is not a function" errors.
func calleeName(e ast.Expression) string {
	switch t := e.(type) {
	case *ast.Identifier:
		return t.Name
	case *ast.MemberExpression:
		if id, ok := t.Property.(*ast.Identifier); ok && !t.Computed {
			return calleeName(t.Object) + "." + id.Name
		}
		return calleeName(t.Object) + "[...]"
	}
	return "expression"
}
