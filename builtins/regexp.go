package builtins

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/pawsong/js-interp/runtime"
)

func registerRegExp(r *runtime.Realm) {
	proto := runtime.NewRawObject(r.ObjectProto)
	proto.Class = "RegExp"
	r.RegExpProto = proto
	ctor := newCtor(r, "RegExp", 2, regExpConstructor, proto)
	r.RegExpCtor = ctor

	setMethod(r, proto, "toString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.NewString(r.ToString(this)), nil
	})

	setMethod(r, proto, "test", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		res, err := regExpExec(r, this, args)
		if err != nil {
			return nil, err
		}
		return r.NewBoolean(!runtime.IsNull(res)), nil
	})

	setMethod(r, proto, "exec", 1, regExpExec)
}

func regExpConstructor(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	pattern := ""
	flags := ""
	if src, ok := argAt(r, args, 0).(*runtime.Object); ok && src.Class == "RegExp" {
		if !runtime.IsUndefined(argAt(r, args, 1)) {
			return nil, r.TypeError("Cannot supply flags when constructing one RegExp from another")
		}
		if !r.CalledAsConstructor {
			return src, nil
		}
		pattern = r.ToString(mustGet(r, src, "source"))
		flags = regExpFlags(r, src)
	} else {
		if !runtime.IsUndefined(argAt(r, args, 0)) {
			pattern = r.ToString(args[0])
		}
		if !runtime.IsUndefined(argAt(r, args, 1)) {
			flags = r.ToString(args[1])
		}
	}
	if r.CalledAsConstructor {
		obj := this.(*runtime.Object)
		if err := initRegExpObject(r, obj, pattern, flags); err != nil {
			return nil, err
		}
		return obj, nil
	}
	return newRegExpObject(r, pattern, flags)
}

// NewRegExp compiles pattern into a fresh RegExp value; regexp literals in
// the evaluator come through here.
func NewRegExp(r *runtime.Realm, pattern, flags string) (*runtime.Object, error) {
	return newRegExpObject(r, pattern, flags)
}

// newRegExpObject compiles pattern into a fresh RegExp value.
func newRegExpObject(r *runtime.Realm, pattern, flags string) (*runtime.Object, error) {
	obj := runtime.NewRawObject(r.RegExpProto)
	if err := initRegExpObject(r, obj, pattern, flags); err != nil {
		return nil, err
	}
	return obj, nil
}

func initRegExpObject(r *runtime.Realm, obj *runtime.Object, pattern, flags string) error {
	global, ignoreCase, multiline := false, false, false
	for _, f := range flags {
		switch f {
		case 'g':
			if global {
				return r.SyntaxError("Invalid regular expression flags")
			}
			global = true
		case 'i':
			if ignoreCase {
				return r.SyntaxError("Invalid regular expression flags")
			}
			ignoreCase = true
		case 'm':
			if multiline {
				return r.SyntaxError("Invalid regular expression flags")
			}
			multiline = true
		default:
			return r.SyntaxError("Invalid regular expression flags")
		}
	}
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	if ignoreCase {
		opts |= regexp2.IgnoreCase
	}
	if multiline {
		opts |= regexp2.Multiline
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		// some valid JS patterns fall outside ECMAScript mode's subset
		re, err = regexp2.Compile(pattern, opts&^regexp2.ECMAScript)
		if err != nil {
			return r.SyntaxError("Invalid regular expression: %s", err.Error())
		}
	}
	obj.Class = "RegExp"
	obj.Data = re
	source := pattern
	if source == "" {
		source = "(?:)"
	}
	setConstant(obj, "source", r.NewString(source))
	setConstant(obj, "global", r.NewBoolean(global))
	setConstant(obj, "ignoreCase", r.NewBoolean(ignoreCase))
	setConstant(obj, "multiline", r.NewBoolean(multiline))
	obj.Set("lastIndex", r.Zero)
	obj.NotEnumerable["lastIndex"] = true
	obj.NotConfigurable["lastIndex"] = true
	return nil
}

func compiledRegExp(obj *runtime.Object) *regexp2.Regexp {
	re, _ := obj.Data.(*regexp2.Regexp)
	return re
}

func regExpFlags(r *runtime.Realm, obj *runtime.Object) string {
	var b strings.Builder
	if r.ToBoolean(mustGet(r, obj, "global")) {
		b.WriteByte('g')
	}
	if r.ToBoolean(mustGet(r, obj, "ignoreCase")) {
		b.WriteByte('i')
	}
	if r.ToBoolean(mustGet(r, obj, "multiline")) {
		b.WriteByte('m')
	}
	return b.String()
}

func mustGet(r *runtime.Realm, obj *runtime.Object, name string) runtime.Value {
	v, err := r.GetProperty(obj, name)
	if err != nil {
		return r.Undefined
	}
	return v
}

func regExpExec(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj, ok := this.(*runtime.Object)
	if !ok || obj.Class != "RegExp" {
		return nil, r.TypeError("RegExp.prototype.exec called on incompatible receiver")
	}
	s := r.ToString(argAt(r, args, 0))
	start := 0
	global := r.ToBoolean(mustGet(r, obj, "global"))
	if global {
		start = r.ToInteger(mustGet(r, obj, "lastIndex"))
	}
	res, err := regExpExecOn(r, obj, s, start)
	if err != nil {
		return nil, err
	}
	if global {
		if runtime.IsNull(res) {
			obj.Set("lastIndex", r.Zero)
		}
	}
	return res, nil
}

// regExpExecOn runs a compiled RegExp against s from a rune offset and
// builds the exec() result array, updating lastIndex for global patterns.
func regExpExecOn(r *runtime.Realm, obj *runtime.Object, s string, start int) (runtime.Value, error) {
	re := compiledRegExp(obj)
	if re == nil {
		return nil, r.TypeError("RegExp not compiled")
	}
	if start < 0 || start > len([]rune(s)) {
		return r.Null, nil
	}
	m, err := re.FindStringMatchStartingAt(s, start)
	if err != nil {
		return nil, r.SyntaxError("%s", err.Error())
	}
	if m == nil {
		return r.Null, nil
	}
	out := r.NewArray()
	for _, g := range m.Groups() {
		if g.Length == 0 && len(g.Captures) == 0 {
			arrayPush(out, r.Undefined)
			continue
		}
		arrayPush(out, r.NewString(g.String()))
	}
	setDataProp(out, "index", r.NewNumber(float64(m.Index)))
	setDataProp(out, "input", r.NewString(s))
	if r.ToBoolean(mustGet(r, obj, "global")) {
		obj.Set("lastIndex", r.NewNumber(float64(m.Index+m.Length)))
	}
	return out, nil
}
