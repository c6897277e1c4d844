package interpreter

import (
	"math"
	"strings"
	"testing"

	"github.com/pawsong/js-interp/runtime"
)

func evalExpect(t *testing.T, source string) (*Interpreter, runtime.Value) {
	t.Helper()
	ip, err := New(source, nil)
	if err != nil {
		t.Fatalf("parse error for %q: %v", source, err)
	}
	blocked, err := ip.Run()
	if err != nil {
		t.Fatalf("run error for %q: %v", source, err)
	}
	if blocked {
		t.Fatalf("unexpected async block for %q", source)
	}
	return ip, ip.Value
}

func evalExpectError(t *testing.T, source string) error {
	t.Helper()
	ip, err := New(source, nil)
	if err != nil {
		return err
	}
	if _, err = ip.Run(); err == nil {
		t.Fatalf("expected error for %q but got none", source)
	}
	return err
}

func expectNumber(t *testing.T, source string, expected float64) {
	t.Helper()
	_, val := evalExpect(t, source)
	p, ok := val.(*runtime.Primitive)
	if !ok || p.Kind != runtime.KindNumber {
		t.Fatalf("expected number for %q, got %#v", source, val)
	}
	if math.IsNaN(expected) {
		if !math.IsNaN(p.Number) {
			t.Fatalf("expected NaN for %q, got %v", source, p.Number)
		}
		return
	}
	if p.Number != expected {
		t.Fatalf("expected %v for %q, got %v", expected, source, p.Number)
	}
}

func expectString(t *testing.T, source string, expected string) {
	t.Helper()
	_, val := evalExpect(t, source)
	p, ok := val.(*runtime.Primitive)
	if !ok || p.Kind != runtime.KindString {
		t.Fatalf("expected string for %q, got %#v", source, val)
	}
	if p.Str != expected {
		t.Fatalf("expected %q for %q, got %q", expected, source, p.Str)
	}
}

func expectBool(t *testing.T, source string, expected bool) {
	t.Helper()
	_, val := evalExpect(t, source)
	p, ok := val.(*runtime.Primitive)
	if !ok || p.Kind != runtime.KindBoolean {
		t.Fatalf("expected boolean for %q, got %#v", source, val)
	}
	if p.Bool != expected {
		t.Fatalf("expected %v for %q, got %v", expected, source, p.Bool)
	}
}

func expectUndefined(t *testing.T, source string) {
	t.Helper()
	_, val := evalExpect(t, source)
	if !runtime.IsUndefined(val) {
		t.Fatalf("expected undefined for %q, got %#v", source, val)
	}
}

// --- Literals and singletons ---

func TestLiterals(t *testing.T) {
	expectNumber(t, "42", 42)
	expectNumber(t, "3.14", 3.14)
	expectNumber(t, "0x10", 16)
	expectString(t, `"hello"`, "hello")
	expectString(t, "'world'", "world")
	expectBool(t, "true", true)
	expectBool(t, "false", false)
}

func TestSingletonIdentity(t *testing.T) {
	ip, val := evalExpect(t, "undefined")
	if val != ip.Undefined {
		t.Fatal("undefined is not the realm singleton")
	}
	ip, val = evalExpect(t, "null")
	if val != ip.Null {
		t.Fatal("null is not the realm singleton")
	}
	ip, val = evalExpect(t, "1 === 1")
	if val != ip.True {
		t.Fatal("true is not the realm singleton")
	}
	ip, val = evalExpect(t, "0 * 5")
	if val != ip.Zero {
		t.Fatal("zero is not the realm singleton")
	}
	ip, val = evalExpect(t, "'a' + 'b' === 'ab' ? NaN : 0")
	if val != ip.NaN {
		t.Fatal("NaN is not the realm singleton")
	}
}

// --- Operators ---

func TestArithmetic(t *testing.T) {
	expectNumber(t, "1 + 2 * 3", 7)
	expectNumber(t, "(1 + 2) * 3", 9)
	expectNumber(t, "10 % 3", 1)
	expectNumber(t, "2 * 3 + 4 / 2", 8)
	expectNumber(t, "1 / 0", math.Inf(1))
	expectNumber(t, "-1 / 0", math.Inf(-1))
	expectNumber(t, "0 / 0", math.NaN())
	expectString(t, "1 + '2'", "12")
	expectNumber(t, "'3' * '4'", 12)
	expectNumber(t, "'5' - 2", 3)
}

func TestBitwiseAndShifts(t *testing.T) {
	expectNumber(t, "5 & 3", 1)
	expectNumber(t, "5 | 3", 7)
	expectNumber(t, "5 ^ 3", 6)
	expectNumber(t, "~0", -1)
	expectNumber(t, "1 << 4", 16)
	expectNumber(t, "-8 >> 1", -4)
	expectNumber(t, "-1 >>> 28", 15)
}

func TestComparisons(t *testing.T) {
	expectBool(t, "1 < 2", true)
	expectBool(t, "'a' < 'b'", true)
	expectBool(t, "'10' < '9'", true)
	expectBool(t, "10 < 9", false)
	expectBool(t, "NaN < NaN", false)
	expectBool(t, "NaN >= NaN", false)
	expectBool(t, "1 == '1'", true)
	expectBool(t, "1 === '1'", false)
	expectBool(t, "null == undefined", true)
	expectBool(t, "null === undefined", false)
}

func TestLogicalShortCircuit(t *testing.T) {
	expectNumber(t, "1 && 2", 2)
	expectNumber(t, "0 || 3", 3)
	expectNumber(t, "var x = 0; false && (x = 1); x", 0)
	expectNumber(t, "var x = 0; true || (x = 1); x", 0)
	expectString(t, "null || 'fallback'", "fallback")
}

func TestTypeofAndVoid(t *testing.T) {
	expectString(t, "typeof 1", "number")
	expectString(t, "typeof 'x'", "string")
	expectString(t, "typeof undefined", "undefined")
	expectString(t, "typeof null", "object")
	expectString(t, "typeof {}", "object")
	expectString(t, "typeof function(){}", "function")
	expectString(t, "typeof neverDeclared", "undefined")
	expectUndefined(t, "void 0")
}

// --- Variables, scopes, closures ---

func TestVarHoisting(t *testing.T) {
	expectUndefined(t, "var r = x; var x = 1; r")
	expectNumber(t, "f(); function f() { return 9 } f()", 9)
}

func TestClosures(t *testing.T) {
	expectNumber(t, `
		function makeCounter() {
			var c = 0;
			return function() { return ++c; };
		}
		var inc = makeCounter();
		inc(); inc(); inc()`, 3)
	expectNumber(t, `
		var a = makeAdder(10);
		function makeAdder(base) { return function(n) { return base + n; }; }
		a(5)`, 15)
}

func TestFibonacci(t *testing.T) {
	expectNumber(t, `
		function fib(n) { return n < 2 ? n : fib(n - 1) + fib(n - 2); }
		fib(15)`, 610)
}

func TestNamedFunctionExpression(t *testing.T) {
	expectNumber(t, `
		var fact = function f(n) { return n <= 1 ? 1 : n * f(n - 1); };
		fact(5)`, 120)
}

// --- Control flow ---

func TestLoops(t *testing.T) {
	expectNumber(t, "var s = 0; for (var i = 1; i <= 10; i++) s += i; s", 55)
	expectNumber(t, "var n = 0; while (n < 5) n++; n", 5)
	expectNumber(t, "var n = 10; do { n++; } while (false); n", 11)
	expectNumber(t, "var s = 0; for (var i = 0; i < 10; i++) { if (i % 2) continue; s += i; } s", 20)
	expectNumber(t, "var i = 0; for (;;) { if (i === 7) break; i++; } i", 7)
}

func TestLabeledBreakContinue(t *testing.T) {
	expectNumber(t, `
		var hits = 0;
		outer:
		for (var i = 0; i < 3; i++) {
			for (var j = 0; j < 3; j++) {
				if (j === 1) continue outer;
				hits++;
			}
		}
		hits`, 3)
	expectNumber(t, `
		var n = 0;
		outer:
		for (var i = 0; i < 3; i++) {
			for (var j = 0; j < 3; j++) {
				n++;
				if (i === 1) break outer;
			}
		}
		n`, 4)
}

func TestSwitchFallthrough(t *testing.T) {
	expectString(t, `
		function grade(n) {
			var out = "";
			switch (n) {
			case 1:
				out += "one ";
			case 2:
				out += "two ";
				break;
			case 3:
				out += "three ";
				break;
			default:
				out += "other ";
			}
			return out;
		}
		grade(1) + "|" + grade(3) + "|" + grade(9)`,
		"one two |three |other ")
}

func TestSwitchCoercedMatch(t *testing.T) {
	// case matching coerces the way == does
	expectString(t, `
		var out = "";
		switch (1) {
		case '1':
			out = "string one";
			break;
		default:
			out = "default";
		}
		out`, "string one")
	expectString(t, `
		var out = "";
		switch (null) {
		case undefined:
			out = "matched";
			break;
		default:
			out = "default";
		}
		out`, "matched")
}

func TestForIn(t *testing.T) {
	expectString(t, `
		var o = { b: 1, a: 2, c: 3 };
		var keys = "";
		for (var k in o) keys += k;
		keys`, "bac")
	expectString(t, `
		var o = { x: 1, y: 2, z: 3 };
		var seen = "";
		for (var k in o) { seen += k; delete o.z; }
		seen`, "xy")
}

func TestWith(t *testing.T) {
	expectNumber(t, "var r; with ({ a: 5 }) { r = a; } r", 5)
	expectNumber(t, "var o = { v: 1 }; with (o) { v = 42; } o.v", 42)
}

// --- Exceptions ---

func TestTryCatchFinally(t *testing.T) {
	expectString(t, `
		var log = "";
		try { log += "t"; throw "boom"; log += "x"; }
		catch (e) { log += "c" + e; }
		finally { log += "f"; }
		log`, "tcboomf")
	expectString(t, `
		var log = "";
		try { log += "t"; } finally { log += "f"; }
		log`, "tf")
	expectNumber(t, `
		var r = 0;
		function f() { try { throw 1 } finally { r = 2 } }
		try { f() } catch (e) { r += e }
		r`, 3)
}

func TestFinallyOnReturn(t *testing.T) {
	expectString(t, `
		var log = "";
		function f() {
			try {
				return "r";
			} finally {
				log += "f";
			}
		}
		f() + log`, "rf")
}

func TestFinallyOnLoopControl(t *testing.T) {
	expectString(t, `
		var log = "";
		for (var i = 0; i < 3; i++) {
			try {
				if (i === 1) continue;
				if (i === 2) break;
				log += "b" + i;
			} finally {
				log += "f" + i;
			}
		}
		log += "."`, "b0f0f1f2.")
}

func TestFinallyNestedReturn(t *testing.T) {
	expectString(t, `
		var log = "";
		function f() {
			try {
				try {
					return "r";
				} finally {
					log += "1";
				}
			} finally {
				log += "2";
			}
		}
		f() + log`, "r12")
}

func TestFinallyOverridesUnwind(t *testing.T) {
	// a return inside the finalizer replaces the one that triggered it
	expectNumber(t, `
		function f() {
			try {
				return 1;
			} finally {
				return 2;
			}
		}
		f()`, 2)
}

func TestUncaughtThrow(t *testing.T) {
	err := evalExpectError(t, "throw new TypeError('boom')")
	thrown, ok := err.(*runtime.Thrown)
	if !ok {
		t.Fatalf("expected *runtime.Thrown, got %T", err)
	}
	if thrown.Error() != "TypeError: boom" {
		t.Fatalf("unexpected error text %q", thrown.Error())
	}
}

func TestUndeclaredReference(t *testing.T) {
	err := evalExpectError(t, "missing + 1")
	if !strings.Contains(err.Error(), "ReferenceError: missing is not defined") {
		t.Fatalf("unexpected error %q", err.Error())
	}
}

func TestErrorInstanceof(t *testing.T) {
	expectBool(t, `
		var caught = null;
		try { null.x; } catch (e) { caught = e; }
		caught instanceof TypeError && caught instanceof Error`, true)
}

// --- Functions and calls ---

func TestArgumentsObject(t *testing.T) {
	expectNumber(t, "function f() { return arguments.length; } f(1, 2, 3)", 3)
	expectNumber(t, "function f() { return arguments[1]; } f(10, 20)", 20)
	expectString(t, "function f() { return Array.prototype.join.call(arguments, '-'); } f('a', 'b')", "a-b")
}

func TestNewAndPrototypes(t *testing.T) {
	expectString(t, `
		function Dog(name) { this.name = name; }
		Dog.prototype.speak = function() { return this.name + " says woof"; };
		new Dog("Rex").speak()`, "Rex says woof")
	expectBool(t, `
		function Dog() {}
		var d = new Dog();
		d instanceof Dog && d instanceof Object && !(d instanceof Array)`, true)
	expectNumber(t, `
		function F() { return 7; }
		typeof new F() === "object" ? 1 : 0`, 1)
	expectNumber(t, `
		function F() { return { v: 9 }; }
		new F().v`, 9)
}

func TestApplyCallBind(t *testing.T) {
	expectNumber(t, "Math.max.apply(null, [1, 5, 3])", 5)
	expectNumber(t, "function f(a, b) { return this.x + a + b; } f.call({ x: 1 }, 2, 3)", 6)
	expectNumber(t, `
		function f(a, b) { return this.x + a + b; }
		var g = f.bind({ x: 10 }, 1);
		g(2)`, 13)
	expectBool(t, `
		function F(v) { this.v = v; }
		var B = F.bind(null, 5);
		var o = new B();
		o.v === 5 && o instanceof F`, true)
}

func TestFunctionConstructor(t *testing.T) {
	expectNumber(t, "var add = new Function('a', 'b', 'return a + b'); add(2, 3)", 5)
	expectNumber(t, "Function('return 41 + 1')()", 42)
}

func TestEval(t *testing.T) {
	expectNumber(t, "eval('1 + 2')", 3)
	expectNumber(t, "function f() { eval('var y = 5'); return y; } f()", 5)
	expectNumber(t, "var x = 1; eval('x + 1')", 2)
	expectNumber(t, "eval(42)", 42)
	err := evalExpectError(t, "eval('1 +')")
	if !strings.Contains(err.Error(), "SyntaxError") {
		t.Fatalf("unexpected error %q", err.Error())
	}
}

// --- Objects and properties ---

func TestAccessors(t *testing.T) {
	expectNumber(t, "var o = { get x() { return 42; } }; o.x", 42)
	expectNumber(t, `
		var o = { _v: 0, get v() { return this._v; }, set v(n) { this._v = n * 2; } };
		o.v = 21;
		o.v`, 42)
	expectNumber(t, `
		var o = {};
		Object.defineProperty(o, "x", { get: function() { return 7; } });
		o.x`, 7)
}

func TestDefinePropertyRedefine(t *testing.T) {
	expectBool(t, `
		var o = {};
		Object.defineProperty(o, "x", { value: 1 });
		var caught = null;
		try { Object.defineProperty(o, "x", { value: 2 }); } catch (e) { caught = e; }
		caught instanceof TypeError`, true)
	// an identical descriptor is no exception
	expectBool(t, `
		var o = {};
		Object.defineProperty(o, "x", { value: 1 });
		var caught = null;
		try { Object.defineProperty(o, "x", { value: 1 }); } catch (e) { caught = e; }
		caught instanceof TypeError`, true)
	expectNumber(t, `
		var o = {};
		Object.defineProperty(o, "x", { value: 1, writable: true, configurable: true });
		Object.defineProperty(o, "x", { value: 2 });
		o.x`, 2)
}

func TestPropertyEnumeration(t *testing.T) {
	expectString(t, `
		var o = { a: 1 };
		Object.defineProperty(o, "hidden", { value: 2, enumerable: false });
		o.b = 3;
		Object.keys(o).join(",")`, "a,b")
	expectBool(t, "'a' in { a: 1 }", true)
	expectBool(t, "'toString' in {}", true)
	expectBool(t, "({ a: 1 }).hasOwnProperty('toString')", false)
}

func TestDeleteOperator(t *testing.T) {
	expectBool(t, "var o = { a: 1 }; delete o.a && !('a' in o)", true)
	expectBool(t, "delete 42", true)
	expectBool(t, "var a = [1, 2, 3]; delete a[1]; a[1] === undefined && a.length === 3", true)
}

// --- Arrays ---

func TestArrayBasics(t *testing.T) {
	expectNumber(t, "[1, 2, 3].length", 3)
	expectNumber(t, "var a = []; a[4] = 1; a.length", 5)
	expectString(t, "[1, , 3].join('-')", "1--3")
	expectNumber(t, "var a = [1, 2]; a.push(3); a.length", 3)
	expectString(t, "[3, 1, 2].sort().join(',')", "1,2,3")
	expectString(t, "[1, 2, 3].reverse().join(',')", "3,2,1")
	expectString(t, "[1, 2, 3].concat([4, 5]).join(',')", "1,2,3,4,5")
}

func TestArrayLengthTruncation(t *testing.T) {
	expectBool(t, `
		var a = [1, 2, 3];
		a.length = 1;
		a.length === 1 && a[1] === undefined && a[0] === 1`, true)
	expectBool(t, `
		var caught = null;
		try { [].length = -1; } catch (e) { caught = e; }
		caught instanceof RangeError`, true)
}

func TestArrayIteration(t *testing.T) {
	expectString(t, "[1, 2, 3].map(function(x) { return x * 2; }).join(',')", "2,4,6")
	expectString(t, "[1, 2, 3, 4].filter(function(x) { return x % 2 === 0; }).join(',')", "2,4")
	expectNumber(t, "[1, 2, 3, 4].reduce(function(a, b) { return a + b; })", 10)
	expectNumber(t, "[1, 2, 3].reduce(function(a, b) { return a + b; }, 10)", 16)
	expectBool(t, "[1, 2, 3].some(function(x) { return x > 2; })", true)
	expectBool(t, "[1, 2, 3].every(function(x) { return x > 0; })", true)
	expectNumber(t, `
		var sum = 0;
		[1, 2, 3].forEach(function(x, i) { sum += x * i; });
		sum`, 8)
	expectString(t, "[5, 40, 1].sort(function(a, b) { return a - b; }).join(',')", "1,5,40")
}

// --- Strings and regexps ---

func TestStringMethods(t *testing.T) {
	expectNumber(t, "'hello'.indexOf('l')", 2)
	expectString(t, "'hello'.slice(1, 3)", "el")
	expectString(t, "'a,b,c'.split(',').join('|')", "a|b|c")
	expectString(t, "'  pad  '.trim()", "pad")
	expectString(t, "'abc'.toUpperCase()", "ABC")
	expectString(t, "'abc'.charAt(1)", "b")
	expectNumber(t, "'abc'.charCodeAt(0)", 97)
	expectString(t, "String.fromCharCode(104, 105)", "hi")
	expectNumber(t, "'abc'.length", 3)
}

func TestRegExp(t *testing.T) {
	expectBool(t, "/a+b/.test('caaab')", true)
	expectBool(t, "/^x/.test('yx')", false)
	expectString(t, "/(\\d+)-(\\d+)/.exec('a 12-34 z')[2]", "34")
	expectString(t, "'a1b2'.replace(/\\d/, 'X')", "aXb2")
	expectString(t, "'a1b2'.replace(/\\d/g, 'X')", "aXbX")
	expectString(t, "'one two  three'.split(/\\s+/).join(',')", "one,two,three")
	expectNumber(t, "'aXbXc'.match(/X/g).length", 2)
	expectBool(t, `
		var re = /a/g;
		re.exec("banana");
		re.lastIndex === 2`, true)
}

// --- JSON ---

func TestJSONStringify(t *testing.T) {
	expectString(t, `JSON.stringify({ b: 1, a: [1, 2], s: "x" })`, `{"b":1,"a":[1,2],"s":"x"}`)
	expectString(t, `JSON.stringify([1, "two", null, true])`, `[1,"two",null,true]`)
	expectString(t, `JSON.stringify({ u: undefined, f: function() {}, n: 1 })`, `{"n":1}`)
	expectString(t, `JSON.stringify({ a: 1 }, null, 2)`, "{\n  \"a\": 1\n}")
}

func TestJSONParseRoundTrip(t *testing.T) {
	expectNumber(t, `JSON.parse('{"x": 1}').x`, 1)
	expectString(t, `JSON.stringify(JSON.parse('{"b":1,"a":{"z":[1,2,3]}}'))`, `{"b":1,"a":{"z":[1,2,3]}}`)
	expectBool(t, `
		var caught = null;
		try { JSON.parse("{bad"); } catch (e) { caught = e; }
		caught instanceof SyntaxError`, true)
	expectBool(t, `
		var o = {}; o.self = o;
		var caught = null;
		try { JSON.stringify(o); } catch (e) { caught = e; }
		caught instanceof TypeError`, true)
}

// --- Strict mode ---

func TestStrictMode(t *testing.T) {
	err := evalExpectError(t, `"use strict"; undeclared = 1;`)
	if !strings.Contains(err.Error(), "ReferenceError") {
		t.Fatalf("unexpected error %q", err.Error())
	}
	err = evalExpectError(t, `
		"use strict";
		var o = {};
		Object.defineProperty(o, "x", { value: 1 });
		o.x = 2;`)
	if !strings.Contains(err.Error(), "TypeError") {
		t.Fatalf("unexpected error %q", err.Error())
	}
	// sloppy code swallows the same write
	expectNumber(t, `
		var o = {};
		Object.defineProperty(o, "x", { value: 1 });
		o.x = 2;
		o.x`, 1)
}

func TestStrictFunctionThis(t *testing.T) {
	expectBool(t, `function f() { "use strict"; return this === undefined; } f()`, true)
	expectBool(t, "function f() { return this; } f() === this", true)
}

// --- Stepping ---

func TestStepMonotonicity(t *testing.T) {
	ip, err := New("var s = 0; for (var i = 0; i < 100; i++) s += i; s", nil)
	if err != nil {
		t.Fatal(err)
	}
	steps := 0
	for {
		more, err := ip.Step()
		if err != nil {
			t.Fatal(err)
		}
		if !more {
			break
		}
		steps++
		if steps > 100000 {
			t.Fatal("step loop did not terminate")
		}
	}
	if steps < 100 {
		t.Fatalf("expected at least one step per loop iteration, got %d", steps)
	}
	// completion is stable
	for i := 0; i < 3; i++ {
		more, err := ip.Step()
		if err != nil || more {
			t.Fatalf("Step after completion: more=%v err=%v", more, err)
		}
	}
	p, ok := ip.Value.(*runtime.Primitive)
	if !ok || p.Number != 4950 {
		t.Fatalf("unexpected completion value %#v", ip.Value)
	}
}

func TestPolyfillsAreFree(t *testing.T) {
	ip, err := New("1", nil)
	if err != nil {
		t.Fatal(err)
	}
	steps := 0
	for {
		more, err := ip.Step()
		if err != nil {
			t.Fatal(err)
		}
		if !more {
			break
		}
		steps++
	}
	// the polyfill prelude is large; user code is two frames
	if steps > 10 {
		t.Fatalf("startup code leaked into the step count: %d steps for \"1\"", steps)
	}
}

// --- AppendCode ---

func TestAppendCode(t *testing.T) {
	ip, _ := evalExpect(t, "var x = 40;")
	if err := ip.AppendCode("x + 2"); err != nil {
		t.Fatal(err)
	}
	if _, err := ip.Run(); err != nil {
		t.Fatal(err)
	}
	p, ok := ip.Value.(*runtime.Primitive)
	if !ok || p.Number != 42 {
		t.Fatalf("unexpected value after append %#v", ip.Value)
	}

	// state carries across appends
	if err := ip.AppendCode("function f(n) { return n * x; }"); err != nil {
		t.Fatal(err)
	}
	if err := ip.AppendCode("f(2)"); err != nil {
		t.Fatal(err)
	}
	if _, err := ip.Run(); err != nil {
		t.Fatal(err)
	}
	p, ok = ip.Value.(*runtime.Primitive)
	if !ok || p.Number != 80 {
		t.Fatalf("unexpected value after second append %#v", ip.Value)
	}
}

func TestAppendCodeParseError(t *testing.T) {
	ip, _ := evalExpect(t, "1")
	if err := ip.AppendCode("var ="); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAppendCodeMidExecution(t *testing.T) {
	ip, err := New("var r = fetchValue();", func(ip *Interpreter, global *runtime.Object) {
		fetch := ip.NewAsyncFunction(func(r *runtime.Realm, this runtime.Value, args []runtime.Value, done func(runtime.Value, error)) {
			// never completes; the interpreter stays blocked mid-statement
		}, 0)
		ip.SetGlobal("fetchValue", fetch)
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ip.Run(); err != nil {
		t.Fatal(err)
	}
	if !ip.Paused() {
		t.Fatal("expected the interpreter to block on the async call")
	}
	if err := ip.AppendCode("1 + 1"); err == nil {
		t.Fatal("append must be rejected while a statement is executing")
	}
}

// --- Async and the host bridge ---

func TestAsyncPauseResume(t *testing.T) {
	var done func(runtime.Value, error)
	ip, err := New("var r = fetchValue(); r + 1", func(ip *Interpreter, global *runtime.Object) {
		fetch := ip.NewAsyncFunction(func(r *runtime.Realm, this runtime.Value, args []runtime.Value, d func(runtime.Value, error)) {
			done = d
		}, 0)
		ip.SetGlobal("fetchValue", fetch)
	})
	if err != nil {
		t.Fatal(err)
	}
	blocked, err := ip.Run()
	if err != nil {
		t.Fatal(err)
	}
	if !blocked || !ip.Paused() {
		t.Fatal("expected the interpreter to block on the async call")
	}
	done(ip.NewNumber(41), nil)
	if ip.Paused() {
		t.Fatal("Paused must report false once the result is waiting")
	}
	blocked, err = ip.Run()
	if err != nil {
		t.Fatal(err)
	}
	if blocked {
		t.Fatal("still blocked after resume")
	}
	p, ok := ip.Value.(*runtime.Primitive)
	if !ok || p.Number != 42 {
		t.Fatalf("unexpected completion value %#v", ip.Value)
	}
}

func TestAsyncSynchronousDone(t *testing.T) {
	ip, err := New("quick() * 2", func(ip *Interpreter, global *runtime.Object) {
		quick := ip.NewAsyncFunction(func(r *runtime.Realm, this runtime.Value, args []runtime.Value, d func(runtime.Value, error)) {
			d(r.NewNumber(21), nil)
		}, 0)
		ip.SetGlobal("quick", quick)
	})
	if err != nil {
		t.Fatal(err)
	}
	blocked, err := ip.Run()
	if err != nil {
		t.Fatal(err)
	}
	if blocked {
		t.Fatal("synchronous done must not leave the interpreter blocked")
	}
	p, ok := ip.Value.(*runtime.Primitive)
	if !ok || p.Number != 42 {
		t.Fatalf("unexpected completion value %#v", ip.Value)
	}
}

func TestAsyncThrow(t *testing.T) {
	ip, err := New("var caught = null; try { failLater(); } catch (e) { caught = e; } caught instanceof Error", func(ip *Interpreter, global *runtime.Object) {
		fail := ip.NewAsyncFunction(func(r *runtime.Realm, this runtime.Value, args []runtime.Value, d func(runtime.Value, error)) {
			d(nil, r.TypeError("backend down"))
		}, 0)
		ip.SetGlobal("failLater", fail)
	})
	if err != nil {
		t.Fatal(err)
	}
	blocked, err := ip.Run()
	if err != nil {
		t.Fatal(err)
	}
	if blocked {
		t.Fatal("unexpected block")
	}
	if ip.Value != ip.True {
		t.Fatalf("async throw was not catchable: %#v", ip.Value)
	}
}

func TestHostNatives(t *testing.T) {
	ip, err := New("triple(14)", func(ip *Interpreter, global *runtime.Object) {
		triple := ip.NewNativeFunction(func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return r.Undefined, nil
			}
			return r.NewNumber(r.ToNumber(args[0]) * 3), nil
		}, 1)
		ip.SetGlobal("triple", triple)
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ip.Run(); err != nil {
		t.Fatal(err)
	}
	p, ok := ip.Value.(*runtime.Primitive)
	if !ok || p.Number != 42 {
		t.Fatalf("unexpected value %#v", ip.Value)
	}
}

// --- Builtin coverage through the evaluator ---

func TestGlobalFunctions(t *testing.T) {
	expectNumber(t, "parseInt('42px')", 42)
	expectNumber(t, "parseInt('ff', 16)", 255)
	expectNumber(t, "parseFloat('3.5e2x')", 350)
	expectBool(t, "isNaN('abc')", true)
	expectBool(t, "isFinite(1 / 0)", false)
	expectString(t, "encodeURIComponent('a b&c')", "a%20b%26c")
	expectString(t, "decodeURIComponent('a%20b')", "a b")
}

func TestNumberMethods(t *testing.T) {
	expectString(t, "(255).toString(16)", "ff")
	expectString(t, "(1.005).toFixed(1)", "1.0")
	expectString(t, "(0.1 + 0.2).toFixed(1)", "0.3")
	expectNumber(t, "Number.MAX_VALUE > 1e308 ? 1 : 0", 1)
}

func TestMath(t *testing.T) {
	expectNumber(t, "Math.max(1, 5, 3)", 5)
	expectNumber(t, "Math.min(1, 5, 3)", 1)
	expectNumber(t, "Math.floor(1.9)", 1)
	expectNumber(t, "Math.round(2.5)", 3)
	expectNumber(t, "Math.round(-2.5)", -2)
	expectNumber(t, "Math.pow(2, 10)", 1024)
	expectNumber(t, "Math.abs(-7)", 7)
}

func TestDate(t *testing.T) {
	expectNumber(t, "new Date(86400000).getTime()", 86400000)
	expectBool(t, "new Date() instanceof Date", true)
	expectBool(t, "typeof Date.now() === 'number'", true)
	expectString(t, "new Date('nonsense') + '' === 'Invalid Date' ? 'ok' : 'bad'", "ok")
}

func TestValueToString(t *testing.T) {
	expectString(t, "String(123)", "123")
	expectString(t, "String(0.5)", "0.5")
	expectString(t, "String(1e21)", "1e+21")
	expectString(t, "String(-0)", "0")
	expectString(t, "String([1, [2, 3]])", "1,2,3")
	expectString(t, "String(null)", "null")
	expectString(t, "({}) + ''", "[object Object]")
}
