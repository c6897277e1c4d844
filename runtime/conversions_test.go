package runtime

import (
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-1.5, "-1.5"},
		{3.14, "3.14"},
		{100, "100"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{1e21, "1e+21"},
		{-1e21, "-1e+21"},
		{1e-7, "1e-7"},
		{1.5e-7, "1.5e-7"},
		{123456789012345680000, "123456789012345680000"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStringToNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"42", 42},
		{"  3.5\t", 3.5},
		{"-7", -7},
		{"+7", 7},
		{"0x10", 16},
		{"0XfF", 255},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e3", 1000},
	}
	for _, tt := range tests {
		if got := StringToNumber(tt.in); got != tt.want {
			t.Errorf("StringToNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"abc", "12px", "-0x10", "0x", "1 2", "Infinity!"} {
		if got := StringToNumber(bad); !math.IsNaN(got) {
			t.Errorf("StringToNumber(%q) = %v, want NaN", bad, got)
		}
	}
}

func TestNumberSingletons(t *testing.T) {
	r := NewRealm()
	if r.NewNumber(math.NaN()) != Value(r.NaN) {
		t.Error("NaN must reuse the singleton")
	}
	if r.NewNumber(0) != Value(r.Zero) {
		t.Error("positive zero must reuse the singleton")
	}
	if r.NewNumber(1) != Value(r.One) {
		t.Error("one must reuse the singleton")
	}
	negZero := r.NewNumber(math.Copysign(0, -1))
	if negZero == Value(r.Zero) {
		t.Error("negative zero must get its own cell")
	}
	if r.NewString("") != Value(r.EmptyStr) {
		t.Error("empty string must reuse the singleton")
	}
	if r.NewBoolean(true) != Value(r.True) || r.NewBoolean(false) != Value(r.False) {
		t.Error("booleans must reuse the singletons")
	}
}

func TestToInt32AndUint32(t *testing.T) {
	r := NewRealm()
	tests := []struct {
		in   float64
		i32  int32
		u32  uint32
	}{
		{0, 0, 0},
		{1, 1, 1},
		{-1, -1, 4294967295},
		{4294967296, 0, 0},
		{4294967295, -1, 4294967295},
		{2147483648, -2147483648, 2147483648},
		{3.7, 3, 3},
		{-3.7, -3, 4294967293},
		{math.NaN(), 0, 0},
		{math.Inf(1), 0, 0},
	}
	for _, tt := range tests {
		v := r.NewNumber(tt.in)
		if got := r.ToInt32(v); got != tt.i32 {
			t.Errorf("ToInt32(%v) = %d, want %d", tt.in, got, tt.i32)
		}
		if got := r.ToUint32(v); got != tt.u32 {
			t.Errorf("ToUint32(%v) = %d, want %d", tt.in, got, tt.u32)
		}
	}
}

func TestToBoolean(t *testing.T) {
	r := NewRealm()
	falsy := []Value{r.Undefined, r.Null, r.False, r.Zero, r.NaN, r.EmptyStr}
	for _, v := range falsy {
		if r.ToBoolean(v) {
			t.Errorf("%v must be falsy", v)
		}
	}
	truthy := []Value{r.True, r.One, r.NewNumber(-1), r.NewString("0"), NewRawObject(nil)}
	for _, v := range truthy {
		if !r.ToBoolean(v) {
			t.Errorf("%v must be truthy", v)
		}
	}
}

func TestStrictEquals(t *testing.T) {
	r := NewRealm()
	if !r.StrictEquals(r.NewNumber(3), r.NewNumber(3)) {
		t.Error("3 === 3")
	}
	if r.StrictEquals(r.NaN, r.NaN) {
		t.Error("NaN === NaN must be false")
	}
	if !r.StrictEquals(r.Zero, r.NewNumber(math.Copysign(0, -1))) {
		t.Error("0 === -0 must be true")
	}
	if r.StrictEquals(r.NewNumber(1), r.NewString("1")) {
		t.Error("1 === '1' must be false")
	}
	if r.StrictEquals(r.Null, r.Undefined) {
		t.Error("null === undefined must be false")
	}
	o := NewRawObject(nil)
	if !r.StrictEquals(o, o) || r.StrictEquals(o, NewRawObject(nil)) {
		t.Error("objects compare by identity")
	}
}

func TestAbstractEquals(t *testing.T) {
	r := NewRealm()
	if !r.AbstractEquals(r.Null, r.Undefined) {
		t.Error("null == undefined")
	}
	if !r.AbstractEquals(r.NewNumber(1), r.NewString("1")) {
		t.Error("1 == '1'")
	}
	if !r.AbstractEquals(r.True, r.NewNumber(1)) {
		t.Error("true == 1")
	}
	if r.AbstractEquals(r.Null, r.Zero) {
		t.Error("null == 0 must be false")
	}
	boxed := NewRawObject(nil)
	boxed.Data = 5.0
	if !r.AbstractEquals(boxed, r.NewNumber(5)) {
		t.Error("a boxed 5 == 5")
	}
}

func TestCompare(t *testing.T) {
	r := NewRealm()
	if c, ok := r.Compare(r.NewNumber(1), r.NewNumber(2)); !ok || c != -1 {
		t.Errorf("1 < 2: got %d %v", c, ok)
	}
	if c, ok := r.Compare(r.NewString("b"), r.NewString("a")); !ok || c != 1 {
		t.Errorf("'b' > 'a': got %d %v", c, ok)
	}
	// one string side forces a numeric comparison
	if c, ok := r.Compare(r.NewString("10"), r.NewNumber(9)); !ok || c != 1 {
		t.Errorf("'10' > 9 numerically: got %d %v", c, ok)
	}
	if _, ok := r.Compare(r.NaN, r.NewNumber(1)); ok {
		t.Error("NaN poisons comparison")
	}
	if _, ok := r.Compare(r.NewString("x"), r.NewNumber(1)); ok {
		t.Error("a non-numeric string against a number poisons comparison")
	}
}

func TestSameValue(t *testing.T) {
	r := NewRealm()
	if !SameValue(r.NaN, r.NewNumber(math.NaN())) {
		t.Error("SameValue(NaN, NaN) must be true")
	}
	if SameValue(r.Zero, r.NewNumber(math.Copysign(0, -1))) {
		t.Error("SameValue(0, -0) must be false")
	}
	if !SameValue(r.NewString("a"), r.NewString("a")) {
		t.Error("equal strings")
	}
	if SameValue(r.NewNumber(1), r.True) {
		t.Error("kind mismatch")
	}
}

func TestToStringValues(t *testing.T) {
	r := NewRealm()
	if got := r.ToString(r.Undefined); got != "undefined" {
		t.Errorf("undefined: %q", got)
	}
	if got := r.ToString(r.Null); got != "null" {
		t.Errorf("null: %q", got)
	}
	arr := r.NewArray()
	arr.Set("0", r.NewNumber(1))
	arr.Set("1", r.Null)
	arr.Set("2", r.NewString("x"))
	arr.Length = 3
	if got := r.ToString(arr); got != "1,,x" {
		t.Errorf("array: %q", got)
	}
	plain := NewRawObject(nil)
	if got := r.ToString(plain); got != "[object Object]" {
		t.Errorf("object: %q", got)
	}
}

func TestToPrimitiveDate(t *testing.T) {
	r := NewRealm()
	d := NewRawObject(nil)
	d.Class = "Date"
	d.Data = math.NaN()
	p, ok := r.ToPrimitive(d).(*Primitive)
	if !ok || p.Kind != KindString || p.Str != "Invalid Date" {
		t.Fatalf("invalid date must read \"Invalid Date\", got %#v", p)
	}
}

func TestNativePseudoRoundTrip(t *testing.T) {
	r := NewRealm()
	in := map[string]interface{}{
		"n": 1.5,
		"s": "hi",
		"b": true,
		"a": []interface{}{1.0, nil, "x"},
	}
	out, ok := r.PseudoToNative(r.NativeToPseudo(in)).(map[string]interface{})
	if !ok {
		t.Fatal("expected a map back")
	}
	if out["n"] != 1.5 || out["s"] != "hi" || out["b"] != true {
		t.Errorf("scalars lost: %#v", out)
	}
	arr, ok := out["a"].([]interface{})
	if !ok || len(arr) != 3 || arr[0] != 1.0 || arr[1] != nil || arr[2] != "x" {
		t.Errorf("array lost: %#v", out["a"])
	}
}

func TestPseudoToNativeCycle(t *testing.T) {
	r := NewRealm()
	o := NewRawObject(nil)
	o.Set("self", o)
	out, ok := r.PseudoToNative(o).(map[string]interface{})
	if !ok {
		t.Fatal("expected a map")
	}
	if _, ok := out["self"].(map[string]interface{}); !ok {
		t.Fatal("cycle must collapse onto the same map")
	}
}
