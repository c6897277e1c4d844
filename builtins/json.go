package builtins

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pawsong/js-interp/runtime"
)

func registerJSON(r *runtime.Realm) {
	obj := r.NewObject(nil)
	obj.Class = "JSON"
	r.JSONObj = obj
	r.SetGlobal("JSON", obj)
	r.GlobalObject.NotEnumerable["JSON"] = true

	setMethod(r, obj, "parse", 2, jsonParse)
	setMethod(r, obj, "stringify", 3, jsonStringify)
}

// jsonParse decodes with the stream tokenizer rather than unmarshalling to
// a map, so object keys keep their document order.
func jsonParse(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	src := r.ToString(argAt(r, args, 0))
	if funcArg(args, 1) != nil {
		return nil, r.TypeError("Reviver functions are not supported")
	}
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	v, err := decodeJSONValue(r, dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, r.SyntaxError("Unexpected token in JSON")
	}
	return v, nil
}

func decodeJSONValue(r *runtime.Realm, dec *json.Decoder) (runtime.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, r.SyntaxError("Unexpected end of JSON input")
	}
	return decodeJSONToken(r, dec, tok)
}

func decodeJSONToken(r *runtime.Realm, dec *json.Decoder, tok json.Token) (runtime.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := r.NewObject(nil)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, r.SyntaxError("Unexpected end of JSON input")
				}
				key, _ := keyTok.(string)
				val, err := decodeJSONValue(r, dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, r.SyntaxError("Unexpected end of JSON input")
			}
			return obj, nil
		case '[':
			arr := r.NewArray()
			for dec.More() {
				val, err := decodeJSONValue(r, dec)
				if err != nil {
					return nil, err
				}
				arrayPush(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, r.SyntaxError("Unexpected end of JSON input")
			}
			return arr, nil
		}
	case bool:
		return r.NewBoolean(t), nil
	case string:
		return r.NewString(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, r.SyntaxError("Invalid number in JSON")
		}
		return r.NewNumber(f), nil
	case nil:
		return r.Null, nil
	}
	return nil, r.SyntaxError("Unexpected token in JSON")
}

func jsonStringify(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if funcArg(args, 1) != nil {
		return nil, r.TypeError("Replacer functions are not supported; pass an array of keys")
	}
	var allowed map[string]bool
	if rep, ok := argAt(r, args, 1).(*runtime.Object); ok && rep.Class == "Array" {
		allowed = map[string]bool{}
		for i := 0; i < rep.Length; i++ {
			if el, ok := rep.Properties[strconv.Itoa(i)]; ok {
				allowed[r.ToString(el)] = true
			}
		}
	}
	indent := ""
	switch sp := argAt(r, args, 2).(type) {
	case *runtime.Primitive:
		if sp.Kind == runtime.KindNumber {
			n := r.ToInteger(sp)
			if n > 10 {
				n = 10
			}
			indent = strings.Repeat(" ", max(n, 0))
		} else if sp.Kind == runtime.KindString {
			indent = sp.Str
			if len(indent) > 10 {
				indent = indent[:10]
			}
		}
	}

	w := &jsonWriter{r: r, allowed: allowed, indent: indent, seen: map[*runtime.Object]bool{}}
	var b strings.Builder
	ok, err := w.writeValue(&b, argAt(r, args, 0), "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.Undefined, nil
	}
	return r.NewString(b.String()), nil
}

type jsonWriter struct {
	r       *runtime.Realm
	allowed map[string]bool
	indent  string
	seen    map[*runtime.Object]bool
}

// writeValue serializes v; ok is false for values JSON omits entirely
// (undefined and functions).
func (w *jsonWriter) writeValue(b *strings.Builder, v runtime.Value, prefix string) (bool, error) {
	r := w.r
	switch t := v.(type) {
	case *runtime.Primitive:
		switch t.Kind {
		case runtime.KindUndefined:
			return false, nil
		case runtime.KindNull:
			b.WriteString("null")
		case runtime.KindBoolean:
			b.WriteString(strconv.FormatBool(t.Bool))
		case runtime.KindNumber:
			if math.IsNaN(t.Number) || math.IsInf(t.Number, 0) {
				b.WriteString("null")
			} else {
				b.WriteString(runtime.FormatNumber(t.Number))
			}
		case runtime.KindString:
			writeJSONString(b, t.Str)
		}
		return true, nil
	case *runtime.Object:
		if t.IsFunction() {
			return false, nil
		}
		switch d := t.Data.(type) {
		case time.Time:
			writeJSONString(b, d.UTC().Format("2006-01-02T15:04:05.000Z"))
			return true, nil
		case string:
			writeJSONString(b, d)
			return true, nil
		case float64:
			if t.Class == "Date" || math.IsNaN(d) || math.IsInf(d, 0) {
				b.WriteString("null")
			} else {
				b.WriteString(runtime.FormatNumber(d))
			}
			return true, nil
		case bool:
			b.WriteString(strconv.FormatBool(d))
			return true, nil
		}
		if w.seen[t] {
			return false, r.TypeError("Converting circular structure to JSON")
		}
		w.seen[t] = true
		defer delete(w.seen, t)
		if t.Class == "Array" {
			return true, w.writeArray(b, t, prefix)
		}
		return true, w.writeObject(b, t, prefix)
	}
	return false, nil
}

func (w *jsonWriter) writeArray(b *strings.Builder, a *runtime.Object, prefix string) error {
	if a.Length == 0 {
		b.WriteString("[]")
		return nil
	}
	inner := prefix + w.indent
	b.WriteByte('[')
	for i := 0; i < a.Length; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		w.newline(b, inner)
		el, ok := a.Properties[strconv.Itoa(i)]
		if !ok {
			el = w.r.Undefined
		}
		written, err := w.writeValue(b, el, inner)
		if err != nil {
			return err
		}
		if !written {
			b.WriteString("null")
		}
	}
	w.newline(b, prefix)
	b.WriteByte(']')
	return nil
}

func (w *jsonWriter) writeObject(b *strings.Builder, o *runtime.Object, prefix string) error {
	keys := o.EnumerableKeys()
	inner := prefix + w.indent
	b.WriteByte('{')
	first := true
	for _, k := range keys {
		if w.allowed != nil && !w.allowed[k] {
			continue
		}
		val, err := w.r.GetProperty(o, k)
		if err != nil {
			return err
		}
		var cell strings.Builder
		written, err := w.writeValue(&cell, val, inner)
		if err != nil {
			return err
		}
		if !written {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		w.newline(b, inner)
		writeJSONString(b, k)
		b.WriteByte(':')
		if w.indent != "" {
			b.WriteByte(' ')
		}
		b.WriteString(cell.String())
	}
	if !first {
		w.newline(b, prefix)
	}
	b.WriteByte('}')
	return nil
}

func (w *jsonWriter) newline(b *strings.Builder, prefix string) {
	if w.indent == "" {
		return
	}
	b.WriteByte('\n')
	b.WriteString(prefix)
}

func writeJSONString(b *strings.Builder, s string) {
	enc, err := json.Marshal(s)
	if err != nil {
		b.WriteString(strconv.Quote(s))
		return
	}
	b.Write(enc)
}
