package builtins

import (
	"math"
	"time"

	"github.com/pawsong/js-interp/runtime"
)

func registerDate(r *runtime.Realm) {
	proto := runtime.NewRawObject(r.ObjectProto)
	proto.Class = "Date"
	r.DateProto = proto
	ctor := newCtor(r, "Date", 7, dateConstructor, proto)
	r.DateCtor = ctor

	setMethod(r, ctor, "now", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.NewNumber(runtime.TimeToMS(time.Now())), nil
	})

	setMethod(r, ctor, "parse", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		t, ok := parseDate(r.ToString(argAt(r, args, 0)))
		if !ok {
			return r.NaN, nil
		}
		return r.NewNumber(runtime.TimeToMS(t)), nil
	})

	setMethod(r, ctor, "UTC", 7, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		t, ok := dateFromParts(r, args, time.UTC)
		if !ok {
			return r.NaN, nil
		}
		return r.NewNumber(runtime.TimeToMS(t)), nil
	})

	setMethod(r, proto, "getTime", 0, dateValueOf)
	setMethod(r, proto, "valueOf", 0, dateValueOf)

	setMethod(r, proto, "toString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		t, valid, err := dateThis(r, this)
		if err != nil {
			return nil, err
		}
		if !valid {
			return r.NewString("Invalid Date"), nil
		}
		return r.NewString(runtime.FormatDate(t)), nil
	})

	setMethod(r, proto, "toISOString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		t, valid, err := dateThis(r, this)
		if err != nil {
			return nil, err
		}
		if !valid {
			return nil, r.RangeError("Invalid time value")
		}
		return r.NewString(t.UTC().Format("2006-01-02T15:04:05.000Z")), nil
	})

	setMethod(r, proto, "toJSON", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		t, valid, err := dateThis(r, this)
		if err != nil {
			return nil, err
		}
		if !valid {
			return r.Null, nil
		}
		return r.NewString(t.UTC().Format("2006-01-02T15:04:05.000Z")), nil
	})

	setMethod(r, proto, "toUTCString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		t, valid, err := dateThis(r, this)
		if err != nil {
			return nil, err
		}
		if !valid {
			return r.NewString("Invalid Date"), nil
		}
		return r.NewString(t.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")), nil
	})

	setMethod(r, proto, "toDateString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		t, valid, err := dateThis(r, this)
		if err != nil {
			return nil, err
		}
		if !valid {
			return r.NewString("Invalid Date"), nil
		}
		return r.NewString(t.Format("Mon Jan 02 2006")), nil
	})

	setMethod(r, proto, "toTimeString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		t, valid, err := dateThis(r, this)
		if err != nil {
			return nil, err
		}
		if !valid {
			return r.NewString("Invalid Date"), nil
		}
		return r.NewString(t.Format("15:04:05 GMT-0700 (MST)")), nil
	})

	setMethod(r, proto, "toLocaleString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		t, valid, err := dateThis(r, this)
		if err != nil {
			return nil, err
		}
		if !valid {
			return r.NewString("Invalid Date"), nil
		}
		return r.NewString(t.Format("1/2/2006, 3:04:05 PM")), nil
	})

	setMethod(r, proto, "toLocaleDateString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		t, valid, err := dateThis(r, this)
		if err != nil {
			return nil, err
		}
		if !valid {
			return r.NewString("Invalid Date"), nil
		}
		return r.NewString(t.Format("1/2/2006")), nil
	})

	setMethod(r, proto, "toLocaleTimeString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		t, valid, err := dateThis(r, this)
		if err != nil {
			return nil, err
		}
		if !valid {
			return r.NewString("Invalid Date"), nil
		}
		return r.NewString(t.Format("3:04:05 PM")), nil
	})

	getter := func(name string, fn func(t time.Time) float64) {
		setMethod(r, proto, name, 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			t, valid, err := dateThis(r, this)
			if err != nil {
				return nil, err
			}
			if !valid {
				return r.NaN, nil
			}
			return r.NewNumber(fn(t)), nil
		})
	}
	getter("getFullYear", func(t time.Time) float64 { return float64(t.Year()) })
	getter("getMonth", func(t time.Time) float64 { return float64(t.Month() - 1) })
	getter("getDate", func(t time.Time) float64 { return float64(t.Day()) })
	getter("getDay", func(t time.Time) float64 { return float64(t.Weekday()) })
	getter("getHours", func(t time.Time) float64 { return float64(t.Hour()) })
	getter("getMinutes", func(t time.Time) float64 { return float64(t.Minute()) })
	getter("getSeconds", func(t time.Time) float64 { return float64(t.Second()) })
	getter("getMilliseconds", func(t time.Time) float64 { return float64(t.Nanosecond() / 1e6) })
	getter("getUTCFullYear", func(t time.Time) float64 { return float64(t.UTC().Year()) })
	getter("getUTCMonth", func(t time.Time) float64 { return float64(t.UTC().Month() - 1) })
	getter("getUTCDate", func(t time.Time) float64 { return float64(t.UTC().Day()) })
	getter("getUTCDay", func(t time.Time) float64 { return float64(t.UTC().Weekday()) })
	getter("getUTCHours", func(t time.Time) float64 { return float64(t.UTC().Hour()) })
	getter("getUTCMinutes", func(t time.Time) float64 { return float64(t.UTC().Minute()) })
	getter("getUTCSeconds", func(t time.Time) float64 { return float64(t.UTC().Second()) })
	getter("getUTCMilliseconds", func(t time.Time) float64 { return float64(t.UTC().Nanosecond() / 1e6) })
	getter("getTimezoneOffset", func(t time.Time) float64 {
		_, offset := t.Zone()
		return float64(-offset / 60)
	})

	setMethod(r, proto, "setTime", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, ok := this.(*runtime.Object)
		if !ok || obj.Class != "Date" {
			return nil, r.TypeError("Date.prototype.setTime called on incompatible receiver")
		}
		ms := r.ToNumber(argAt(r, args, 0))
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			obj.Data = math.NaN()
			return r.NaN, nil
		}
		obj.Data = runtime.MSToTime(ms)
		return r.NewNumber(ms), nil
	})

	setter := func(name string, apply func(t time.Time, r *runtime.Realm, args []runtime.Value) time.Time) {
		setMethod(r, proto, name, 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			obj, ok := this.(*runtime.Object)
			if !ok || obj.Class != "Date" {
				return nil, r.TypeError("Date.prototype.%s called on incompatible receiver", name)
			}
			t, valid, err := dateThis(r, this)
			if err != nil {
				return nil, err
			}
			if !valid {
				return r.NaN, nil
			}
			nt := apply(t, r, args)
			obj.Data = nt
			return r.NewNumber(runtime.TimeToMS(nt)), nil
		})
	}
	setter("setFullYear", func(t time.Time, r *runtime.Realm, args []runtime.Value) time.Time {
		y := r.ToInteger(argAt(r, args, 0))
		m := int(t.Month()) - 1
		if len(args) > 1 {
			m = r.ToInteger(args[1])
		}
		d := t.Day()
		if len(args) > 2 {
			d = r.ToInteger(args[2])
		}
		return time.Date(y, time.Month(m+1), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	})
	setter("setMonth", func(t time.Time, r *runtime.Realm, args []runtime.Value) time.Time {
		m := r.ToInteger(argAt(r, args, 0))
		d := t.Day()
		if len(args) > 1 {
			d = r.ToInteger(args[1])
		}
		return time.Date(t.Year(), time.Month(m+1), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	})
	setter("setDate", func(t time.Time, r *runtime.Realm, args []runtime.Value) time.Time {
		return time.Date(t.Year(), t.Month(), r.ToInteger(argAt(r, args, 0)), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	})
	setter("setHours", func(t time.Time, r *runtime.Realm, args []runtime.Value) time.Time {
		h := r.ToInteger(argAt(r, args, 0))
		mi := t.Minute()
		if len(args) > 1 {
			mi = r.ToInteger(args[1])
		}
		s := t.Second()
		if len(args) > 2 {
			s = r.ToInteger(args[2])
		}
		ns := t.Nanosecond()
		if len(args) > 3 {
			ns = r.ToInteger(args[3]) * 1e6
		}
		return time.Date(t.Year(), t.Month(), t.Day(), h, mi, s, ns, t.Location())
	})
	setter("setMinutes", func(t time.Time, r *runtime.Realm, args []runtime.Value) time.Time {
		mi := r.ToInteger(argAt(r, args, 0))
		s := t.Second()
		if len(args) > 1 {
			s = r.ToInteger(args[1])
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), mi, s, t.Nanosecond(), t.Location())
	})
	setter("setSeconds", func(t time.Time, r *runtime.Realm, args []runtime.Value) time.Time {
		s := r.ToInteger(argAt(r, args, 0))
		ns := t.Nanosecond()
		if len(args) > 1 {
			ns = r.ToInteger(args[1]) * 1e6
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), s, ns, t.Location())
	})
	setter("setMilliseconds", func(t time.Time, r *runtime.Realm, args []runtime.Value) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), r.ToInteger(argAt(r, args, 0))*1e6, t.Location())
	})
}

func dateValueOf(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	t, valid, err := dateThis(r, this)
	if err != nil {
		return nil, err
	}
	if !valid {
		return r.NaN, nil
	}
	return r.NewNumber(runtime.TimeToMS(t)), nil
}

func dateConstructor(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if !r.CalledAsConstructor {
		return r.NewString(runtime.FormatDate(time.Now())), nil
	}
	obj := this.(*runtime.Object)
	obj.Class = "Date"
	switch len(args) {
	case 0:
		obj.Data = time.Now()
	case 1:
		if p, ok := args[0].(*runtime.Primitive); ok && p.Kind == runtime.KindString {
			if t, ok := parseDate(p.Str); ok {
				obj.Data = t
			} else {
				obj.Data = math.NaN()
			}
			break
		}
		ms := r.ToNumber(args[0])
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			obj.Data = math.NaN()
		} else {
			obj.Data = runtime.MSToTime(ms)
		}
	default:
		if t, ok := dateFromParts(r, args, time.Local); ok {
			obj.Data = t
		} else {
			obj.Data = math.NaN()
		}
	}
	return obj, nil
}

func dateFromParts(r *runtime.Realm, args []runtime.Value, loc *time.Location) (time.Time, bool) {
	for _, a := range args {
		if math.IsNaN(r.ToNumber(a)) {
			return time.Time{}, false
		}
	}
	y := r.ToInteger(argAt(r, args, 0))
	if y >= 0 && y <= 99 {
		y += 1900
	}
	m := 0
	if len(args) > 1 {
		m = r.ToInteger(args[1])
	}
	d := 1
	if len(args) > 2 {
		d = r.ToInteger(args[2])
	}
	h, mi, s, ms := 0, 0, 0, 0
	if len(args) > 3 {
		h = r.ToInteger(args[3])
	}
	if len(args) > 4 {
		mi = r.ToInteger(args[4])
	}
	if len(args) > 5 {
		s = r.ToInteger(args[5])
	}
	if len(args) > 6 {
		ms = r.ToInteger(args[6])
	}
	return time.Date(y, time.Month(m+1), d, h, mi, s, ms*1e6, loc), true
}

func dateThis(r *runtime.Realm, this runtime.Value) (time.Time, bool, error) {
	obj, ok := this.(*runtime.Object)
	if !ok || obj.Class != "Date" {
		return time.Time{}, false, r.TypeError("Date.prototype method called on incompatible receiver")
	}
	t, ok := obj.Data.(time.Time)
	return t, ok, nil
}

var dateLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"Mon Jan 02 2006 15:04:05 GMT-0700 (MST)",
	"Mon Jan 02 2006",
	"Mon, 02 Jan 2006 15:04:05 GMT",
	"January 2, 2006",
	"Jan 2, 2006",
	"1/2/2006",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
