package scopetimer

import (
	"reflect"
	"runtime"
	"strings"
)

// ProfileFunc wraps fn so that each call runs inside a scope of l. The wrapper
// has exactly the type of fn and can replace it anywhere. An empty name
// defaults to the function's own name (see [FuncName]).
//
// While timing is disabled fn itself is returned, unwrapped. The wrapper must
// be called on the goroutine owning l.
//
// ProfileFunc panics if fn is not a function.
func ProfileFunc[F any](l *Local, name string, fn F) F {
	if !enabled.Load() {
		return fn
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic("scopetimer: ProfileFunc requires a function, got " + v.Kind().String())
	}
	if v.IsNil() {
		return fn
	}
	if name == "" {
		name = FuncName(fn)
	}

	// common shapes avoid the reflection call path
	switch f := any(fn).(type) {
	case func():
		w := func() {
			defer l.Profile(name).End()
			f()
		}
		return any(w).(F)
	case func() error:
		w := func() error {
			return l.Time(name, f)
		}
		return any(w).(F)
	}

	t := v.Type()
	w := reflect.MakeFunc(t, func(args []reflect.Value) []reflect.Value {
		defer l.Profile(name).End()
		if t.IsVariadic() {
			return v.CallSlice(args)
		}
		return v.Call(args)
	})
	return w.Interface().(F)
}

// FuncName returns the unqualified name of the function fn, e.g. "parse" for
// a package level function, "(*Decoder).Decode" for a method value or
// "TestX.func1" for a closure. It returns "" if fn is not a function.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}

	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}

	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
