// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"unicode/utf8"
)

var nilerr error
var errtype reflect.Type = reflect.TypeOf(&nilerr).Elem()

// Small optimization: cache the context type instead of repeteadly calling reflect.Typeof
var contextType reflect.Type = reflect.TypeOf(Context{})

// should the context be passed to the method?
func requiresContext(methodType reflect.Type) bool {
	//if the method doesn't take arguments, no
	if methodType.NumIn() == 0 {
		return false
	}

	//if the first argument is not a pointer, no
	a0 := methodType.In(0)
	if a0.Kind() != reflect.Pointer {
		return false
	}
	//if the first argument is a context, yes
	return a0.Elem() == contextType
}

// Invoke calls method on instance with its parameters bound by name from
// data. Nothing is executed unless the method exists, is public and concrete,
// and takes all its parameters by value.
//
// A parameter missing from data takes its declared default, or the zero
// value when it has none. A parameter present in data takes the stored value
// even when that value is nil.
func Invoke(instance any, method string, data DataSource) error {
	var ctx *Context
	if holder, ok := instance.(interface{ Context() *Context }); ok {
		ctx = holder.Context()
	}
	return Describe(instance).invoke(method, data, ctx)
}

func (d *Descriptor) invoke(name string, data DataSource, ctx *Context) error {
	m, ok := d.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: component '%s' has no method '%s'", ErrNoSuchMethod, d.Type, name)
	}
	if !m.Public || m.Abstract {
		return fmt.Errorf("%w: you are not authorized to call %s::%s", ErrAccessDenied, d.Type, m.Name)
	}
	args, err := m.bind(data, ctx)
	if err != nil {
		return err
	}
	return m.call(args, ctx)
}

func (m *Method) bind(data DataSource, ctx *Context) ([]reflect.Value, error) {
	if !m.fn.IsValid() {
		return nil, m.err
	}
	t := m.fn.Type()
	offset := 0
	if requiresContext(t) {
		offset = 1
	}
	for i := offset; i < t.NumIn(); i++ {
		if t.In(i).Kind() == reflect.Pointer {
			return nil, fmt.Errorf("%w: %s cannot be passed by reference", ErrUnsupportedParameter, m.paramName(i-offset))
		}
	}
	if m.err != nil {
		return nil, m.err
	}

	args := make([]reflect.Value, t.NumIn())
	if offset == 1 {
		args[0] = reflect.ValueOf(ctx)
	}
	for i, p := range m.Params {
		var value any
		var found bool
		if data != nil {
			value, found = data.Lookup(p.Name)
		}
		if !found && p.HasDefault {
			value = p.DefaultValue
		}
		arg, err := convertValue(value, t.In(i+offset))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, p.Name, err)
		}
		args[i+offset] = arg
	}
	return args, nil
}

func (m *Method) paramName(i int) string {
	if i < len(m.Params) {
		return m.Params[i].Name
	}
	return fmt.Sprintf("parameter %d of %s", i, m.Name)
}

// Call the bound method. A trailing error result is returned; a leading
// non-error result is written to the context the way handler return values
// are.
func (m *Method) call(args []reflect.Value, ctx *Context) error {
	t := m.fn.Type()
	var ret []reflect.Value
	if t.IsVariadic() {
		// the trailing argument is already bound as a slice
		ret = m.fn.CallSlice(args)
	} else {
		ret = m.fn.Call(args)
	}
	if len(ret) == 0 {
		return nil
	}
	if t.Out(len(ret) - 1).Implements(errtype) {
		if err := value2error(ret[len(ret)-1]); err != nil {
			return err
		}
		ret = ret[:len(ret)-1]
	}
	if len(ret) == 0 || ctx == nil {
		return nil
	}
	if i := ret[0].Interface(); i != nil {
		return ctx.writeAnything(i)
	}
	return nil
}

// convert a value back to the original error interface. panics if value is not
// nil and also does not implement error. A typed nil pointer is no error.
func value2error(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	i := v.Interface()
	if i == nil {
		return nil
	}
	return i.(error)
}

// convertValue adapts a data source value to the parameter type t. nil binds
// the zero value.
func convertValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	switch typed := v.(type) {
	case string:
		return parseValue(typed, t)
	case []string:
		if t.Kind() == reflect.Slice {
			out := reflect.MakeSlice(t, len(typed), len(typed))
			for i, s := range typed {
				item, err := parseValue(s, t.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				out.Index(i).Set(item)
			}
			return out, nil
		}
		// a repeated query key bound to a scalar takes the first value
		if len(typed) > 0 {
			return parseValue(typed[0], t)
		}
		return reflect.Zero(t), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(t)
	if err = json.Unmarshal(data, out.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot convert %T to %s: %w", v, t, err)
	}
	return out.Elem(), nil
}

// parseValue converts the string form of an argument: string kinds as is,
// then JSON (numbers, booleans, objects), then encoding.TextUnmarshaler.
func parseValue(s string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.String {
		out := reflect.New(t).Elem()
		out.SetString(s)
		return out, nil
	}
	raw := []byte(s)
	out := reflect.New(t)
	if json.Valid(raw) {
		if err := json.Unmarshal(raw, out.Interface()); err == nil {
			return out.Elem(), nil
		}
	}
	if unmarshaler, ok := out.Interface().(encoding.TextUnmarshaler); ok && utf8.Valid(raw) {
		if err := unmarshaler.UnmarshalText(raw); err != nil {
			return reflect.Value{}, fmt.Errorf("'%s' is not a valid %s: %w", s, t, err)
		}
		return out.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("'%s' is not a valid %s", s, t)
}
