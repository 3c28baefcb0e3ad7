// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Parameter describes one named argument of a component method.
type Parameter struct {
	Name         string
	HasDefault   bool
	DefaultValue any
}

func Param(name string) Parameter {
	return Parameter{Name: name}
}

// Default returns a copy of p bound to value when the data source lacks p.
func (p Parameter) Default(value any) Parameter {
	p.HasDefault = true
	p.DefaultValue = value
	return p
}

// Method is the callable surface of one component method.
type Method struct {
	Name     string
	Params   []Parameter
	Public   bool
	Abstract bool
	fn       reflect.Value
	// position in the component's method set, -1 when fn is not one of its methods
	index int
	// declaration problem, reported when the method is invoked
	err error
}

// Descriptor lists the methods a component exposes. Components declare their
// methods in Describe; exported methods left out are discovered by
// reflection.
type Descriptor struct {
	Type    string
	methods map[string]*Method
	names   []string
	// lower cased name to the first matching name in sort order
	folded map[string]string
}

// Describer is implemented by components that declare their methods.
type Describer interface {
	Describe(d *Descriptor)
}

func newDescriptor(typeName string) *Descriptor {
	return &Descriptor{Type: typeName, methods: map[string]*Method{}, folded: map[string]string{}}
}

// Public declares a callable method. fn is usually a method value such as
// h.Test; a leading *Context argument is supplied by the binder and is not
// listed in params.
func (d *Descriptor) Public(name string, fn any, params ...Parameter) {
	d.declare(name, fn, true, params)
}

// Private declares a method that exists but may not be invoked by a request.
func (d *Descriptor) Private(name string, fn any, params ...Parameter) {
	d.declare(name, fn, false, params)
}

// Abstract declares a method without implementation. Invoking it is denied.
func (d *Descriptor) Abstract(name string, params ...Parameter) {
	d.add(&Method{Name: name, Params: params, Public: true, Abstract: true, index: -1})
}

func (d *Descriptor) declare(name string, fn any, public bool, params []Parameter) {
	m := &Method{Name: name, Params: params, Public: public, index: -1}
	fv := reflect.ValueOf(fn)
	switch {
	case fn == nil || (fv.Kind() == reflect.Func && fv.IsNil()):
		m.Abstract = true
	case fv.Kind() != reflect.Func:
		m.err = fmt.Errorf("%w: %s::%s is declared with a %T, not a function", ErrUnsupportedParameter, d.Type, name, fn)
	default:
		m.fn = fv
		if n := countArgs(fv.Type()); n != len(params) {
			m.err = fmt.Errorf("%w: %s::%s declares %d parameters but takes %d", ErrUnsupportedParameter, d.Type, name, len(params), n)
		}
	}
	d.add(m)
}

func (d *Descriptor) add(m *Method) {
	if _, ok := d.methods[m.Name]; !ok {
		d.names = append(d.names, m.Name)
	}
	d.methods[m.Name] = m
	lower := strings.ToLower(m.Name)
	if name, ok := d.folded[lower]; !ok || m.Name < name {
		d.folded[lower] = m.Name
	}
}

// Lookup finds a method by its declared name, falling back to a case
// insensitive match so that "/Home/Index" reaches "index".
func (d *Descriptor) Lookup(name string) (*Method, bool) {
	if m, ok := d.methods[name]; ok {
		return m, true
	}
	if folded, ok := d.folded[strings.ToLower(name)]; ok {
		return d.methods[folded], true
	}
	return nil, false
}

// Methods returns the declared and discovered methods in declaration order.
func (d *Descriptor) Methods() []*Method {
	result := make([]*Method, 0, len(d.names))
	for _, name := range d.names {
		result = append(result, d.methods[name])
	}
	return result
}

// Methods every component inherits from the Component base. They are never
// reachable from a request unless a component declares them itself.
var baseMethods = func() map[string]bool {
	result := map[string]bool{"Describe": true}
	t := reflect.TypeOf(&Component{})
	for i := 0; i < t.NumMethod(); i++ {
		result[t.Method(i).Name] = true
	}
	return result
}()

// Descriptors keyed by component type. Only types whose declared functions
// are all their own methods are kept, so every instance can be rebound.
var descriptors sync.Map

// Describe returns the descriptor of instance: the methods it declares
// through Describer followed by its other exported methods. The descriptor
// is built once per type and bound to instance.
func Describe(instance any) *Descriptor {
	v := reflect.ValueOf(instance)
	if cached, ok := descriptors.Load(v.Type()); ok {
		return cached.(*Descriptor).bind(v)
	}
	d := describe(instance, v)
	if !d.rebindable() {
		return d
	}
	descriptors.Store(v.Type(), d)
	return d.bind(v)
}

func describe(instance any, v reflect.Value) *Descriptor {
	t := v.Type()
	typeName := t.String()
	if t.Kind() == reflect.Pointer {
		typeName = t.Elem().String()
	}
	d := newDescriptor(typeName)
	if describer, ok := instance.(Describer); ok {
		describer.Describe(d)
		for _, m := range d.methods {
			if m.fn.IsValid() {
				m.index = methodIndex(v, m)
			}
		}
	}
	for i := 0; i < t.NumMethod(); i++ {
		name := t.Method(i).Name
		if baseMethods[name] {
			continue
		}
		key := lowerFirst(name)
		if _, ok := d.Lookup(key); ok {
			continue
		}
		fv := v.Method(i)
		m := &Method{Name: key, Public: true, fn: fv, index: i}
		if n := countArgs(fv.Type()); n > 0 {
			m.err = fmt.Errorf("%w: %s::%s has %d parameters without declared names", ErrUnsupportedParameter, typeName, key, n)
		}
		d.add(m)
	}
	return d
}

// methodIndex finds the method of v a declared function stands for: same
// name ignoring case and same signature.
func methodIndex(v reflect.Value, m *Method) int {
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		if strings.EqualFold(t.Method(i).Name, m.Name) && v.Method(i).Type() == m.fn.Type() {
			return i
		}
	}
	return -1
}

func (d *Descriptor) rebindable() bool {
	for _, m := range d.methods {
		if m.fn.IsValid() && m.index < 0 {
			return false
		}
	}
	return true
}

// bind copies d with every method taken from v.
func (d *Descriptor) bind(v reflect.Value) *Descriptor {
	result := &Descriptor{
		Type:    d.Type,
		methods: make(map[string]*Method, len(d.methods)),
		names:   append([]string(nil), d.names...),
		folded:  make(map[string]string, len(d.folded)),
	}
	for name, m := range d.methods {
		bound := *m
		if m.index >= 0 {
			bound.fn = v.Method(m.index)
		}
		result.methods[name] = &bound
	}
	for lower, name := range d.folded {
		result.folded[lower] = name
	}
	return result
}

// number of arguments bound from data, the injected *Context excluded
func countArgs(t reflect.Type) int {
	if requiresContext(t) {
		return t.NumIn() - 1
	}
	return t.NumIn()
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
