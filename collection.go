// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// DataSource is the key/value bag a component method is bound from. Lookup
// reports whether the key is present at all, so that a stored nil can be told
// apart from a missing entry.
type DataSource interface {
	Get(key string, def any) any
	Lookup(key string) (any, bool)
}

// Collection is an insertion ordered DataSource. Request parameters, posted
// form fields and websocket payloads are all exposed to components as
// collections.
type Collection struct {
	keys   []string
	values map[string]any
}

func NewCollection(data map[string]any) *Collection {
	c := &Collection{values: make(map[string]any, len(data))}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	// map iteration order is random, keep numeric keys in numeric order
	sortKeys(keys)
	for _, k := range keys {
		c.Set(k, data[k])
	}
	return c
}

// Build a collection from parsed query or form values. Keys with exactly one
// value are stored as a string, others as a []string.
func NewCollectionFromValues(values url.Values) *Collection {
	c := &Collection{values: make(map[string]any, len(values))}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sortKeys(keys)
	for _, k := range keys {
		v := values[k]
		if len(v) == 1 {
			c.Set(k, v[0])
		} else {
			c.Set(k, append([]string(nil), v...))
		}
	}
	return c
}

func (c *Collection) Get(key string, def any) any {
	if v, ok := c.Lookup(key); ok {
		return v
	}
	return def
}

// Lookup returns the value stored under key. Keys of the form
// name[a][b]... that are not stored verbatim descend into nested maps and
// slices; any missing step makes the whole key absent.
func (c *Collection) Lookup(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	if v, ok := c.values[key]; ok {
		return v, true
	}
	name, path, ok := splitDeepKey(key)
	if !ok {
		return nil, false
	}
	v, ok := c.values[name]
	if !ok {
		return nil, false
	}
	for _, index := range path {
		if v, ok = child(v, index); !ok {
			return nil, false
		}
	}
	return v, true
}

func (c *Collection) Set(key string, value any) *Collection {
	if c.values == nil {
		c.values = map[string]any{}
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
	return c
}

// Add stores value under the next free integer key and returns that key.
func (c *Collection) Add(value any) string {
	next := 0
	for _, k := range c.keys {
		if i, err := strconv.Atoi(k); err == nil && i >= next {
			next = i + 1
		}
	}
	key := strconv.Itoa(next)
	c.Set(key, value)
	return key
}

func (c *Collection) Delete(key string) {
	if _, ok := c.values[key]; !ok {
		return
	}
	delete(c.values, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

func (c *Collection) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Range calls fn for every entry in insertion order until fn returns false.
func (c *Collection) Range(fn func(key string, value any) bool) {
	if c == nil {
		return
	}
	for _, k := range c.keys {
		if !fn(k, c.values[k]) {
			return
		}
	}
}

// Merge returns a new collection holding the entries of c overridden by the
// entries of other.
func (c *Collection) Merge(other *Collection) *Collection {
	merged := &Collection{values: make(map[string]any, c.Len()+other.Len())}
	c.Range(func(k string, v any) bool {
		merged.Set(k, v)
		return true
	})
	other.Range(func(k string, v any) bool {
		merged.Set(k, v)
		return true
	})
	return merged
}

func (c *Collection) Map() map[string]any {
	result := make(map[string]any, c.Len())
	c.Range(func(k string, v any) bool {
		result[k] = v
		return true
	})
	return result
}

// Get a parameter as a string. Panics if not found. Panic object is a WebError
// with status 400.
func (c *Collection) GetString(key string) string {
	v, ok := c.Lookup(key)
	if !ok {
		panic(WebError{400, "Required parameter " + key + " missing"})
	}
	switch typed := v.(type) {
	case string:
		return typed
	case []string:
		if len(typed) > 0 {
			return typed[0]
		}
		return ""
	case nil:
		return ""
	}
	// scalars decoded from JSON, YAML or set by code
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	}
	out, err := convertValue(v, reflect.TypeOf(""))
	if err != nil {
		panic(WebError{400, "Illegal string parameter " + key})
	}
	return out.String()
}

// Get a parameter as an integer value. Panics if not found or not a legal
// integer. Panic object is a WebError with status 400.
func (c *Collection) GetInt(key string) int {
	i, err := strconv.Atoi(c.GetString(key))
	if err != nil {
		panic(WebError{400, "Illegal integer parameter " + key})
	}
	return i
}

// split "name[a]['b']" into name and [a b]
func splitDeepKey(key string) (string, []string, bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", nil, false
	}
	name, rest := key[:open], key[open:]
	var path []string
	for len(rest) > 0 {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}
		index := strings.TrimSpace(rest[1:end])
		if len(index) >= 2 && (index[0] == '\'' || index[0] == '"') && index[len(index)-1] == index[0] {
			index = index[1 : len(index)-1]
		}
		path = append(path, index)
		rest = rest[end+1:]
	}
	return name, path, true
}

func child(v any, index string) (any, bool) {
	switch typed := v.(type) {
	case *Collection:
		return typed.Lookup(index)
	case map[string]any:
		item, ok := typed[index]
		return item, ok
	case []any:
		i, err := strconv.Atoi(index)
		if err != nil || i < 0 || i >= len(typed) {
			return nil, false
		}
		return typed[i], true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		key, err := convertValue(index, rv.Type().Key())
		if err != nil {
			return nil, false
		}
		item := rv.MapIndex(key)
		if !item.IsValid() {
			return nil, false
		}
		return item.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(index)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

// numeric keys first in numeric order, then the rest lexically
func sortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ai, aerr := strconv.Atoi(keys[i])
		bi, berr := strconv.Atoi(keys[j])
		switch {
		case aerr == nil && berr == nil:
			return ai < bi
		case aerr == nil:
			return true
		case berr == nil:
			return false
		}
		return keys[i] < keys[j]
	})
}
