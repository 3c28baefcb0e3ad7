// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	assert.Nil(t, registry.New("Home"))

	registry.Register("Home", func() Instance { return &Home{} })
	registry.Register("Blog.Index", func() Instance { return &Index{} })
	assert.Equal(t, []string{"Blog.Index", "Home"}, registry.Names())

	first, second := registry.New("Home"), registry.New("Home")
	assert.IsType(t, &Home{}, first)
	// a fresh component per request
	assert.NotSame(t, first, second)

	registry.Register("Home", func() Instance { return &Index{} })
	assert.IsType(t, &Index{}, registry.New("Home"))

	_, ok := registry.Lookup("Missing")
	assert.False(t, ok)
}
