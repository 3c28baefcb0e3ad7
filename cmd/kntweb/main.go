// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import "github.com/knt/web/cli"

func main() {
	cli.Main("kntweb")
}
