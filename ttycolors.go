// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

// escape codes, empty when stdout is not a terminal
var ttyCodes struct {
	green string
	white string
	red   string
	reset string
}

func init() {
	ttyCodes.green = ttyBold("32")
	ttyCodes.white = ttyBold("37")
	ttyCodes.red = ttyBold("31")
	ttyCodes.reset = ttyEscape("0")
}

func ttyBold(code string) string {
	return ttyEscape("1;" + code)
}

func ttyEscape(code string) string {
	if terminal.IsTerminal(int(os.Stdout.Fd())) {
		return "\x1b[" + code + "m"
	}
	return ""
}
