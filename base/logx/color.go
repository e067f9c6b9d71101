// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logx

import (
	"os"

	"github.com/muesli/termenv"
)

// Output is the terminal that colored messages are rendered for.
// Colors are dropped automatically when it is not a terminal.
var Output = termenv.NewOutput(os.Stdout)

// SuccessColor returns s styled as a success message.
func SuccessColor(s string) string {
	return Output.String(s).Foreground(termenv.ANSIGreen).Bold().String()
}

// ErrorColor returns s styled as an error message.
func ErrorColor(s string) string {
	return Output.String(s).Foreground(termenv.ANSIRed).Bold().String()
}

// WarnColor returns s styled as a warning message.
func WarnColor(s string) string {
	return Output.String(s).Foreground(termenv.ANSIYellow).String()
}

// CmdColor returns s styled as a command or file name.
func CmdColor(s string) string {
	return Output.String(s).Foreground(termenv.ANSICyan).String()
}
