// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logger prints colored messages through a konsole.
package logger

import (
	"fmt"
	"reflect"

	"github.com/yeetrun/toolbelt/pkg/konsole"
	"github.com/yeetrun/toolbelt/pkg/tui"
)

// DefaultLabel labels the konsole created by New.
const DefaultLabel = "Toolbelt"

type Logger struct {
	k    *konsole.Konsole
	base tui.Style
}

type marker struct{}

var pkgPath = reflect.TypeFor[marker]().PkgPath()

// New returns a Logger writing through a new konsole with the default
// listener. Colors are used when c is enabled.
func New(c tui.Colorizer, opts ...konsole.Option) *Logger {
	opts = append([]konsole.Option{konsole.WithHelpers(pkgPath)}, opts...)
	k := konsole.New(DefaultLabel, opts...)
	k.AddDefaultListener()
	return &Logger{k: k, base: c.Style()}
}

// Konsole returns the underlying konsole.
func (l *Logger) Konsole() *konsole.Konsole { return l.k }

// Log prints msg, formatted with %+v, in the given style.
func (l *Logger) Log(msg any, style tui.Style) {
	l.k.Log("%s", style.Sprint(fmt.Sprintf("%+v", msg)))
}

func (l *Logger) Info(msg any) { l.Log(msg, l.base.Blue()) }
func (l *Logger) Err(msg any)  { l.Log(msg, l.base.Red()) }
func (l *Logger) Good(msg any) { l.Log(msg, l.base.Green()) }
func (l *Logger) Warn(msg any) { l.Log(msg, l.base.Yellow()) }
