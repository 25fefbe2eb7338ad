// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import "os"

// Enabled reports whether the environment allows colored output. It is
// false when NO_COLOR or NODE_DISABLE_COLORS is set, TERM is "dumb" or
// FORCE_COLOR is "0".
func Enabled(lookup func(string) (string, bool)) bool {
	if v, ok := lookup("NO_COLOR"); ok && v != "" {
		return false
	}
	if v, ok := lookup("NODE_DISABLE_COLORS"); ok && v != "" {
		return false
	}
	if v, _ := lookup("TERM"); v == "dumb" {
		return false
	}
	if v, _ := lookup("FORCE_COLOR"); v == "0" {
		return false
	}
	return true
}

// Colorizer decides whether styled output is rendered.
type Colorizer struct {
	Enabled bool
}

// NewColorizer returns a Colorizer that is enabled if enabled is set and
// the process environment allows color.
func NewColorizer(enabled bool) Colorizer {
	if !enabled || !Enabled(os.LookupEnv) {
		return Colorizer{}
	}
	return Colorizer{Enabled: true}
}

// Style returns an empty Style that renders only if c is enabled.
func (c Colorizer) Style() Style {
	return Style{disabled: !c.Enabled}
}
