// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Style is a chain of SGR attributes. Methods return a new Style and never
// modify the receiver, so styles can be shared and extended.
//
//	warn := tui.Styled().Yellow().Bold()
//	fmt.Println(warn.Sprint("careful"))
type Style struct {
	attrs    []color.Attribute
	disabled bool
}

// Styled returns an empty enabled Style.
func Styled() Style { return Style{} }

// Disabled returns a copy of s that renders text unchanged.
func (s Style) Disabled() Style {
	return Style{attrs: s.attrs, disabled: true}
}

// closers maps each opening attribute to the one that turns it off.
var closers = map[color.Attribute]color.Attribute{
	color.Reset:        color.Reset,
	color.Bold:         22,
	color.Faint:        22,
	color.Italic:       23,
	color.Underline:    24,
	color.ReverseVideo: 27,
	color.Concealed:    28,
	color.CrossedOut:   29,
}

func closerOf(a color.Attribute) color.Attribute {
	if c, ok := closers[a]; ok {
		return c
	}
	if a >= color.BgBlack && a <= color.BgWhite {
		return 49
	}
	return 39
}

func sgr(a color.Attribute) string {
	return "\x1b[" + strconv.Itoa(int(a)) + "m"
}

// With returns s extended by a. Attributes already in s are not repeated.
func (s Style) With(a color.Attribute) Style {
	if slices.Contains(s.attrs, a) {
		return s
	}
	return Style{attrs: append(slices.Clip(s.attrs), a), disabled: s.disabled}
}

func (s Style) Reset() Style         { return s.With(color.Reset) }
func (s Style) Bold() Style          { return s.With(color.Bold) }
func (s Style) Dim() Style           { return s.With(color.Faint) }
func (s Style) Italic() Style        { return s.With(color.Italic) }
func (s Style) Underline() Style     { return s.With(color.Underline) }
func (s Style) Inverse() Style       { return s.With(color.ReverseVideo) }
func (s Style) Hidden() Style        { return s.With(color.Concealed) }
func (s Style) Strikethrough() Style { return s.With(color.CrossedOut) }

func (s Style) Black() Style   { return s.With(color.FgBlack) }
func (s Style) Red() Style     { return s.With(color.FgRed) }
func (s Style) Green() Style   { return s.With(color.FgGreen) }
func (s Style) Yellow() Style  { return s.With(color.FgYellow) }
func (s Style) Blue() Style    { return s.With(color.FgBlue) }
func (s Style) Magenta() Style { return s.With(color.FgMagenta) }
func (s Style) Cyan() Style    { return s.With(color.FgCyan) }
func (s Style) White() Style   { return s.With(color.FgWhite) }
func (s Style) Gray() Style    { return s.With(color.FgHiBlack) }
func (s Style) Grey() Style    { return s.Gray() }

func (s Style) BgBlack() Style   { return s.With(color.BgBlack) }
func (s Style) BgRed() Style     { return s.With(color.BgRed) }
func (s Style) BgGreen() Style   { return s.With(color.BgGreen) }
func (s Style) BgYellow() Style  { return s.With(color.BgYellow) }
func (s Style) BgBlue() Style    { return s.With(color.BgBlue) }
func (s Style) BgMagenta() Style { return s.With(color.BgMagenta) }
func (s Style) BgCyan() Style    { return s.With(color.BgCyan) }
func (s Style) BgWhite() Style   { return s.With(color.BgWhite) }

// Sprint formats a like fmt.Sprint and wraps the result in the style. A
// close sequence already in the text is followed by the matching open
// sequence again, so styled fragments can be nested.
func (s Style) Sprint(a ...any) string {
	return s.render(fmt.Sprint(a...))
}

// Sprintf is Sprint with a format.
func (s Style) Sprintf(format string, a ...any) string {
	return s.render(fmt.Sprintf(format, a...))
}

func (s Style) render(text string) string {
	if s.disabled || len(s.attrs) == 0 {
		return text
	}
	var beg, end strings.Builder
	for _, a := range s.attrs {
		on, off := sgr(a), sgr(closerOf(a))
		beg.WriteString(on)
		end.WriteString(off)
		if strings.Contains(text, off) {
			text = strings.ReplaceAll(text, off, off+on)
		}
	}
	return beg.String() + text + end.String()
}
