// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yeetrun/toolbelt/pkg/konsole"
	"github.com/yeetrun/toolbelt/pkg/logger"
	"github.com/yeetrun/toolbelt/pkg/tui"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(tui.Colorizer{Enabled: true}, konsole.WithOutput(&buf))

	l.Info("info")
	l.Err("err")
	l.Good("good")
	l.Warn("warn")

	out := buf.String()
	for _, want := range []string{
		"'\x1b[34minfo\x1b[39m'",
		"'\x1b[31merr\x1b[39m'",
		"'\x1b[32mgood\x1b[39m'",
		"'\x1b[33mwarn\x1b[39m'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, " Toolbelt master:"); got != 4 {
		t.Errorf("got %d headers, want 4:\n%s", got, out)
	}
}

func TestLogWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(tui.Colorizer{}, konsole.WithOutput(&buf))

	l.Info(struct {
		Name string
		Pct  string
	}{"disk", "90%"})

	if !strings.Contains(buf.String(), "'{Name:disk Pct:90%}'") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("output has escape codes:\n%s", buf.String())
	}
}

func TestPercentInMessage(t *testing.T) {
	tests := []struct {
		msg  any
		want string
	}{
		{"50% done", "'50% done'"},
		{"100%% sure", "'100%% sure'"},
		{struct{ Pct string }{"5%"}, "'{Pct:5%}'"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l := logger.New(tui.Colorizer{}, konsole.WithOutput(&buf))
		l.Good(tt.msg)
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("Good(%v) output missing %q:\n%s", tt.msg, tt.want, buf.String())
		}
	}
}

func TestTraceSkipsLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(tui.Colorizer{}, konsole.WithOutput(&buf))
	l.Warn("where")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Errorf("trace does not point at the caller:\n%s", buf.String())
	}
}

func TestCustomStyle(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(tui.Colorizer{Enabled: true}, konsole.WithOutput(&buf))
	var seen []konsole.Level
	l.Konsole().On(konsole.MessageEvent, func(ev konsole.Event) {
		seen = append(seen, ev.Level)
	})
	l.Log("x", tui.Styled().Bold())
	if !strings.Contains(buf.String(), "'\x1b[1mx\x1b[22m'") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if len(seen) != 1 || seen[0] != konsole.LevelLog {
		t.Errorf("levels = %v, want [log]", seen)
	}
}
