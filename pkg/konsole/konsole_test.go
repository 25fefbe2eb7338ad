// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package konsole_test

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/toolbelt/pkg/konsole"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func TestLevelsEmitEvents(t *testing.T) {
	k := konsole.New("levels")
	var got []string
	record := func(name string) konsole.Listener {
		return func(ev konsole.Event) {
			got = append(got, fmt.Sprintf("%s:%s:%v", name, ev.Level, ev.Args))
		}
	}
	k.On(konsole.MessageEvent, record("message"))
	k.On(string(konsole.LevelWarn), record("warn"))

	k.Log("a")
	k.Info("b", 1)
	k.Warn("c")
	k.Error("d")

	want := []string{
		"message:log:[a]",
		"message:info:[b 1]",
		"message:warn:[c]",
		"warn:warn:[c]",
		"message:error:[d]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestListenersIsACopy(t *testing.T) {
	k := konsole.New("copy")
	k.On(konsole.MessageEvent, func(konsole.Event) {})
	ls := k.Listeners(konsole.MessageEvent)
	ls[0] = nil
	if k.Listeners(konsole.MessageEvent)[0] == nil {
		t.Error("modifying Listeners result changed the konsole")
	}
	if n := len(k.Listeners("nothing")); n != 0 {
		t.Errorf("Listeners(nothing) has %d entries", n)
	}
}

func TestRelay(t *testing.T) {
	hub := konsole.New("hub")
	var from []string
	hub.On(konsole.MessageEvent, func(ev konsole.Event) {
		from = append(from, ev.Konsole.Label())
	})
	a, b := konsole.New("a"), konsole.New("b")
	hub.Relay(a, b)

	a.Log("x")
	b.Info("y")
	if diff := cmp.Diff([]string{"a", "b"}, from); diff != "" {
		t.Errorf("relayed events mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultListener(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(0, 0), step: 25 * time.Millisecond}
	k := konsole.New("default-listener", konsole.WithOutput(&buf), konsole.WithClock(clock.Now))
	k.AddDefaultListener()

	k.Info("hello %s", "world", 42)
	k.Warn("second")

	lines := strings.Split(buf.String(), "\n")
	if len(lines) != 5 {
		t.Fatalf("output has %d lines, want 5:\n%s", len(lines), buf.String())
	}
	header := regexp.MustCompile(`^ default-listener master:(\d+) (INFO|WARN) \+(\d+)ms \((.+):(\d+)\) $`)
	m := header.FindStringSubmatch(lines[0])
	if m == nil {
		t.Fatalf("header %q does not match %v", lines[0], header)
	}
	if m[1] != fmt.Sprint(os.Getpid()) {
		t.Errorf("pid = %s, want %d", m[1], os.Getpid())
	}
	if m[2] != "INFO" || m[3] != "0" {
		t.Errorf("level, diff = %s, %s; want INFO, 0", m[2], m[3])
	}
	if !strings.HasSuffix(m[4], "konsole_test.go") {
		t.Errorf("trace file = %s, want konsole_test.go", m[4])
	}
	if lines[1] != "'hello world 42'" {
		t.Errorf("message = %s, want 'hello world 42'", lines[1])
	}

	m = header.FindStringSubmatch(lines[2])
	if m == nil {
		t.Fatalf("header %q does not match %v", lines[2], header)
	}
	if m[2] != "WARN" || m[3] != "25" {
		t.Errorf("level, diff = %s, %s; want WARN, 25", m[2], m[3])
	}
	if lines[3] != "'second'" || lines[4] != "" {
		t.Errorf("trailing lines = %q", lines[3:])
	}
}

func TestDefaultListenerKeepsPercent(t *testing.T) {
	var buf bytes.Buffer
	k := konsole.New("percent", konsole.WithOutput(&buf))
	k.AddDefaultListener()

	k.Log("50% done")
	k.Log("rate %d%%", 5)
	k.Log("%s", "disk at 90%")

	var msgs []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "'") {
			msgs = append(msgs, line)
		}
	}
	want := []string{"'50% done'", "'rate 5%'", "'disk at 90%'"}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat(t *testing.T) {
	k := konsole.New("format")
	tests := []struct {
		args []any
		want string
	}{
		{nil, ""},
		{[]any{"plain"}, "plain"},
		{[]any{"a", "b", 3}, "a b 3"},
		{[]any{"%s=%d", "n", 5}, "n=5"},
		{[]any{"%d%%", 50, "extra"}, "50% extra"},
		{[]any{1, true}, "1 true"},
		{[]any{"50% done"}, "50% done"},
		{[]any{"%s and %s", "a"}, "%s and %s a"},
		{[]any{"rate %d%%", 5}, "rate 5%"},
	}
	for _, tt := range tests {
		if got := k.Format(tt.args...); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestTrace(t *testing.T) {
	k := konsole.New("trace")
	c := k.Trace()
	if !strings.HasSuffix(c.Function, "konsole_test.TestTrace") {
		t.Errorf("Trace function = %s, want TestTrace", c.Function)
	}
	if !strings.HasSuffix(c.File, "konsole_test.go") || c.Line == 0 {
		t.Errorf("Trace = %+v", c)
	}
}

func TestTraceSkipsHelpers(t *testing.T) {
	k := konsole.New("helpers", konsole.WithHelpers("github.com/yeetrun/toolbelt/pkg/konsole_test"))
	c := k.Trace()
	if strings.Contains(c.Function, "konsole_test") {
		t.Errorf("Trace returned helper frame %s", c.Function)
	}
}

func TestDiff(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: 10 * time.Millisecond}
	a := konsole.New("diff-shared", konsole.WithClock(clock.Now))
	b := konsole.New("diff-shared", konsole.WithClock(clock.Now))
	if got := a.Diff(); got != 0 {
		t.Errorf("first Diff = %d, want 0", got)
	}
	if got := b.Diff(); got != 10 {
		t.Errorf("Diff of same label = %d, want 10", got)
	}
	other := konsole.New("diff-other", konsole.WithClock(clock.Now))
	if got := other.Diff(); got != 0 {
		t.Errorf("first Diff of other label = %d, want 0", got)
	}
}

func TestTimer(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: 40 * time.Millisecond}
	k := konsole.New("timer", konsole.WithClock(clock.Now))
	var msgs []string
	k.On(string(konsole.LevelLog), func(ev konsole.Event) {
		msgs = append(msgs, ev.Konsole.Format(ev.Args...))
	})

	k.Time("build")
	d, ok := k.TimeEnd("build")
	if !ok || d != 40*time.Millisecond {
		t.Errorf("TimeEnd = %v, %v; want 40ms, true", d, ok)
	}
	if _, ok := k.TimeEnd("build"); ok {
		t.Error("second TimeEnd succeeded")
	}
	if diff := cmp.Diff([]string{"build: 40ms"}, msgs); diff != "" {
		t.Errorf("logged mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentUse(t *testing.T) {
	k := konsole.New("concurrent", konsole.WithOutput(&bytes.Buffer{}))
	var (
		mu sync.Mutex
		n  int
	)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.On(konsole.MessageEvent, func(konsole.Event) {
				mu.Lock()
				n++
				mu.Unlock()
			})
			k.Time(fmt.Sprint(i))
			k.Log(i)
			k.TimeEnd(fmt.Sprint(i))
		}()
	}
	wg.Wait()
	if len(k.Listeners(konsole.MessageEvent)) != 8 {
		t.Errorf("got %d listeners, want 8", len(k.Listeners(konsole.MessageEvent)))
	}
	if n == 0 {
		t.Error("no events delivered")
	}
}
