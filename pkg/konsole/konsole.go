// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package konsole is a labeled console that emits log calls as events.
//
// Each call to Log, Info, Warn or Error is delivered to the listeners of
// the "message" event and to the listeners of the level's own event. A
// Konsole has no listeners until one is added, so nothing is printed by
// default; AddDefaultListener installs a formatted writer.
package konsole

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/yeetrun/toolbelt/pkg/env"
	"tailscale.com/syncs"
	"tailscale.com/util/mak"
)

// Level is a log level. Each level is also the name of an event.
type Level string

const (
	LevelLog   Level = "log"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// MessageEvent receives every log call regardless of level.
const MessageEvent = "message"

// Event is passed to listeners.
type Event struct {
	// Konsole is the konsole that emitted the event.
	Konsole *Konsole
	Level   Level
	Args    []any
}

// Listener handles an event.
type Listener func(Event)

// Konsole is safe for concurrent use.
type Konsole struct {
	label       string
	processType string
	out         io.Writer
	now         func() time.Time
	helpers     []string

	mu        sync.Mutex
	listeners map[string][]Listener
	times     map[string]time.Time
}

// Option configures a Konsole.
type Option func(*Konsole)

// WithOutput sets where Write prints. It defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(k *Konsole) { k.out = w }
}

// WithClock sets the time source used by Diff and the timers.
func WithClock(now func() time.Time) Option {
	return func(k *Konsole) { k.now = now }
}

// WithHelpers marks packages whose frames Trace skips, in addition to this
// one. Wrappers that log on behalf of their caller pass their own import
// path.
func WithHelpers(pkgPaths ...string) Option {
	return func(k *Konsole) { k.helpers = append(k.helpers, pkgPaths...) }
}

var pkgPath = reflect.TypeFor[Konsole]().PkgPath()

// New returns a Konsole with the given label.
func New(label string, opts ...Option) *Konsole {
	k := &Konsole{
		label:       label,
		processType: "master",
		out:         os.Stdout,
		now:         time.Now,
		helpers:     []string{pkgPath},
	}
	if env.Ok("NODE_WORKER_ID") {
		k.processType = "worker"
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *Konsole) Label() string       { return k.label }
func (k *Konsole) ProcessType() string { return k.processType }
func (k *Konsole) Pid() int            { return os.Getpid() }

func (k *Konsole) Log(args ...any)   { k.emit(LevelLog, args) }
func (k *Konsole) Info(args ...any)  { k.emit(LevelInfo, args) }
func (k *Konsole) Warn(args ...any)  { k.emit(LevelWarn, args) }
func (k *Konsole) Error(args ...any) { k.emit(LevelError, args) }

func (k *Konsole) emit(level Level, args []any) {
	ev := Event{Konsole: k, Level: level, Args: args}
	for _, l := range k.Listeners(MessageEvent) {
		l(ev)
	}
	for _, l := range k.Listeners(string(level)) {
		l(ev)
	}
}

// On adds a listener for event.
func (k *Konsole) On(event string, l Listener) {
	k.mu.Lock()
	defer k.mu.Unlock()
	mak.Set(&k.listeners, event, append(k.listeners[event], l))
}

// Listeners returns a copy of the listeners for event.
func (k *Konsole) Listeners(event string) []Listener {
	k.mu.Lock()
	defer k.mu.Unlock()
	return slices.Clone(k.listeners[event])
}

// Relay adds the message listeners of k to each of origins, so their
// output is handled the same way.
func (k *Konsole) Relay(origins ...*Konsole) {
	ls := k.Listeners(MessageEvent)
	for _, o := range origins {
		for _, l := range ls {
			o.On(MessageEvent, l)
		}
	}
}

// AddDefaultListener prints every message to the output as
//
//	 <label> <type>:<pid> <LEVEL> +<diff>ms (<file>:<line>)
//	'<message>'
func (k *Konsole) AddDefaultListener() {
	k.On(MessageEvent, defaultListener)
}

func defaultListener(ev Event) {
	k := ev.Konsole
	c := k.Trace()
	var b strings.Builder
	fmt.Fprintf(&b, " %s %s:%d %s +%dms ", k.Label(), k.ProcessType(), k.Pid(), strings.ToUpper(string(ev.Level)), k.Diff())
	if c.File != "" {
		fmt.Fprintf(&b, "(%s:%d) ", c.File, c.Line)
	}
	fmt.Fprintf(&b, "\n'%s'", k.Format(ev.Args...))
	fmt.Fprintln(k.out, b.String())
}

// Format renders args. If the first argument is a string whose verbs are
// all matched by the following arguments it is used as a format for them.
// Otherwise it is printed as is. The remaining arguments are appended
// separated by spaces.
func (k *Konsole) Format(args ...any) string {
	if len(args) == 0 {
		return ""
	}
	var parts []string
	rest := args
	if f, ok := args[0].(string); ok {
		if n := countVerbs(f); n > 0 && n <= len(args)-1 {
			parts = append(parts, fmt.Sprintf(f, args[1:1+n]...))
			rest = args[1+n:]
		} else {
			parts = append(parts, f)
			rest = args[1:]
		}
	}
	for _, a := range rest {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, " ")
}

// countVerbs counts the formatting verbs in f that take an argument.
func countVerbs(f string) int {
	n := 0
	for i := 0; i < len(f); i++ {
		if f[i] != '%' {
			continue
		}
		if i+1 < len(f) && f[i+1] == '%' {
			i++
			continue
		}
		n++
	}
	return n
}

// Caller is a source location.
type Caller struct {
	Function string
	File     string
	Line     int
}

// Trace returns the nearest caller outside this package and the helper
// packages. The zero Caller is returned if there is none.
func (k *Konsole) Trace() Caller {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if f.Function != "" && !k.isHelper(f.Function) {
			return Caller{Function: f.Function, File: f.File, Line: f.Line}
		}
		if !more {
			return Caller{}
		}
	}
}

func (k *Konsole) isHelper(fn string) bool {
	for _, p := range k.helpers {
		if strings.HasPrefix(fn, p+".") {
			return true
		}
	}
	return false
}

// prevTimes holds the last Diff time per label, shared by every Konsole.
var prevTimes syncs.Map[string, time.Time]

// Diff returns the milliseconds since the previous Diff of any Konsole
// with the same label, or 0 on the first call.
func (k *Konsole) Diff() int64 {
	now := k.now()
	var ms int64
	prevTimes.WithLock(func(m map[string]time.Time) {
		if prev, ok := m[k.label]; ok {
			ms = now.Sub(prev).Milliseconds()
		}
		m[k.label] = now
	})
	return ms
}

// Time starts a timer.
func (k *Konsole) Time(label string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	mak.Set(&k.times, label, k.now())
}

// TimeEnd stops a timer started by Time and logs "<label>: <n>ms". It
// returns false if no such timer is running.
func (k *Konsole) TimeEnd(label string) (time.Duration, bool) {
	k.mu.Lock()
	start, ok := k.times[label]
	delete(k.times, label)
	k.mu.Unlock()
	if !ok {
		return 0, false
	}
	d := k.now().Sub(start)
	k.Log("%s: %dms", label, d.Milliseconds())
	return d, true
}
