// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package env reads environment variables with defaults, type coercion and
// validation.
//
// A variable exists when it is set, even to the empty string. Values are
// returned with surrounding whitespace removed.
package env

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Source is where an Env reads variables from.
type Source interface {
	LookupEnv(key string) (string, bool)
	Environ() []string
}

type osSource struct{}

func (osSource) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }
func (osSource) Environ() []string                   { return os.Environ() }

// OS is the process environment.
var OS Source = osSource{}

// MapSource is an in-memory Source.
type MapSource map[string]string

func (m MapSource) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapSource) Environ() []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}

// Env reads variables from a Source.
type Env struct {
	src Source
}

// New returns an Env reading from src.
func New(src Source) *Env {
	return &Env{src: src}
}

// Default reads from the process environment. The package-level functions
// use it.
var Default = New(OS)

func (e *Env) lookup(key string) (string, bool) {
	v, ok := e.src.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Get returns the value of key, or def if it is not set.
func (e *Env) Get(key, def string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return strings.TrimSpace(def)
}

// GetFirst returns the value of the first key that is set, or def if none
// are.
func (e *Env) GetFirst(keys []string, def string) string {
	for _, k := range keys {
		if v, ok := e.lookup(strings.TrimSpace(k)); ok {
			return v
		}
	}
	return strings.TrimSpace(def)
}

// GetAll returns the values of the keys that are set.
func (e *Env) GetAll(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := e.lookup(k); ok {
			out[k] = v
		}
	}
	return out
}

// GetAllWithDefaults returns a value for every key in defs, falling back to
// the mapped default when the key is not set.
func (e *Env) GetAllWithDefaults(defs map[string]string) map[string]string {
	out := make(map[string]string, len(defs))
	for k, def := range defs {
		out[k] = e.Get(k, def)
	}
	return out
}

// All returns every variable in the source.
func (e *Env) All() map[string]string {
	environ := e.src.Environ()
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// Ok reports whether every key is set.
func (e *Env) Ok(keys ...string) bool {
	for _, k := range keys {
		if _, ok := e.src.LookupEnv(k); !ok {
			return false
		}
	}
	return true
}

// GetBool returns true or false for the case-insensitive values "true" and
// "false". Any other value, or no value, yields def.
func (e *Env) GetBool(key string, def bool) bool {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	b, ok := parseBool(v)
	if !ok {
		return def
	}
	return b
}

// GetNumber returns the integer at the start of the value of key. Text after
// the leading digits is ignored. It returns def if the key is not set or the
// value does not start with an integer.
func (e *Env) GetNumber(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	n, err := leadingInt(v)
	if err != nil {
		return def
	}
	return n
}

// GetList splits the value of key on delim (default ",") and trims each
// element. It returns an empty slice if the key is not set.
func (e *Env) GetList(key, delim string) []string {
	v, ok := e.lookup(key)
	if !ok {
		return []string{}
	}
	if delim == "" {
		delim = ","
	}
	parts := strings.Split(v, delim)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// GetIntList is GetList with every element converted by the GetNumber rule.
func (e *Env) GetIntList(key, delim string) ([]int, error) {
	parts := e.GetList(key, delim)
	out := make([]int, 0, len(parts))
	for i, p := range parts {
		n, err := leadingInt(p)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

var leadingIntRe = regexp.MustCompile(`^\s*([-+]?\d+)`)

func leadingInt(s string) (int, error) {
	m := leadingIntRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return strconv.Atoi(m[1])
}

func Get(key, def string) string                  { return Default.Get(key, def) }
func GetFirst(keys []string, def string) string   { return Default.GetFirst(keys, def) }
func GetAll(keys []string) map[string]string      { return Default.GetAll(keys) }
func All() map[string]string                      { return Default.All() }
func Ok(keys ...string) bool                      { return Default.Ok(keys...) }
func GetBool(key string, def bool) bool           { return Default.GetBool(key, def) }
func GetNumber(key string, def int) int           { return Default.GetNumber(key, def) }
func GetList(key, delim string) []string          { return Default.GetList(key, delim) }
func GetIntList(key, delim string) ([]int, error) { return Default.GetIntList(key, delim) }
func Ensure(reqs ...Requirement) error            { return Default.Ensure(reqs...) }

func GetAllWithDefaults(defs map[string]string) map[string]string {
	return Default.GetAllWithDefaults(defs)
}
