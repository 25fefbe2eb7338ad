// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package minimist

import (
	"encoding/json"
	"log"
	"maps"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/yeetrun/toolbelt/pkg/env"
	"tailscale.com/util/set"
)

// Options configures Parse.
type Options struct {
	// Boolean lists flags that never take a value. They start out false
	// (or at their default) even when absent.
	Boolean []string
	// AllBooleans treats every bare --name token as a boolean flag.
	AllBooleans bool
	// String lists flags whose values are never converted to numbers. The
	// name "_" keeps positional arguments as strings.
	String []string
	// Alias maps a flag name to its alternate names. Setting any member of
	// the group sets all of them.
	Alias map[string][]string
	// Default maps dotted flag names to values applied after parsing to
	// paths that were not set.
	Default map[string]any
	// Unknown, if set, is called with the raw token for flags that are not
	// declared and for positional arguments. Returning false drops the
	// token.
	Unknown func(arg string) bool
	// StopEarly stops parsing at the first positional argument. The
	// remaining tokens are appended to Positionals as is.
	StopEarly bool
	// DoubleDash keeps the tokens after "--" in Result.Tail instead of
	// appending them to Positionals.
	DoubleDash bool
}

// Result is the outcome of Parse.
type Result struct {
	// Positionals holds non-flag arguments in order. Numeric-looking
	// arguments are float64.
	Positionals []any
	// Flags maps flag names to bool, string, float64 or []any values.
	// Dotted names are stored as nested map[string]any.
	Flags map[string]any
	// Tail holds the tokens after "--" when Options.DoubleDash is set. It
	// is nil otherwise.
	Tail []string
}

// Lookup returns the value at a dotted flag path.
func (r *Result) Lookup(path string) (any, bool) {
	return lookupPath(r.Flags, splitPath(path))
}

// Has reports whether a dotted flag path was set.
func (r *Result) Has(path string) bool {
	return hasPath(r.Flags, splitPath(path))
}

// Map returns the result in the conventional minimist shape: flags at the
// top level, positionals under "_" and the tail under "--".
func (r *Result) Map() map[string]any {
	m := maps.Clone(r.Flags)
	if m == nil {
		m = make(map[string]any)
	}
	m["_"] = r.Positionals
	if r.Tail != nil {
		m["--"] = r.Tail
	}
	return m
}

// MarshalJSON encodes Map. Infinite and NaN numbers are written as null.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(finite(r.Map()))
}

// finite returns a copy of v with non-finite floats replaced by nil.
func finite(v any) any {
	switch v := v.(type) {
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil
		}
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = finite(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = finite(e)
		}
		return out
	}
	return v
}

var (
	longHasValueRe = regexp.MustCompile(`^--.+=`)
	longValueRe    = regexp.MustCompile(`^--([^=]+)=([\s\S]*)$`)
	negatedRe      = regexp.MustCompile(`^--no-(.+)`)
	longRe         = regexp.MustCompile(`^--(.+)`)
	shortRe        = regexp.MustCompile(`^-[^-]+`)
	longBareRe     = regexp.MustCompile(`^--[^=]+$`)
	numericTailRe  = regexp.MustCompile(`-?\d+(\.\d*)?(e-?\d+)?$`)
	nonWordRe      = regexp.MustCompile(`\W`)
	boolLiteralRe  = regexp.MustCompile(`^(true|false)$`)
)

type parser struct {
	bools    set.Set[string]
	strs     set.Set[string]
	allBools bool
	aliases  map[string][]string
	unknown  func(string) bool
	res      *Result
}

// Args is Parse with a debug hook: when FRONT_DEBUG is set it logs the raw
// tokens before parsing.
func Args(args []string, opts Options) *Result {
	if env.Get("FRONT_DEBUG", "") != "" {
		log.Printf("minimist: args %q", args)
	}
	return Parse(args, opts)
}

// Parse parses args according to opts. It does not modify args and never
// fails.
func Parse(args []string, opts Options) *Result {
	p := &parser{
		bools:    make(set.Set[string]),
		strs:     make(set.Set[string]),
		allBools: opts.AllBooleans,
		aliases:  closeAliases(opts.Alias),
		unknown:  opts.Unknown,
		res: &Result{
			Positionals: []any{},
			Flags:       make(map[string]any),
		},
	}
	for _, b := range opts.Boolean {
		if b != "" {
			p.bools.Add(b)
		}
	}
	for _, s := range opts.String {
		if s == "" {
			continue
		}
		p.strs.Add(s)
		for _, a := range p.aliases[s] {
			p.strs.Add(a)
		}
	}

	for _, b := range opts.Boolean {
		if b == "" {
			continue
		}
		var def any = false
		if v, ok := opts.Default[b]; ok {
			def = v
		}
		p.setArg(b, def, "")
	}

	var tail []string
	if idx := slices.Index(args, "--"); idx >= 0 {
		tail = args[idx+1:]
		args = args[:idx]
	}

scan:
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if m := longValueRe.FindStringSubmatch(arg); m != nil && longHasValueRe.MatchString(arg) {
			key, value := m[1], m[2]
			if p.bools.Contains(key) {
				p.setArg(key, value != "false", arg)
			} else {
				p.setArg(key, value, arg)
			}
			continue
		}

		if m := negatedRe.FindStringSubmatch(arg); m != nil {
			p.setArg(m[1], false, arg)
			continue
		}

		if m := longRe.FindStringSubmatch(arg); m != nil {
			i = p.assignNext(m[1], arg, args, i, true)
			continue
		}

		if shortRe.MatchString(arg) {
			i = p.shortCluster(arg, args, i)
			continue
		}

		if p.unknown == nil || p.unknown(arg) {
			p.res.Positionals = append(p.res.Positionals, p.positional(arg))
		}
		if opts.StopEarly {
			for _, rest := range args[i+1:] {
				p.res.Positionals = append(p.res.Positionals, rest)
			}
			break scan
		}
	}

	for _, key := range slices.Sorted(maps.Keys(opts.Default)) {
		path := splitPath(key)
		if hasPath(p.res.Flags, path) {
			continue
		}
		def := opts.Default[key]
		p.setKey(path, def)
		for _, a := range p.aliases[key] {
			p.setKey(splitPath(a), def)
		}
	}

	if opts.DoubleDash {
		p.res.Tail = append([]string{}, tail...)
	} else {
		for _, t := range tail {
			p.res.Positionals = append(p.res.Positionals, t)
		}
	}
	return p.res
}

// shortCluster handles a -xyz token starting at args[i] and returns the
// index of the last token it consumed.
func (p *parser) shortCluster(arg string, args []string, i int) int {
	runes := []rune(arg)
	letters := runes[1 : len(runes)-1]
	for j, r := range letters {
		letter := string(r)
		next := string(runes[j+2:])

		if next == "-" {
			p.setArg(letter, next, arg)
			continue
		}
		if isASCIILetter(r) && strings.Contains(next, "=") {
			p.setArg(letter, strings.Split(next, "=")[1], arg)
			return i
		}
		if isASCIILetter(r) && numericTailRe.MatchString(next) {
			p.setArg(letter, next, arg)
			return i
		}
		if j+1 < len(letters) && nonWordRe.MatchString(string(letters[j+1])) {
			p.setArg(letter, next, arg)
			return i
		}
		p.setArg(letter, p.bareValue(letter), arg)
	}

	key := string(runes[len(runes)-1])
	if key == "-" {
		return i
	}
	return p.assignNext(key, arg, args, i, false)
}

// assignNext sets key from a bare flag token at args[i], taking args[i+1]
// as the value when it can be one. It returns the index of the last token
// consumed.
//
// In all-booleans mode a long flag takes only a literal true or false. A
// short flag treats an empty next token as absent.
func (p *parser) assignNext(key, arg string, args []string, i int, long bool) int {
	if p.bools.Contains(key) || p.aliasesBoolean(key) {
		p.setArg(key, p.bareValue(key), arg)
		return i
	}
	if i+1 < len(args) && (long || args[i+1] != "") {
		next := args[i+1]
		if boolLiteralRe.MatchString(next) {
			p.setArg(key, next == "true", arg)
			return i + 1
		}
		if !strings.HasPrefix(next, "-") && !(long && p.allBools) {
			p.setArg(key, next, arg)
			return i + 1
		}
	}
	p.setArg(key, p.bareValue(key), arg)
	return i
}

// bareValue is the value of a flag given without one.
func (p *parser) bareValue(key string) any {
	if p.strs.Contains(key) {
		return ""
	}
	return true
}

func (p *parser) positional(arg string) any {
	if p.strs.Contains("_") {
		return arg
	}
	return Coerce(arg)
}

// defined reports whether key is known to the parser, in which case the
// Unknown callback is not consulted.
func (p *parser) defined(key, arg string) bool {
	if p.allBools && longBareRe.MatchString(arg) {
		return true
	}
	_, aliased := p.aliases[key]
	return p.strs.Contains(key) || p.bools.Contains(key) || aliased
}

// aliasesBoolean reports whether key has aliases and all of them are
// boolean flags.
func (p *parser) aliasesBoolean(key string) bool {
	as := p.aliases[key]
	if len(as) == 0 {
		return false
	}
	for _, a := range as {
		if !p.bools.Contains(a) {
			return false
		}
	}
	return true
}

// setArg assigns val to key and all of its aliases. arg is the token that
// produced the value, or "" for values the parser sets on its own.
func (p *parser) setArg(key string, val any, arg string) {
	if arg != "" && p.unknown != nil && !p.defined(key, arg) {
		if !p.unknown(arg) {
			return
		}
	}
	if !p.strs.Contains(key) {
		val = coerce(val)
	}
	p.setKey(splitPath(key), val)
	for _, a := range p.aliases[key] {
		p.setKey(splitPath(a), val)
	}
}

// setKey stores value at path. An existing non-boolean value is turned
// into (or extended as) a list; boolean flags and boolean values are
// overwritten. Writes through a non-map intermediate value are dropped.
func (p *parser) setKey(path []string, value any) {
	node := walk(p.res.Flags, path, true)
	if node == nil {
		return
	}
	leaf := path[len(path)-1]
	cur, ok := node[leaf]
	if !ok || p.bools.Contains(leaf) {
		node[leaf] = value
		return
	}
	switch c := cur.(type) {
	case bool:
		node[leaf] = value
	case []any:
		node[leaf] = append(c, value)
	default:
		node[leaf] = []any{cur, value}
	}
}

// closeAliases returns the symmetric closure of the declared alias groups:
// every member of a group maps to all other members. Groups are merged in
// sorted key order so the result does not depend on map iteration.
func closeAliases(declared map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for _, key := range slices.Sorted(maps.Keys(declared)) {
		group := append([]string{key}, declared[key]...)
		for _, m := range group {
			if _, ok := out[m]; !ok {
				out[m] = nil
			}
			for _, o := range group {
				if o == m || slices.Contains(out[m], o) {
					continue
				}
				out[m] = append(out[m], o)
			}
		}
	}
	return out
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}
