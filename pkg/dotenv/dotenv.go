// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dotenv reads and writes .env files.
//
// Each line has the form KEY=VALUE. Keys are made of word characters, dots
// and dashes. Values wrapped in single or double quotes are unwrapped, and
// double-quoted values expand \n into a newline. Unquoted values are
// trimmed. Lines that do not match are ignored.
package dotenv

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

var lineRe = regexp.MustCompile(`^\s*([\w.-]+)\s*=\s*([^\r\x{2028}\x{2029}]*)?\s*$`)

// Parse reads KEY=VALUE pairs from r.
func Parse(r io.Reader) (map[string]string, error) {
	return ParseWithLogf(r, nil)
}

// ParseWithLogf is like Parse but reports lines that do not match to logf.
func ParseWithLogf(r io.Reader, logf func(format string, args ...any)) (map[string]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for i, line := range strings.Split(string(b), "\n") {
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			if logf != nil {
				logf("did not match key and value when parsing line %d: %s", i+1, line)
			}
			continue
		}
		out[m[1]] = unquote(m[2])
	}
	return out, nil
}

func unquote(v string) string {
	if v == "" {
		return v
	}
	first, last := v[0], v[len(v)-1]
	if first != last || (first != '"' && first != '\'') {
		return strings.TrimSpace(v)
	}
	if len(v) < 2 {
		return ""
	}
	v = v[1 : len(v)-1]
	if first == '"' {
		v = strings.ReplaceAll(v, `\n`, "\n")
	}
	return v
}

// Options configures Load.
type Options struct {
	// Path is the file to load. It defaults to .env in the working
	// directory.
	Path string
	// Encoding is a WHATWG encoding label such as "latin1" or
	// "shift_jis". It defaults to UTF-8.
	Encoding string
	// Debug logs lines that do not parse and keys that are already set.
	Debug bool
}

// Load reads a .env file into the process environment. Variables that are
// already set are left alone. It returns the parsed pairs.
func Load(opts Options) (map[string]string, error) {
	path := opts.Path
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(wd, ".env")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if opts.Encoding != "" {
		enc, err := htmlindex.Get(opts.Encoding)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r = enc.NewDecoder().Reader(f)
	}

	var logf func(string, ...any)
	if opts.Debug {
		logf = debugf
	}
	parsed, err := ParseWithLogf(r, logf)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	for k, v := range parsed {
		if _, ok := os.LookupEnv(k); ok {
			if opts.Debug {
				debugf("%q is already defined in the environment and will not be overwritten", k)
			}
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	return parsed, nil
}

func debugf(format string, args ...any) {
	log.Printf("[dotenv][DEBUG] "+format, args...)
}

// DefaultSources are the files LoadExisting looks for when none are given.
var DefaultSources = []string{".env", "front.env"}

// LoadExisting loads each of files under dir that exists, in order, and
// returns the paths it loaded. Earlier files win since Load never
// overrides a variable.
func LoadExisting(dir string, files ...string) ([]string, error) {
	if len(files) == 0 {
		files = DefaultSources
	}
	var loaded []string
	for _, name := range files {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, name)
		}
		if _, err := Load(Options{Path: path}); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
