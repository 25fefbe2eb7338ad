// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flagspec loads parser options from YAML or TOML files.
//
// A spec looks like:
//
//	boolean: [verbose, dry-run]   # or `boolean: true` for every bare flag
//	string: [name]
//	alias:
//	  verbose: v
//	  output: [o, out]
//	default:
//	  retries: 3
//	  db:
//	    port: 5432                  # same as "db.port": 5432
//	stop_early: false
//	double_dash: true
package flagspec

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/yeetrun/toolbelt/pkg/minimist"
	"gopkg.in/yaml.v3"
)

// Format is a spec file format.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatOf returns the format for a file name by its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("unsupported spec file extension %q", filepath.Ext(path))
}

type spec struct {
	Boolean    any            `yaml:"boolean" toml:"boolean"`
	String     any            `yaml:"string" toml:"string"`
	Alias      map[string]any `yaml:"alias" toml:"alias"`
	Default    map[string]any `yaml:"default" toml:"default"`
	StopEarly  bool           `yaml:"stop_early" toml:"stop_early"`
	DoubleDash bool           `yaml:"double_dash" toml:"double_dash"`
}

// Load reads the spec file at path.
func Load(path string) (minimist.Options, error) {
	format, err := FormatOf(path)
	if err != nil {
		return minimist.Options{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return minimist.Options{}, err
	}
	defer f.Close()
	opts, err := Decode(f, format)
	if err != nil {
		return minimist.Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// Decode reads a spec in the given format from r.
func Decode(r io.Reader, format Format) (minimist.Options, error) {
	var s spec
	switch format {
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return minimist.Options{}, fmt.Errorf("failed to decode yaml: %w", err)
		}
	case TOML:
		md, err := toml.NewDecoder(r).Decode(&s)
		if err != nil {
			return minimist.Options{}, fmt.Errorf("failed to decode toml: %w", err)
		}
		// Tables under alias and default decode into maps; only top-level
		// keys can be unknown.
		var unknown []string
		for _, k := range md.Undecoded() {
			if len(k) == 1 {
				unknown = append(unknown, k.String())
			}
		}
		if len(unknown) > 0 {
			return minimist.Options{}, fmt.Errorf("unknown keys: %v", unknown)
		}
	default:
		return minimist.Options{}, fmt.Errorf("unsupported format %q", format)
	}
	return s.options()
}

func (s *spec) options() (minimist.Options, error) {
	opts := minimist.Options{
		StopEarly:  s.StopEarly,
		DoubleDash: s.DoubleDash,
	}

	if b, ok := s.Boolean.(bool); ok {
		opts.AllBooleans = b
	} else {
		names, err := stringList(s.Boolean)
		if err != nil {
			return opts, fmt.Errorf("boolean: %w", err)
		}
		opts.Boolean = names
	}

	names, err := stringList(s.String)
	if err != nil {
		return opts, fmt.Errorf("string: %w", err)
	}
	opts.String = names

	if len(s.Alias) > 0 {
		opts.Alias = make(map[string][]string, len(s.Alias))
		for _, k := range slices.Sorted(maps.Keys(s.Alias)) {
			as, err := stringList(s.Alias[k])
			if err != nil {
				return opts, fmt.Errorf("alias.%s: %w", k, err)
			}
			opts.Alias[k] = as
		}
	}

	if len(s.Default) > 0 {
		opts.Default = make(map[string]any)
		flatten("", s.Default, opts.Default)
	}
	return opts, nil
}

// stringList accepts nil, a string or a list of strings.
func stringList(v any) ([]string, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string, got %T", e)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a string or a list of strings, got %T", v)
}

// flatten copies nested tables in src into dst under dotted keys.
func flatten(prefix string, src map[string]any, dst map[string]any) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if m, ok := v.(map[string]any); ok {
			flatten(key, m, dst)
			continue
		}
		dst[key] = v
	}
}
