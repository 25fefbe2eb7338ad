// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dotenv

import (
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"regexp"
	"slices"
	"strings"
)

// Write writes an environment file with the given name and content. v is a
// map[string]string or a struct (or pointer to one) whose fields carry env
// tags. Zero-valued fields are skipped.
func Write(name string, v any) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := Marshal(f, v); err != nil {
		return fmt.Errorf("failed to marshal env: %v", err)
	}
	return f.Close()
}

// Marshal writes v to o in .env format. Output is read back unchanged by
// Parse.
func Marshal(o io.Writer, v any) error {
	pairs, err := pairsOf(v)
	if err != nil {
		return err
	}
	for _, kv := range pairs {
		val, err := quote(kv[1])
		if err != nil {
			return fmt.Errorf("%s: %w", kv[0], err)
		}
		if _, err := fmt.Fprintf(o, "%s=%s\n", kv[0], val); err != nil {
			return err
		}
	}
	return nil
}

var keyRe = regexp.MustCompile(`^[\w.-]+$`)

func pairsOf(v any) ([][2]string, error) {
	if m, ok := v.(map[string]string); ok {
		var out [][2]string
		for _, k := range slices.Sorted(maps.Keys(m)) {
			if !keyRe.MatchString(k) {
				return nil, fmt.Errorf("invalid key %q", k)
			}
			out = append(out, [2]string{k, m[k]})
		}
		return out, nil
	}

	re := reflect.ValueOf(v)
	if re.Kind() == reflect.Ptr {
		re = re.Elem()
	}
	if re.Kind() != reflect.Struct {
		return nil, fmt.Errorf("unsupported type %T", v)
	}
	ret := re.Type()
	var out [][2]string
	for i := 0; i < re.NumField(); i++ {
		field := re.Field(i)
		tag := ret.Field(i).Tag.Get("env")
		if tag == "" {
			continue
		}
		if !keyRe.MatchString(tag) {
			return nil, fmt.Errorf("invalid env tag %q on field %s", tag, ret.Field(i).Name)
		}
		if field.IsZero() {
			continue
		}
		out = append(out, [2]string{tag, fmt.Sprint(field.Interface())})
	}
	return out, nil
}

// quote returns val in a form Parse reads back as val.
func quote(val string) (string, error) {
	if strings.ContainsAny(val, "\r\u2028\u2029") {
		return "", fmt.Errorf("value contains a line terminator other than \\n")
	}
	if strings.Contains(val, "\n") {
		if strings.Contains(val, `\n`) {
			return "", fmt.Errorf(`value mixes newlines and literal \n`)
		}
		return `"` + strings.ReplaceAll(val, "\n", `\n`) + `"`, nil
	}
	if val == "" {
		return val, nil
	}
	first, last := val[0], val[len(val)-1]
	quoted := first == '"' || first == '\'' || last == '"' || last == '\''
	if quoted || strings.TrimSpace(val) != val {
		return "'" + val + "'", nil
	}
	return val, nil
}
