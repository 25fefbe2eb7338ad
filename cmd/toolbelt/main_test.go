// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/toolbelt/pkg/env"
	"gopkg.in/yaml.v3"
)

func runForTest(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want map[string]any
	}{
		{
			name: "cluster and value",
			args: []string{"parse", "--", "-ab", "--name=bob", "x"},
			want: map[string]any{"a": true, "b": true, "name": "bob", "_": []any{"x"}},
		},
		{
			name: "help token reaches the parser",
			args: []string{"parse", "--", "--help"},
			want: map[string]any{"help": true, "_": []any{}},
		},
		{
			name: "global flags before the command",
			args: []string{"--no-color", "parse", "--", "--n", "5"},
			want: map[string]any{"n": float64(5), "_": []any{}},
		},
		{
			name: "overflowing number",
			args: []string{"parse", "--", "--x=1e400"},
			want: map[string]any{"x": nil, "_": []any{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runForTest(t, tt.args...)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal([]byte(stdout), &got); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, stdout)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCommandWithSpec(t *testing.T) {
	dir := t.TempDir()
	spec := writeFile(t, dir, "cli.yaml", "boolean: [v]\nalias:\n  verbose: v\ndefault:\n  port: 80\n")

	stdout, _, err := runForTest(t, "parse", "--spec", spec, "--format", "yaml", "--", "-v", "file")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, stdout)
	}
	want := map[string]any{"v": true, "verbose": true, "port": 80, "_": []any{"file"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := runForTest(t, "parse", "--format", "xml", "--", "a"); err == nil {
		t.Error("parse --format xml succeeded, want error")
	}
}

func TestEnvGet(t *testing.T) {
	t.Setenv("TOOLBELT_TEST_PORT", " 8080abc ")
	t.Setenv("TOOLBELT_TEST_DEBUG", "TRUE")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"string", []string{"env", "get", "TOOLBELT_TEST_PORT"}, "8080abc\n"},
		{"number", []string{"env", "get", "TOOLBELT_TEST_PORT", "--type", "number"}, "8080\n"},
		{"boolean", []string{"env", "get", "TOOLBELT_TEST_DEBUG", "--type", "boolean"}, "true\n"},
		{"default", []string{"env", "get", "TOOLBELT_TEST_UNSET", "--default", "fallback"}, "fallback\n"},
		{"number default", []string{"env", "get", "TOOLBELT_TEST_UNSET", "--type", "number", "--default", "3"}, "3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runForTest(t, tt.args...)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}

	_, _, err := runForTest(t, "env", "get", "TOOLBELT_TEST_UNSET")
	var me *env.MissingError
	if !errors.As(err, &me) || me.Key != "TOOLBELT_TEST_UNSET" {
		t.Errorf("err = %v, want MissingError", err)
	}
}

func TestEnvEnsure(t *testing.T) {
	t.Setenv("TOOLBELT_TEST_HOST", "localhost")
	t.Setenv("TOOLBELT_TEST_PORT", "eighty")

	_, stderr, err := runForTest(t, "env", "ensure", "TOOLBELT_TEST_HOST")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if !strings.Contains(stderr, "1 variable(s) ok") {
		t.Errorf("stderr missing success message:\n%s", stderr)
	}

	_, _, err = runForTest(t, "env", "ensure", "TOOLBELT_TEST_HOST", "TOOLBELT_TEST_PORT:number", "TOOLBELT_TEST_UNSET")
	if !errors.Is(err, env.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	for _, key := range []string{"TOOLBELT_TEST_PORT", "TOOLBELT_TEST_UNSET"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}

	if _, _, err := runForTest(t, "env", "ensure", "X:date"); err == nil {
		t.Error("ensure with unknown type succeeded, want error")
	}
}

func TestDotenvCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.env", "B=two words\nA=1\nnot a pair\nC=\"x\\ny\"\n")

	stdout, stderr, err := runForTest(t, "dotenv", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	want := "A=1\nB=two words\nC=\"x\\ny\"\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if !strings.Contains(stderr, "line 3") {
		t.Errorf("stderr does not report the bad line:\n%s", stderr)
	}

	stdout, _, err = runForTest(t, "dotenv", path, "--json")
	if err != nil {
		t.Fatalf("run --json failed: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]string{"A": "1", "B": "two words", "C": "x\ny"}, got); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", "{\n  // comment\n  \"k\": [1, 2,],\n}\n")
	b := writeFile(t, dir, "b.json", `{"x":"<y>"}`)

	if _, _, err := runForTest(t, "json", a); err == nil {
		t.Error("strict read of relaxed JSON succeeded, want error")
	}

	stdout, _, err := runForTest(t, "json", "--relaxed", "--spaces", "0", a, b)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if want := "{\"k\":[1,2]}\n{\"x\":\"<y>\"}\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}

	if _, _, err := runForTest(t, "json", "--relaxed", "--write", a); err != nil {
		t.Fatalf("run --write failed: %v", err)
	}
	got, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	if want := "{\n  \"k\": [\n    1,\n    2\n  ]\n}\n"; string(got) != want {
		t.Errorf("rewritten file = %q, want %q", got, want)
	}
}

func TestEnvFileFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.env", "TOOLBELT_TEST_FROM_FILE=loaded\n")
	t.Setenv("TOOLBELT_TEST_FROM_FILE", "")
	os.Unsetenv("TOOLBELT_TEST_FROM_FILE")

	stdout, _, err := runForTest(t, "--env-file", path, "env", "get", "TOOLBELT_TEST_FROM_FILE")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stdout != "loaded\n" {
		t.Errorf("stdout = %q, want %q", stdout, "loaded\n")
	}

	if _, _, err := runForTest(t, "--env-file", filepath.Join(dir, "missing.env"), "env", "get", "X"); err == nil {
		t.Error("missing env file succeeded, want error")
	}
}

func TestPrintCLIError(t *testing.T) {
	var buf bytes.Buffer
	printCLIError(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("nil error printed %q", buf.String())
	}
	printCLIError(&buf, &env.MissingError{Key: "HOME"})
	if !strings.Contains(buf.String(), "missing: ") || !strings.Contains(buf.String(), "HOME") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
