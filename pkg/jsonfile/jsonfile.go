// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsonfile reads and writes JSON files.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/tailscale/hujson"
	"golang.org/x/sync/errgroup"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ReadOptions configures ReadFile.
type ReadOptions struct {
	// Lenient ignores decode errors. Errors reading the file are still
	// returned.
	Lenient bool
	// Relaxed accepts JSON with comments and trailing commas.
	Relaxed bool
}

// ReadFile decodes the JSON file name into v. A leading UTF-8 byte order
// mark is skipped. Decode errors are prefixed with the file name.
func ReadFile(name string, v any, opts ReadOptions) error {
	b, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if err := decode(b, v, opts.Relaxed); err != nil {
		if opts.Lenient {
			return nil
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func decode(b []byte, v any, relaxed bool) error {
	b = bytes.TrimPrefix(b, utf8BOM)
	if relaxed {
		std, err := hujson.Standardize(b)
		if err != nil {
			return err
		}
		b = std
	}
	return json.Unmarshal(b, v)
}

// ReadFiles decodes every file in names concurrently. Results are in the
// same order as names. The first error cancels the remaining reads.
func ReadFiles[T any](ctx context.Context, names []string, opts ReadOptions) ([]T, error) {
	out := make([]T, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return ReadFile(name, &out[i], opts)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteOptions configures Marshal and WriteFile.
type WriteOptions struct {
	// Spaces indents nested values by this many spaces, up to 10. Zero
	// writes compact JSON.
	Spaces int
	// Indent is used as the indent instead of Spaces when set.
	Indent string
	// EOL replaces every newline in the output and terminates it. It
	// defaults to "\n".
	EOL string
	// Perm is the mode for new files. It defaults to the mode of the file
	// being replaced, or 0644.
	Perm fs.FileMode
}

func (o WriteOptions) indent() string {
	if o.Indent != "" {
		return o.Indent
	}
	return strings.Repeat(" ", min(max(o.Spaces, 0), 10))
}

// Marshal encodes v as JSON terminated by opts.EOL. HTML characters are not
// escaped.
func Marshal(v any, opts WriteOptions) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", opts.indent())
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	b := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	eol := opts.EOL
	if eol == "" {
		eol = "\n"
	}
	if eol != "\n" {
		b = bytes.ReplaceAll(b, []byte("\n"), []byte(eol))
	}
	return append(b, eol...), nil
}

// WriteFile encodes v and writes it to name. It writes to a temporary file
// and then moves it into place, so readers never see a partial file.
func WriteFile(name string, v any, opts WriteOptions) (err error) {
	b, err := Marshal(v, opts)
	if err != nil {
		return err
	}

	mode := opts.Perm
	if mode == 0 {
		mode = 0644
		if st, err := os.Stat(name); err == nil {
			mode = st.Mode().Perm()
		}
	}

	tempDst := name + ".tmp"
	f, err := os.OpenFile(tempDst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		f.Close()
		if err == nil {
			err = os.Rename(tempDst, name)
		}
		if err != nil {
			os.Remove(tempDst)
		}
	}()

	if _, err = f.Write(b); err != nil {
		return err
	}
	return f.Sync()
}
