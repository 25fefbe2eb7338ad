// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package minimist parses command-line tokens into positional arguments and
// a tree of flag values without any declared schema.
//
// The parser is permissive: every token shape has an interpretation and
// Parse never fails. Flags that are not declared are inferred from their
// shape and the token that follows them.
//
// # Basic Usage
//
//	res := minimist.Parse(os.Args[1:], minimist.Options{
//	    Boolean: []string{"verbose"},
//	    String:  []string{"name"},
//	    Alias:   map[string][]string{"verbose": {"v"}},
//	    Default: map[string]any{"retries": 3},
//	})
//	fmt.Println(res.Positionals, res.Flags["verbose"], res.Flags["retries"])
//
// # Token Forms
//
//   - --name=value assigns value (numeric-looking values become float64)
//   - --no-name assigns false
//   - --name takes the next token as its value unless the flag is boolean
//     or the next token starts with "-"
//   - -abc sets a, b and c; -n5 and -n=5 set n to 5
//   - -- stops flag scanning; the rest is appended to the positionals, or
//     kept in Result.Tail when Options.DoubleDash is set
//
// Dotted names such as --db.host=x create nested maps in Result.Flags.
// Repeating a non-boolean flag collects its values into a []any.
package minimist
