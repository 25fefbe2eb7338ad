// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shayne/yargs"
	"github.com/yeetrun/toolbelt/pkg/dotenv"
	"github.com/yeetrun/toolbelt/pkg/env"
	"github.com/yeetrun/toolbelt/pkg/flagspec"
	"github.com/yeetrun/toolbelt/pkg/jsonfile"
	"github.com/yeetrun/toolbelt/pkg/minimist"
	"gopkg.in/yaml.v3"
)

// stripCommand drops the subcommand name the dispatcher leaves in args.
func stripCommand(args []string, name string) []string {
	if len(args) > 0 && args[0] == name {
		return args[1:]
	}
	return args
}

type parseFlagsParsed struct {
	Spec   string `flag:"spec" help:"YAML or TOML file with parser options"`
	Format string `flag:"format" help:"Output format: json or yaml"`
}

func (a *app) handleParse(ctx context.Context, args []string) error {
	res, err := yargs.ParseFlags[parseFlagsParsed](stripCommand(args, "parse"))
	if err != nil {
		return err
	}
	f := res.Flags

	var opts minimist.Options
	if f.Spec != "" {
		if opts, err = flagspec.Load(f.Spec); err != nil {
			return err
		}
	}
	tokens := append(res.Args, a.tail...)
	parsed := minimist.Args(tokens, opts)

	var out []byte
	switch f.Format {
	case "", "json":
		out, err = jsonfile.Marshal(parsed, jsonfile.WriteOptions{Spaces: 2})
	case "yaml":
		out, err = yaml.Marshal(parsed.Map())
	default:
		return fmt.Errorf("unsupported format %q", f.Format)
	}
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(out)
	return err
}

type envGetFlagsParsed struct {
	Default *string `flag:"default" help:"Value to print when KEY is unset"`
	Type    string  `flag:"type" help:"Value type: string, number or boolean"`
}

func (a *app) handleEnvGet(ctx context.Context, args []string) error {
	res, err := yargs.ParseFlags[envGetFlagsParsed](stripCommand(args, "get"))
	if err != nil {
		return err
	}
	if len(res.Args) != 1 {
		return errors.New("env get takes exactly one KEY")
	}
	key, f := res.Args[0], res.Flags
	if !env.Ok(key) && f.Default == nil {
		return &env.MissingError{Key: key}
	}
	def := ""
	if f.Default != nil {
		def = *f.Default
	}

	var v string
	switch env.Type(f.Type) {
	case "", env.String:
		v = env.Get(key, def)
	case env.Number:
		n := 0
		if def != "" {
			if n, err = strconv.Atoi(def); err != nil {
				return fmt.Errorf("invalid number default %q", def)
			}
		}
		v = strconv.Itoa(env.GetNumber(key, n))
	case env.Boolean:
		b := false
		if def != "" {
			if b, err = strconv.ParseBool(def); err != nil {
				return fmt.Errorf("invalid boolean default %q", def)
			}
		}
		v = strconv.FormatBool(env.GetBool(key, b))
	default:
		return fmt.Errorf("unsupported type %q", f.Type)
	}
	_, err = fmt.Fprintln(a.stdout, v)
	return err
}

func (a *app) handleEnvEnsure(ctx context.Context, args []string) error {
	res, err := yargs.ParseFlags[struct{}](stripCommand(args, "ensure"))
	if err != nil {
		return err
	}
	if len(res.Args) == 0 {
		return errors.New("env ensure needs at least one KEY")
	}
	reqs, err := parseRequirements(res.Args)
	if err != nil {
		return err
	}
	if err := env.Ensure(reqs...); err != nil {
		return err
	}
	a.log.Good(fmt.Sprintf("%d variable(s) ok", len(reqs)))
	return nil
}

// parseRequirements reads KEY or KEY:TYPE arguments.
func parseRequirements(args []string) ([]env.Requirement, error) {
	reqs := make([]env.Requirement, 0, len(args))
	for _, arg := range args {
		key, typ, _ := strings.Cut(arg, ":")
		r := env.Require(key)
		switch t := env.Type(typ); t {
		case "":
		case env.String, env.Number, env.Boolean:
			r.Type = t
		default:
			return nil, fmt.Errorf("%s: unsupported type %q", key, typ)
		}
		reqs = append(reqs, r)
	}
	return reqs, nil
}

type dotenvFlagsParsed struct {
	JSON bool `flag:"json" help:"Print the pairs as a JSON object"`
}

func (a *app) handleDotenv(ctx context.Context, args []string) error {
	res, err := yargs.ParseFlags[dotenvFlagsParsed](stripCommand(args, "dotenv"))
	if err != nil {
		return err
	}
	if len(res.Args) != 1 {
		return errors.New("dotenv takes exactly one FILE")
	}
	f, err := os.Open(res.Args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	pairs, err := dotenv.ParseWithLogf(f, func(format string, args ...any) {
		a.log.Warn(fmt.Sprintf(format, args...))
	})
	if err != nil {
		return err
	}

	if !res.Flags.JSON {
		return dotenv.Marshal(a.stdout, pairs)
	}
	out, err := jsonfile.Marshal(pairs, jsonfile.WriteOptions{Spaces: 2})
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(out)
	return err
}

type jsonFlagsParsed struct {
	Spaces  *int `flag:"spaces" help:"Indent width, 0 for compact output (default 2)"`
	Relaxed bool `flag:"relaxed" help:"Accept comments and trailing commas"`
	Write   bool `flag:"write" short:"w" help:"Rewrite the files in place"`
}

func (a *app) handleJSON(ctx context.Context, args []string) error {
	res, err := yargs.ParseFlags[jsonFlagsParsed](stripCommand(args, "json"))
	if err != nil {
		return err
	}
	names := res.Args
	if len(names) == 0 {
		return errors.New("json needs at least one FILE")
	}
	f := res.Flags
	wo := jsonfile.WriteOptions{Spaces: 2}
	if f.Spaces != nil {
		wo.Spaces = *f.Spaces
	}

	docs, err := jsonfile.ReadFiles[any](ctx, names, jsonfile.ReadOptions{Relaxed: f.Relaxed})
	if err != nil {
		return err
	}
	for i, doc := range docs {
		if f.Write {
			if err := jsonfile.WriteFile(names[i], doc, wo); err != nil {
				return err
			}
			a.log.Info(fmt.Sprintf("wrote %s", names[i]))
			continue
		}
		out, err := jsonfile.Marshal(doc, wo)
		if err != nil {
			return err
		}
		if _, err := a.stdout.Write(out); err != nil {
			return err
		}
	}
	return nil
}
