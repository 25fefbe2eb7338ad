// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command toolbelt exposes the toolbelt packages on the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/shayne/yargs"
	"github.com/yeetrun/toolbelt/pkg/dotenv"
	"github.com/yeetrun/toolbelt/pkg/env"
	"github.com/yeetrun/toolbelt/pkg/konsole"
	"github.com/yeetrun/toolbelt/pkg/logger"
	"github.com/yeetrun/toolbelt/pkg/tui"
	"golang.org/x/term"
	"tailscale.com/util/must"
)

type globalFlagsParsed struct {
	EnvFile string `flag:"env-file" help:"Load this .env file instead of .env and front.env"`
	NoColor bool   `flag:"no-color" help:"Disable colored output"`
}

// app holds the state shared by the subcommand handlers.
type app struct {
	stdout io.Writer
	stderr io.Writer
	colors tui.Colorizer
	log    *logger.Logger
	// tail holds the tokens after "--". They are kept away from the
	// dispatcher so tokens such as --help reach the parser untouched.
	tail []string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		printCLIError(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	result, err := yargs.ParseKnownFlags[globalFlagsParsed](args, yargs.KnownFlagsOptions{})
	if err != nil {
		return err
	}
	g := result.Flags

	if g.EnvFile != "" {
		if _, err := dotenv.Load(dotenv.Options{Path: g.EnvFile, Debug: env.Ok("FRONT_DEBUG")}); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	} else if _, err := dotenv.LoadExisting(must.Get(os.Getwd())); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}

	colorOK := !g.NoColor && isTerminal(stdout)
	color.NoColor = !colorOK

	a := &app{
		stdout: stdout,
		stderr: stderr,
		colors: tui.NewColorizer(colorOK),
	}
	a.log = logger.New(a.colors, konsole.WithOutput(stderr))

	head := result.RemainingArgs
	if i := slices.Index(head, "--"); i >= 0 {
		a.tail = head[i+1:]
		head = head[:i]
	}

	commands := map[string]yargs.SubcommandHandler{
		"parse":  a.handleParse,
		"dotenv": a.handleDotenv,
		"json":   a.handleJSON,
	}
	groups := map[string]yargs.Group{
		"env": {
			Description: "Read and check environment variables",
			Commands: map[string]yargs.SubcommandHandler{
				"get":    a.handleEnvGet,
				"ensure": a.handleEnvEnsure,
			},
		},
	}
	return yargs.RunSubcommandsWithGroups(ctx, head, buildHelpConfig(), globalFlagsParsed{}, commands, groups)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printCLIError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var ee *env.MissingError
	if errors.As(err, &ee) {
		fmt.Fprint(w, color.YellowString("missing: "))
	}
	fmt.Fprintln(w, color.RedString("error:"), err)
}

func buildHelpConfig() yargs.HelpConfig {
	return yargs.HelpConfig{
		Command: yargs.CommandInfo{
			Name:        "toolbelt",
			Description: "Parse arguments, read environment and .env files, and format JSON.",
			Examples: []string{
				"toolbelt parse -- -abc --name=bob file.txt",
				"toolbelt parse --spec cli.yaml --format yaml -- -v --out x",
				"toolbelt env get PORT --type number --default 8080",
				"toolbelt env ensure HOST PORT:number",
				"toolbelt dotenv .env --json",
				"toolbelt json config.json --spaces 2 --relaxed",
			},
		},
		SubCommands: map[string]yargs.SubCommandInfo{
			"parse": {
				Name:        "parse",
				Description: "Parse the tokens after -- and print the result",
				Usage:       "[--spec FILE] [--format json|yaml] -- TOKENS...",
			},
			"dotenv": {
				Name:        "dotenv",
				Description: "Print the pairs in a .env file",
				Usage:       "FILE [--json]",
			},
			"json": {
				Name:        "json",
				Description: "Reformat JSON files",
				Usage:       "FILE... [--spaces N] [--relaxed] [--write]",
			},
		},
		Groups: map[string]yargs.GroupInfo{
			"env": {
				Name:        "env",
				Description: "Read and check environment variables",
				Commands: map[string]yargs.SubCommandInfo{
					"get": {
						Name:        "get",
						Description: "Print a variable",
						Usage:       "KEY [--default V] [--type string|number|boolean]",
					},
					"ensure": {
						Name:        "ensure",
						Description: "Check that variables are set and parse as their type",
						Usage:       "KEY[:TYPE]...",
					},
				},
			},
		},
	}
}
