// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package env

import (
	"errors"
	"fmt"
)

// Type names the type a required variable must parse as.
type Type string

const (
	String  Type = "string"
	Number  Type = "number"
	Boolean Type = "boolean"
)

// Requirement describes a variable that Ensure checks.
type Requirement struct {
	Key string
	// Type, if set, is the type the value must parse as.
	Type Type
	// Check, if set, is called with the parsed value: a string, an int for
	// Number or a bool for Boolean.
	Check func(v any) bool
}

// Require returns a Requirement that key is set.
func Require(key string) Requirement {
	return Requirement{Key: key}
}

// ErrInvalid matches every error returned by Ensure.
var ErrInvalid = errors.New("invalid environment")

// MissingError is returned when a required variable is not set.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("no environment configuration for var %q", e.Key)
}

func (e *MissingError) Is(target error) bool { return target == ErrInvalid }

// TypeError is returned for a Requirement with an unknown Type.
type TypeError struct {
	Key  string
	Type Type
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("invalid expected type %q for var %q", e.Type, e.Key)
}

func (e *TypeError) Is(target error) bool { return target == ErrInvalid }

// errCheckFailed is wrapped by a ValidationError when Requirement.Check
// rejects a value.
var errCheckFailed = errors.New("did not pass check")

// ValidationError is returned when a value does not parse as the required
// type or is rejected by the check.
type ValidationError struct {
	Key   string
	Type  Type
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("value %q for var %q: %v", e.Value, e.Key, e.Err)
	}
	return fmt.Sprintf("value %q for var %q (%s): %v", e.Value, e.Key, e.Type, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// Ensure checks every requirement and returns the failures joined, or nil.
func (e *Env) Ensure(reqs ...Requirement) error {
	var errs []error
	for _, r := range reqs {
		if err := e.ensure(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Env) ensure(r Requirement) error {
	switch r.Type {
	case "", String, Number, Boolean:
	default:
		return &TypeError{Key: r.Key, Type: r.Type}
	}
	raw, ok := e.lookup(r.Key)
	if !ok {
		return &MissingError{Key: r.Key}
	}
	var v any = raw
	switch r.Type {
	case Number:
		n, err := leadingInt(raw)
		if err != nil {
			return &ValidationError{Key: r.Key, Type: r.Type, Value: raw, Err: err}
		}
		v = n
	case Boolean:
		b, ok := parseBool(raw)
		if !ok {
			return &ValidationError{Key: r.Key, Type: r.Type, Value: raw, Err: fmt.Errorf("%q is not a boolean", raw)}
		}
		v = b
	}
	if r.Check != nil && !r.Check(v) {
		return &ValidationError{Key: r.Key, Type: r.Type, Value: raw, Err: errCheckFailed}
	}
	return nil
}
