// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package minimist

import "strings"

// splitPath splits a dotted flag name into its path segments.
func splitPath(key string) []string {
	return strings.Split(key, ".")
}

// walk follows every segment but the last, creating missing levels when
// create is set. It returns nil when a segment resolves to a non-map value.
func walk(root map[string]any, path []string, create bool) map[string]any {
	node := root
	for _, seg := range path[:len(path)-1] {
		next, ok := node[seg]
		if !ok {
			if !create {
				return nil
			}
			child := make(map[string]any)
			node[seg] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// hasPath reports whether the exact dotted path is present in root.
func hasPath(root map[string]any, path []string) bool {
	node := walk(root, path, false)
	if node == nil {
		return false
	}
	_, ok := node[path[len(path)-1]]
	return ok
}

// lookupPath returns the value stored at the dotted path.
func lookupPath(root map[string]any, path []string) (any, bool) {
	node := walk(root, path, false)
	if node == nil {
		return nil, false
	}
	v, ok := node[path[len(path)-1]]
	return v, ok
}
