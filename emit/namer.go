// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"fmt"
	"strings"

	"github.com/gogpu/shade/ir"
)

// namer generates unique identifiers for one output unit. It tracks
// used names case-insensitively for HLSL, where the compiler matches
// keywords that way.
type namer struct {
	target    ir.Target
	usedNames map[string]struct{}
	counter   uint32
}

func newNamer(target ir.Target) *namer {
	return &namer{
		target:    target,
		usedNames: make(map[string]struct{}),
	}
}

// call generates a unique identifier based on base, escaping reserved
// words and appending a numeric suffix on collision.
func (n *namer) call(base string) string {
	escaped := Escape(n.target, base)
	if !n.isUsed(escaped) {
		n.mark(escaped)
		return escaped
	}
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if !n.isUsed(candidate) {
			n.mark(candidate)
			return candidate
		}
	}
}

// fromLinkage generates a unique identifier from a linkage name.
func (n *namer) fromLinkage(name string) string {
	return n.call(linkageBase(name))
}

// reserve marks a name as taken without generating anything.
func (n *namer) reserve(name string) {
	n.mark(name)
}

// clone copies the namer so a function body can add local names
// without leaking them into the module scope.
func (n *namer) clone() *namer {
	used := make(map[string]struct{}, len(n.usedNames))
	for k := range n.usedNames {
		used[k] = struct{}{}
	}
	return &namer{target: n.target, usedNames: used, counter: n.counter}
}

func (n *namer) isUsed(name string) bool {
	_, used := n.usedNames[n.fold(name)]
	return used
}

func (n *namer) mark(name string) {
	n.usedNames[n.fold(name)] = struct{}{}
}

func (n *namer) fold(name string) string {
	if n.target == ir.TargetHLSL {
		return strings.ToLower(name)
	}
	return name
}
