// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"testing"

	"github.com/gogpu/shade/ir"
)

func TestNamer_Call(t *testing.T) {
	n := newNamer(ir.TargetGLSL)

	got := n.call("position")
	if got != "position" {
		t.Errorf("call(\"position\") = %q, want \"position\"", got)
	}

	// Same base again must get a suffix.
	got = n.call("position")
	if got == "position" {
		t.Error("expected a unique name for the second call")
	}
}

func TestNamer_CaseFoldingHLSL(t *testing.T) {
	n := newNamer(ir.TargetHLSL)

	first := n.call("Color")
	second := n.call("color")
	if first == second {
		t.Errorf("HLSL names %q and %q must differ", first, second)
	}
	if second == "color" {
		t.Error("HLSL matching is case-insensitive; \"color\" collides with \"Color\"")
	}
}

func TestNamer_CaseSensitiveGLSL(t *testing.T) {
	n := newNamer(ir.TargetGLSL)

	n.call("Color")
	if got := n.call("color"); got != "color" {
		t.Errorf("GLSL names are case-sensitive; got %q, want \"color\"", got)
	}
}

func TestNamer_ReservedWord(t *testing.T) {
	n := newNamer(ir.TargetGLSL)

	if got := n.call("float"); got != "float_" {
		t.Errorf("call(\"float\") = %q, want \"float_\"", got)
	}
}

func TestNamer_Reserve(t *testing.T) {
	n := newNamer(ir.TargetGLSL)
	n.reserve("main")

	if got := n.call("main"); got == "main" {
		t.Error("reserved name must not be handed out again")
	}
}

func TestNamer_FromLinkage(t *testing.T) {
	n := newNamer(ir.TargetGLSL)

	if got := n.fromLinkage("sqr#(float)"); got != "sqr" {
		t.Errorf("fromLinkage(\"sqr#(float)\") = %q, want \"sqr\"", got)
	}
	if got := n.fromLinkage("color::ramp#(float)"); got != "color_ramp" {
		t.Errorf("fromLinkage scope flattening = %q, want \"color_ramp\"", got)
	}
}

func TestNamer_Clone(t *testing.T) {
	n := newNamer(ir.TargetGLSL)
	n.call("shared")

	local := n.clone()
	if got := local.call("shared"); got == "shared" {
		t.Error("clone must carry over used names")
	}
	local.call("local_only")

	// Local additions must not leak back.
	if got := n.call("local_only"); got != "local_only" {
		t.Errorf("original namer saw a clone-local name; got %q", got)
	}
}
