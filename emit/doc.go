// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package emit generates shader source text from linked modules.
//
// One Compile call renders one entry point for one dialect: HLSL,
// GLSL or C. The input is expected to be the output of the linker:
// one module containing the entry point's transitive closure, with
// layouts attached. Control flow support is narrow: straight-line
// code plus two-way branches that rejoin or return. Anything else
// reports ErrUnsupportedFeature.
package emit
