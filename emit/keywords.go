// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"strings"

	"github.com/gogpu/shade/ir"
)

// UnnamedIdentifier is the default name for empty identifiers.
const UnnamedIdentifier = "_unnamed"

// hlslKeywords contains HLSL reserved words and the intrinsic names
// most likely to collide with user identifiers.
var hlslKeywords = map[string]struct{}{
	"AppendStructuredBuffer": {}, "Buffer": {}, "ByteAddressBuffer": {},
	"ConsumeStructuredBuffer": {}, "RWBuffer": {}, "RWByteAddressBuffer": {},
	"RWStructuredBuffer": {}, "RWTexture1D": {}, "RWTexture2D": {},
	"RWTexture3D": {}, "SamplerComparisonState": {}, "SamplerState": {},
	"StructuredBuffer": {}, "Texture1D": {}, "Texture2D": {},
	"Texture2DArray": {}, "Texture3D": {}, "TextureCube": {},
	"bool": {}, "break": {}, "case": {}, "cbuffer": {}, "centroid": {},
	"column_major": {}, "const": {}, "continue": {}, "default": {},
	"discard": {}, "do": {}, "double": {}, "else": {}, "extern": {},
	"false": {}, "float": {}, "for": {}, "groupshared": {}, "half": {},
	"if": {}, "in": {}, "inline": {}, "inout": {}, "int": {},
	"linear": {}, "matrix": {}, "namespace": {}, "nointerpolation": {},
	"noperspective": {}, "out": {}, "packoffset": {}, "precise": {},
	"register": {}, "return": {}, "row_major": {}, "sample": {},
	"sampler": {}, "shared": {}, "static": {}, "struct": {},
	"switch": {}, "tbuffer": {}, "technique": {}, "texture": {},
	"true": {}, "typedef": {}, "uint": {}, "uniform": {}, "unorm": {},
	"unsigned": {}, "vector": {}, "void": {}, "volatile": {}, "while": {},
	// Common intrinsics generated code may call.
	"abs": {}, "clamp": {}, "cross": {}, "ddx": {}, "ddy": {},
	"dot": {}, "lerp": {}, "max": {}, "min": {}, "mul": {},
	"normalize": {}, "pow": {}, "saturate": {}, "sqrt": {},
}

// glslKeywords contains GLSL reserved words including the ones
// reserved for future use that still reject identifiers.
var glslKeywords = map[string]struct{}{
	"active": {}, "asm": {}, "attribute": {}, "bool": {}, "break": {},
	"buffer": {}, "bvec2": {}, "bvec3": {}, "bvec4": {}, "case": {},
	"cast": {}, "centroid": {}, "coherent": {}, "common": {},
	"const": {}, "continue": {}, "default": {}, "discard": {},
	"do": {}, "double": {}, "else": {}, "enum": {}, "extern": {},
	"false": {}, "filter": {}, "fixed": {}, "flat": {}, "float": {},
	"for": {}, "fvec2": {}, "fvec3": {}, "fvec4": {}, "goto": {},
	"half": {}, "highp": {}, "if": {}, "iimage2D": {}, "image2D": {},
	"in": {}, "inline": {}, "inout": {}, "input": {}, "int": {},
	"invariant": {}, "isampler2D": {}, "ivec2": {}, "ivec3": {},
	"ivec4": {}, "layout": {}, "long": {}, "lowp": {}, "main": {},
	"mat2": {}, "mat3": {}, "mat4": {}, "mediump": {}, "namespace": {},
	"noperspective": {}, "out": {}, "output": {}, "partition": {},
	"patch": {}, "precision": {}, "public": {}, "readonly": {},
	"restrict": {}, "return": {}, "sample": {}, "sampler2D": {},
	"sampler2DArray": {}, "sampler3D": {}, "samplerCube": {},
	"short": {}, "sizeof": {}, "smooth": {}, "static": {},
	"struct": {}, "subroutine": {}, "superp": {}, "switch": {},
	"template": {}, "this": {}, "true": {}, "typedef": {},
	"uimage2D": {}, "uint": {}, "uniform": {}, "union": {},
	"unsigned": {}, "usampler2D": {}, "using": {}, "uvec2": {},
	"uvec3": {}, "uvec4": {}, "varying": {}, "vec2": {}, "vec3": {},
	"vec4": {}, "void": {}, "volatile": {}, "while": {}, "writeonly": {},
}

// cKeywords contains C reserved words plus the identifiers the
// generated prelude claims for itself.
var cKeywords = map[string]struct{}{
	"auto": {}, "break": {}, "case": {}, "char": {}, "const": {},
	"continue": {}, "default": {}, "do": {}, "double": {}, "else": {},
	"enum": {}, "extern": {}, "float": {}, "for": {}, "goto": {},
	"if": {}, "inline": {}, "int": {}, "long": {}, "register": {},
	"restrict": {}, "return": {}, "short": {}, "signed": {},
	"sizeof": {}, "static": {}, "struct": {}, "switch": {},
	"typedef": {}, "union": {}, "unsigned": {}, "void": {},
	"volatile": {}, "while": {},
	"shade_float2": {}, "shade_float3": {}, "shade_float4": {},
	"shade_texture_t": {}, "shade_sampler_t": {},
}

// hlslKeywordsLower holds the HLSL table lowered once; HLSL keyword
// matching is case-insensitive.
var hlslKeywordsLower = func() map[string]struct{} {
	m := make(map[string]struct{}, len(hlslKeywords))
	for k := range hlslKeywords {
		m[strings.ToLower(k)] = struct{}{}
	}
	return m
}()

// IsReserved reports whether name is a reserved word of the target
// dialect.
func IsReserved(target ir.Target, name string) bool {
	switch target {
	case ir.TargetGLSL:
		_, ok := glslKeywords[name]
		return ok
	case ir.TargetC, ir.TargetCPP:
		_, ok := cKeywords[name]
		return ok
	default:
		_, ok := hlslKeywordsLower[strings.ToLower(name)]
		return ok
	}
}

// Escape rewrites name so it is a legal, non-reserved identifier in
// the target dialect.
func Escape(target ir.Target, name string) string {
	if name == "" {
		return UnnamedIdentifier
	}
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if IsReserved(target, out) || strings.HasPrefix(out, "gl_") {
		out = out + "_"
	}
	return out
}

// linkageBase extracts the identifier part of a linkage name: the
// qualified name before the mangling marker, with scope separators
// flattened.
func linkageBase(name string) string {
	if i := strings.IndexByte(name, '#'); i >= 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, "::", "_")
}
