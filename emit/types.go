// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"fmt"

	"github.com/gogpu/shade/ir"
)

// scalarName returns the dialect spelling of a scalar type op.
func (w *Writer) scalarName(op ir.Op) (string, error) {
	switch op {
	case ir.OpVoidType:
		return "void", nil
	case ir.OpBoolType:
		return "bool", nil
	case ir.OpIntType:
		return "int", nil
	case ir.OpUIntType:
		if w.target() == ir.TargetC {
			return "unsigned int", nil
		}
		return "uint", nil
	case ir.OpFloatType:
		return "float", nil
	}
	return "", Errorf(ErrUnsupportedFeature, "no scalar spelling for %s", op)
}

// glslVecPrefix maps a scalar element to the GLSL vector prefix.
func glslVecPrefix(elem ir.Op) (string, error) {
	switch elem {
	case ir.OpFloatType:
		return "vec", nil
	case ir.OpIntType:
		return "ivec", nil
	case ir.OpUIntType:
		return "uvec", nil
	case ir.OpBoolType:
		return "bvec", nil
	}
	return "", Errorf(ErrUnsupportedFeature, "GLSL has no vector of %s", elem)
}

// typeName returns the dialect spelling of typ for use in expressions
// and declarations. Array types split into a declarator instead; use
// typeParts for declarations.
func (w *Writer) typeName(typ ir.InstID) (string, error) {
	if typ == ir.Nil {
		return "", NewError(ErrMalformedModule, "instruction has no type")
	}
	m := w.m
	op := m.Op(typ)
	switch op {
	case ir.OpVoidType, ir.OpBoolType, ir.OpIntType, ir.OpUIntType, ir.OpFloatType:
		return w.scalarName(op)

	case ir.OpVecType:
		elem := m.Op(m.Operand(typ, 0))
		lanes := m.Bits(m.Operand(typ, 1))
		switch w.target() {
		case ir.TargetGLSL:
			prefix, err := glslVecPrefix(elem)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s%d", prefix, lanes), nil
		case ir.TargetC:
			if elem != ir.OpFloatType {
				return "", Errorf(ErrUnsupportedFeature, "C output supports float vectors only, not %s", elem)
			}
			w.needCVec(int(lanes))
			return fmt.Sprintf("shade_float%d", lanes), nil
		default:
			name, err := w.scalarName(elem)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s%d", name, lanes), nil
		}

	case ir.OpMatType:
		elem := m.Op(m.Operand(typ, 0))
		cols := m.Bits(m.Operand(typ, 1))
		rows := m.Bits(m.Operand(typ, 2))
		if elem != ir.OpFloatType {
			return "", Errorf(ErrUnsupportedFeature, "matrices of %s are not supported", elem)
		}
		switch w.target() {
		case ir.TargetGLSL:
			if cols == rows {
				return fmt.Sprintf("mat%d", cols), nil
			}
			return fmt.Sprintf("mat%dx%d", cols, rows), nil
		case ir.TargetC:
			w.needCMat(int(cols), int(rows))
			return fmt.Sprintf("shade_float%dx%d", cols, rows), nil
		default:
			return fmt.Sprintf("float%dx%d", cols, rows), nil
		}

	case ir.OpStructType:
		if name, ok := w.names[typ]; ok {
			return name, nil
		}
		return "", NewError(ErrMalformedModule, "struct type used before its declaration")

	case ir.OpTextureType:
		switch w.target() {
		case ir.TargetGLSL:
			return "sampler2D", nil
		case ir.TargetC:
			return "shade_texture_t", nil
		default:
			elem, err := w.typeName(m.Operand(typ, 0))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Texture2D<%s>", elem), nil
		}

	case ir.OpSamplerType:
		switch w.target() {
		case ir.TargetGLSL:
			return "", NewError(ErrUnsupportedFeature, "GLSL output has no separate sampler type")
		case ir.TargetC:
			return "shade_sampler_t", nil
		default:
			return "SamplerState", nil
		}

	case ir.OpConstantBufferType:
		if w.target() == ir.TargetHLSL {
			elem, err := w.typeName(m.Operand(typ, 0))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("ConstantBuffer<%s>", elem), nil
		}
		return "", Errorf(ErrUnsupportedFeature, "constant buffers have no value spelling in %s output", w.target().Name())
	}
	return "", Errorf(ErrUnsupportedFeature, "%s cannot be spelled in %s output", op, w.target().Name())
}

// typeParts splits typ into the declarator pair used by variable and
// parameter declarations: arrays move their extent to the suffix.
func (w *Writer) typeParts(typ ir.InstID) (base, suffix string, err error) {
	if typ != ir.Nil && w.m.Op(typ) == ir.OpArrayType {
		length := w.m.Bits(w.m.Operand(typ, 1))
		base, err = w.typeName(w.m.Operand(typ, 0))
		return base, fmt.Sprintf("[%d]", length), err
	}
	base, err = w.typeName(typ)
	return base, "", err
}
