// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/shade/ir"
)

// binaryOperators maps arithmetic and comparison ops to their infix
// spelling, shared by every dialect.
var binaryOperators = map[ir.Op]string{
	ir.OpAdd:       "+",
	ir.OpSub:       "-",
	ir.OpMul:       "*",
	ir.OpDiv:       "/",
	ir.OpEq:        "==",
	ir.OpNeq:       "!=",
	ir.OpLess:      "<",
	ir.OpLessEq:    "<=",
	ir.OpGreater:   ">",
	ir.OpGreaterEq: ">=",
}

// formatFloat renders a float literal with an explicit decimal point,
// which every dialect accepts.
func formatFloat(bits uint64) string {
	v := math.Float64frombits(bits)
	s := strconv.FormatFloat(v, 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// operandRef returns the expression text referring to value: a
// previously assigned name, an lvalue path, or an inline literal.
func (w *Writer) operandRef(value ir.InstID) (string, error) {
	if name, ok := w.names[value]; ok {
		return name, nil
	}
	m := w.m
	switch m.Op(value) {
	case ir.OpBoolLit:
		if m.Bits(value) != 0 {
			return "true", nil
		}
		return "false", nil
	case ir.OpIntLit:
		return strconv.FormatInt(int64(m.Bits(value)), 10), nil
	case ir.OpFloatLit:
		return formatFloat(m.Bits(value)), nil
	case ir.OpStringLit:
		return "", NewError(ErrUnsupportedFeature, "string literals cannot appear in shader expressions")
	}
	return "", Errorf(ErrMalformedModule, "%s used before definition", m.Op(value))
}

// tempName assigns and returns the temporary identifier for a body
// value.
func (w *Writer) tempName(id ir.InstID) string {
	name := fmt.Sprintf("_e%d", id)
	w.names[id] = name
	return name
}

// assign writes one temporary assignment for a typed body value.
func (w *Writer) assign(id ir.InstID, expr string) error {
	t, err := w.typeName(w.m.TypeOf(id))
	if err != nil {
		return err
	}
	w.line("%s %s = %s;", t, w.tempName(id), expr)
	return nil
}

// emitInst renders one non-terminator body instruction.
func (w *Writer) emitInst(id ir.InstID) error {
	m := w.m
	op := m.Op(id)
	switch op {
	case ir.OpVar:
		pointee := m.Operand(m.TypeOf(id), 0)
		base, suffix, err := w.typeParts(pointee)
		if err != nil {
			return err
		}
		name := w.namer.call("v")
		w.names[id] = name
		w.line("%s %s%s;", base, name, suffix)
		return nil

	case ir.OpLoad:
		src, err := w.operandRef(m.Operand(id, 0))
		if err != nil {
			return err
		}
		return w.assign(id, src)

	case ir.OpStore:
		dst, err := w.operandRef(m.Operand(id, 0))
		if err != nil {
			return err
		}
		val, err := w.operandRef(m.Operand(id, 1))
		if err != nil {
			return err
		}
		w.line("%s = %s;", dst, val)
		return nil

	case ir.OpFieldAddress:
		path, err := w.fieldPath(id)
		if err != nil {
			return err
		}
		w.names[id] = path
		return nil

	case ir.OpFieldExtract:
		path, err := w.fieldPath(id)
		if err != nil {
			return err
		}
		return w.assign(id, path)

	case ir.OpElemExtract:
		base, err := w.operandRef(m.Operand(id, 0))
		if err != nil {
			return err
		}
		index, err := w.operandRef(m.Operand(id, 1))
		if err != nil {
			return err
		}
		if w.target() == ir.TargetC && m.Op(m.TypeOf(m.Operand(id, 0))) == ir.OpVecType {
			return w.assign(id, fmt.Sprintf("%s.v[%s]", base, index))
		}
		return w.assign(id, fmt.Sprintf("%s[%s]", base, index))

	case ir.OpConstruct:
		return w.emitConstruct(id)

	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv,
		ir.OpEq, ir.OpNeq, ir.OpLess, ir.OpLessEq, ir.OpGreater, ir.OpGreaterEq:
		return w.emitBinary(id, op)

	case ir.OpNeg:
		v, err := w.operandRef(m.Operand(id, 0))
		if err != nil {
			return err
		}
		if expr, ok, err := w.cVectorUnary("neg", id, v); err != nil {
			return err
		} else if ok {
			return w.assign(id, expr)
		}
		return w.assign(id, fmt.Sprintf("-(%s)", v))

	case ir.OpSelect:
		cond, err := w.operandRef(m.Operand(id, 0))
		if err != nil {
			return err
		}
		accept, err := w.operandRef(m.Operand(id, 1))
		if err != nil {
			return err
		}
		reject, err := w.operandRef(m.Operand(id, 2))
		if err != nil {
			return err
		}
		return w.assign(id, fmt.Sprintf("(%s ? %s : %s)", cond, accept, reject))

	case ir.OpCall:
		callee := m.Operand(id, 0)
		name, ok := w.names[callee]
		if !ok {
			return Errorf(ErrMalformedModule, "call to an unrendered %s", m.Op(callee))
		}
		args, err := w.operandRefs(m.Operands(id)[1:])
		if err != nil {
			return err
		}
		expr := fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
		if w.isVoid(m.TypeOf(id)) {
			w.line("%s;", expr)
			return nil
		}
		return w.assign(id, expr)

	case ir.OpIntrinsicCall:
		return w.emitIntrinsic(id)

	case ir.OpSpecialize:
		return NewError(ErrUnsupportedFeature, "an unspecialized generic reached emission")
	}
	return Errorf(ErrUnsupportedFeature, "%s cannot be rendered", op)
}

// fieldPath renders base.member access for field extract and address.
func (w *Writer) fieldPath(id ir.InstID) (string, error) {
	m := w.m
	base, err := w.operandRef(m.Operand(id, 0))
	if err != nil {
		return "", err
	}
	key := m.Operand(id, 1)
	member, ok := w.names[key]
	if !ok {
		member = Escape(w.target(), m.Text(key))
	}
	return fmt.Sprintf("%s.%s", base, member), nil
}

func (w *Writer) operandRefs(operands []ir.InstID) ([]string, error) {
	out := make([]string, len(operands))
	for i, o := range operands {
		ref, err := w.operandRef(o)
		if err != nil {
			return nil, err
		}
		out[i] = ref
	}
	return out, nil
}

func (w *Writer) isVoid(typ ir.InstID) bool {
	return typ == ir.Nil || w.m.Op(typ) == ir.OpVoidType
}

// emitConstruct renders composite construction.
func (w *Writer) emitConstruct(id ir.InstID) error {
	typ := w.m.TypeOf(id)
	t, err := w.typeName(typ)
	if err != nil {
		return err
	}
	args, err := w.operandRefs(w.m.Operands(id))
	if err != nil {
		return err
	}
	joined := strings.Join(args, ", ")
	if w.target() == ir.TargetC {
		if w.m.Op(typ) == ir.OpVecType {
			return w.assign(id, fmt.Sprintf("(%s){{%s}}", t, joined))
		}
		return w.assign(id, fmt.Sprintf("(%s){%s}", t, joined))
	}
	return w.assign(id, fmt.Sprintf("%s(%s)", t, joined))
}

// emitBinary renders arithmetic and comparisons, dispatching vector
// and matrix cases to their dialect forms.
func (w *Writer) emitBinary(id ir.InstID, op ir.Op) error {
	m := w.m
	l, err := w.operandRef(m.Operand(id, 0))
	if err != nil {
		return err
	}
	r, err := w.operandRef(m.Operand(id, 1))
	if err != nil {
		return err
	}

	lt := m.TypeOf(m.Operand(id, 0))
	rt := m.TypeOf(m.Operand(id, 1))
	matInvolved := (lt != ir.Nil && m.Op(lt) == ir.OpMatType) || (rt != ir.Nil && m.Op(rt) == ir.OpMatType)

	if matInvolved {
		switch w.target() {
		case ir.TargetGLSL:
			// Infix covers matrices.
		case ir.TargetC:
			return NewError(ErrUnsupportedFeature, "matrix arithmetic in C output")
		default:
			if op == ir.OpMul {
				return w.assign(id, fmt.Sprintf("mul(%s, %s)", l, r))
			}
		}
	}

	if w.target() == ir.TargetC {
		if helper, ok := binaryHelperNames[op]; ok {
			if expr, handled, err := w.cVectorBinary(helper, id, l, r); err != nil {
				return err
			} else if handled {
				return w.assign(id, expr)
			}
		}
	}

	return w.assign(id, fmt.Sprintf("(%s %s %s)", l, binaryOperators[op], r))
}

// binaryHelperNames maps ops to the C helper verb used when operands
// are vectors.
var binaryHelperNames = map[ir.Op]string{
	ir.OpAdd: "add",
	ir.OpSub: "sub",
	ir.OpMul: "mul",
	ir.OpDiv: "div",
}

// cVectorBinary routes a vector-typed binary op through a generated C
// helper. It reports handled=false when the operands are scalar.
func (w *Writer) cVectorBinary(verb string, id ir.InstID, l, r string) (string, bool, error) {
	if w.target() != ir.TargetC {
		return "", false, nil
	}
	typ := w.m.TypeOf(id)
	if typ == ir.Nil || w.m.Op(typ) != ir.OpVecType {
		return "", false, nil
	}
	lanes := int(w.m.Bits(w.m.Operand(typ, 1)))
	w.needCVec(lanes)
	w.needCBinaryHelper(lanes, verb)
	return fmt.Sprintf("shade_float%d_%s(%s, %s)", lanes, verb, l, r), true, nil
}

// cVectorUnary is cVectorBinary for single-operand ops.
func (w *Writer) cVectorUnary(verb string, id ir.InstID, v string) (string, bool, error) {
	if w.target() != ir.TargetC {
		return "", false, nil
	}
	typ := w.m.TypeOf(id)
	if typ == ir.Nil || w.m.Op(typ) != ir.OpVecType {
		return "", false, nil
	}
	lanes := int(w.m.Bits(w.m.Operand(typ, 1)))
	w.needCVec(lanes)
	w.needCUnaryHelper(lanes, verb)
	return fmt.Sprintf("shade_float%d_%s(%s)", lanes, verb, v), true, nil
}

// cScalarMath maps canonical intrinsic names to their libm spelling.
var cScalarMath = map[string]string{
	"sqrt":  "sqrtf",
	"abs":   "fabsf",
	"min":   "fminf",
	"max":   "fmaxf",
	"pow":   "powf",
	"floor": "floorf",
	"ceil":  "ceilf",
	"sin":   "sinf",
	"cos":   "cosf",
}

// emitIntrinsic renders a built-in call in the dialect's spelling.
func (w *Writer) emitIntrinsic(id ir.InstID) error {
	m := w.m
	name := m.Text(id)
	args, err := w.operandRefs(m.Operands(id))
	if err != nil {
		return err
	}

	var expr string
	switch w.target() {
	case ir.TargetGLSL:
		switch name {
		case "sample":
			if len(args) != 3 {
				return Errorf(ErrMalformedModule, "sample takes a texture, a sampler and coordinates, got %d operands", len(args))
			}
			// GLSL combines texture and sampler; the sampler operand
			// has no rendering.
			expr = fmt.Sprintf("texture(%s, %s)", args[0], args[2])
		case "lerp":
			expr = fmt.Sprintf("mix(%s)", strings.Join(args, ", "))
		case "frac":
			expr = fmt.Sprintf("fract(%s)", strings.Join(args, ", "))
		case "saturate":
			if len(args) != 1 {
				return Errorf(ErrMalformedModule, "saturate takes one operand, got %d", len(args))
			}
			expr = fmt.Sprintf("clamp(%s, 0.0, 1.0)", args[0])
		default:
			expr = fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
		}

	case ir.TargetC:
		if libm, ok := cScalarMath[name]; ok && w.scalarResult(id) {
			expr = fmt.Sprintf("%s(%s)", libm, strings.Join(args, ", "))
			break
		}
		sig, err := w.cIntrinsicSignature(id, name)
		if err != nil {
			return err
		}
		w.needCExtern(sig)
		expr = fmt.Sprintf("shade_%s(%s)", name, strings.Join(args, ", "))

	default:
		switch name {
		case "sample":
			if len(args) != 3 {
				return Errorf(ErrMalformedModule, "sample takes a texture, a sampler and coordinates, got %d operands", len(args))
			}
			expr = fmt.Sprintf("%s.Sample(%s, %s)", args[0], args[1], args[2])
		default:
			expr = fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
		}
	}

	if w.isVoid(m.TypeOf(id)) {
		w.line("%s;", expr)
		return nil
	}
	return w.assign(id, expr)
}

// scalarResult reports whether the instruction's type is a scalar.
func (w *Writer) scalarResult(id ir.InstID) bool {
	typ := w.m.TypeOf(id)
	if typ == ir.Nil {
		return false
	}
	switch w.m.Op(typ) {
	case ir.OpBoolType, ir.OpIntType, ir.OpUIntType, ir.OpFloatType:
		return true
	}
	return false
}

// cIntrinsicSignature builds the extern declaration for a vector
// intrinsic the C runtime must supply.
func (w *Writer) cIntrinsicSignature(id ir.InstID, name string) (string, error) {
	result, err := w.typeName(w.m.TypeOf(id))
	if err != nil {
		return "", err
	}
	params := make([]string, 0, len(w.m.Operands(id)))
	for _, o := range w.m.Operands(id) {
		t, err := w.typeName(w.m.TypeOf(o))
		if err != nil {
			return "", err
		}
		params = append(params, t)
	}
	return fmt.Sprintf("%s shade_%s(%s);", result, name, strings.Join(params, ", ")), nil
}
