// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/shade/ir"
)

// Writer renders one linked module into a single source file of the
// target dialect. A Writer is used for exactly one Compile call.
type Writer struct {
	m    *ir.Module
	opts Options

	out    strings.Builder
	indent int

	// names maps rendered instructions to the expression text that
	// refers to them: identifiers for declarations, lvalue paths for
	// field addresses, temporaries for body values.
	names map[ir.InstID]string
	namer *namer
	info  *Info

	// entryOutName is the GLSL output variable the entry's return
	// value is assigned to. Empty outside GLSL entry rendering.
	entryOutName string

	// C prelude requirements collected while rendering.
	cVecs    map[int]bool
	cMats    map[[2]int]bool
	cBinary  map[cHelperKey]bool
	cUnary   map[cHelperKey]bool
	cExterns map[string]bool
}

type cHelperKey struct {
	lanes int
	verb  string
}

// Compile renders the entry point function of a linked module and
// everything it depends on as source text in the dialect selected by
// opts.Target. It returns the source, a description of the rendered
// interface, and the first error encountered.
func Compile(m *ir.Module, entry ir.InstID, opts Options) (string, *Info, error) {
	if m == nil {
		return "", nil, NewError(ErrMalformedModule, "nil module")
	}
	if !m.Valid(entry) || m.Op(entry) != ir.OpFunc {
		return "", nil, NewError(ErrBadEntryPoint, "entry point is not a function")
	}
	if m.FirstBlock(entry) == ir.Nil {
		return "", nil, NewError(ErrBadEntryPoint, "entry point has no body")
	}
	if opts.GLSLVersion == 0 {
		opts.GLSLVersion = 450
	}

	w := &Writer{
		m:        m,
		opts:     opts,
		names:    make(map[ir.InstID]string),
		namer:    newNamer(opts.Target),
		cVecs:    make(map[int]bool),
		cMats:    make(map[[2]int]bool),
		cBinary:  make(map[cHelperKey]bool),
		cUnary:   make(map[cHelperKey]bool),
		cExterns: make(map[string]bool),
	}

	stage := opts.Stage
	entryName := opts.EntryPointName
	if d, ok := m.FindDecoration(entry, ir.DecEntryPoint); ok {
		stage = d.Stage
		if entryName == "" {
			entryName = d.Text
		}
	}
	if entryName == "" {
		if ln, ok := m.LinkageName(entry); ok {
			entryName = linkageBase(ln)
		} else {
			entryName = "main"
		}
	}
	if w.target() == ir.TargetGLSL {
		entryName = "main"
	} else {
		entryName = Escape(w.target(), entryName)
	}
	w.namer.reserve(entryName)
	w.info = &Info{EntryPoint: entryName, Stage: stage, Target: opts.Target}

	if err := w.declareStructs(); err != nil {
		return "", nil, err
	}
	if err := w.declareGlobals(); err != nil {
		return "", nil, err
	}
	if err := w.declareFunctions(entry); err != nil {
		return "", nil, err
	}
	if err := w.emitEntry(entry, entryName, stage); err != nil {
		return "", nil, err
	}

	var src strings.Builder
	w.writeHeader(&src)
	src.WriteString(w.out.String())
	return src.String(), w.info, nil
}

// target returns the dialect the Writer renders. C++ output shares
// the C renderer.
func (w *Writer) target() ir.Target {
	if w.opts.Target == ir.TargetCPP {
		return ir.TargetC
	}
	return w.opts.Target
}

func (w *Writer) line(format string, args ...any) {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
	fmt.Fprintf(&w.out, format, args...)
	w.out.WriteByte('\n')
}

func (w *Writer) blank() {
	w.out.WriteByte('\n')
}

func (w *Writer) needCVec(lanes int)      { w.cVecs[lanes] = true }
func (w *Writer) needCMat(cols, rows int) { w.cMats[[2]int{cols, rows}] = true }

func (w *Writer) needCBinaryHelper(lanes int, verb string) {
	w.cBinary[cHelperKey{lanes, verb}] = true
}

func (w *Writer) needCUnaryHelper(lanes int, verb string) {
	w.cUnary[cHelperKey{lanes, verb}] = true
}

func (w *Writer) needCExtern(signature string) { w.cExterns[signature] = true }

// declareStructs renders every module-scope struct type and names its
// members.
func (w *Writer) declareStructs() error {
	idx := 0
	for _, g := range w.m.Globals() {
		if w.m.Op(g) != ir.OpStructType {
			continue
		}
		name := w.namer.call(fmt.Sprintf("S%d", idx))
		idx++
		w.names[g] = name

		if w.target() == ir.TargetC {
			w.line("typedef struct {")
		} else {
			w.line("struct %s {", name)
		}
		w.indent++
		for _, field := range w.m.Children(g) {
			key := w.m.Operand(field, 0)
			ftype := w.m.Operand(field, 1)
			member, ok := w.names[key]
			if !ok {
				member = Escape(w.target(), w.m.Text(key))
				w.names[key] = member
			}
			base, suffix, err := w.typeParts(ftype)
			if err != nil {
				return err
			}
			w.line("%s %s%s;", base, member, suffix)
		}
		w.indent--
		if w.target() == ir.TargetC {
			w.line("} %s;", name)
		} else {
			w.line("};")
		}
		w.blank()
	}
	return nil
}

// declareGlobals renders module-scope constants, variables and shader
// parameters.
func (w *Writer) declareGlobals() error {
	wrote := false
	for _, g := range w.m.Globals() {
		var err error
		switch w.m.Op(g) {
		case ir.OpGlobalConstant:
			err = w.declareGlobalConstant(g)
		case ir.OpGlobalVar:
			err = w.declareGlobalVar(g)
		case ir.OpGlobalParam:
			err = w.declareGlobalParam(g)
		default:
			continue
		}
		if err != nil {
			return err
		}
		wrote = true
	}
	if wrote {
		w.blank()
	}
	return nil
}

func (w *Writer) globalBase(g ir.InstID, fallback string) string {
	if ln, ok := w.m.LinkageName(g); ok {
		return w.namer.fromLinkage(ln)
	}
	return w.namer.call(fallback)
}

func (w *Writer) declareGlobalConstant(g ir.InstID) error {
	name := w.globalBase(g, "c")
	w.names[g] = name
	base, suffix, err := w.typeParts(w.m.TypeOf(g))
	if err != nil {
		return err
	}
	init, err := w.operandRef(w.m.Operand(g, 0))
	if err != nil {
		return err
	}
	switch w.target() {
	case ir.TargetGLSL:
		w.line("const %s %s%s = %s;", base, name, suffix, init)
	default:
		w.line("static const %s %s%s = %s;", base, name, suffix, init)
	}
	return nil
}

func (w *Writer) declareGlobalVar(g ir.InstID) error {
	name := w.globalBase(g, "g")
	w.names[g] = name
	base, suffix, err := w.typeParts(w.m.Operand(w.m.TypeOf(g), 0))
	if err != nil {
		return err
	}
	switch w.target() {
	case ir.TargetGLSL:
		w.line("%s %s%s;", base, name, suffix)
	default:
		w.line("static %s %s%s;", base, name, suffix)
	}
	return nil
}

// paramResource returns the binding computed for a shader parameter,
// if the layout pass attached one.
func (w *Writer) paramResource(g ir.InstID) (ir.ResourceInfo, bool) {
	d, ok := w.m.FindDecoration(g, ir.DecLayout)
	if !ok || d.Layout == nil || len(d.Layout.Resources) == 0 {
		return ir.ResourceInfo{}, false
	}
	return d.Layout.Resources[0], true
}

func hlslRegister(info ir.ResourceInfo) string {
	class := info.Kind.Register()
	if class == "" {
		return ""
	}
	if info.Space != 0 {
		return fmt.Sprintf(" : register(%s%d, space%d)", class, info.Index, info.Space)
	}
	return fmt.Sprintf(" : register(%s%d)", class, info.Index)
}

func (w *Writer) declareGlobalParam(g ir.InstID) error {
	name := w.globalBase(g, "param")
	typ := w.m.TypeOf(g)
	info, bound := w.paramResource(g)
	if bound {
		linkage, _ := w.m.LinkageName(g)
		w.info.Resources = append(w.info.Resources, ResourceBinding{
			Name:    name,
			Linkage: linkage,
			Info:    info,
		})
	}

	switch w.target() {
	case ir.TargetGLSL:
		return w.declareGLSLParam(g, name, typ, info, bound)
	case ir.TargetC:
		return w.declareCParam(g, name, typ)
	default:
		return w.declareHLSLParam(g, name, typ, info, bound)
	}
}

func (w *Writer) declareHLSLParam(g ir.InstID, name string, typ ir.InstID, info ir.ResourceInfo, bound bool) error {
	w.names[g] = name
	register := ""
	if bound {
		register = hlslRegister(info)
	}
	switch w.m.Op(typ) {
	case ir.OpConstantBufferType:
		elem, err := w.typeName(w.m.Operand(typ, 0))
		if err != nil {
			return err
		}
		w.line("ConstantBuffer<%s> %s%s;", elem, name, register)
	default:
		base, suffix, err := w.typeParts(typ)
		if err != nil {
			return err
		}
		w.line("%s %s%s%s;", base, name, suffix, register)
	}
	return nil
}

func (w *Writer) declareGLSLParam(g ir.InstID, name string, typ ir.InstID, info ir.ResourceInfo, bound bool) error {
	w.names[g] = name
	binding := ""
	switch w.m.Op(typ) {
	case ir.OpConstantBufferType:
		elem, err := w.typeName(w.m.Operand(typ, 0))
		if err != nil {
			return err
		}
		if bound {
			binding = fmt.Sprintf("layout(std140, binding = %d) ", info.Index)
		}
		block := w.namer.call(name + "_block")
		w.line("%suniform %s { %s %s; };", binding, block, elem, name)
	case ir.OpSamplerType:
		// GLSL folds samplers into the texture; the parameter gets a
		// name but no declaration.
	case ir.OpTextureType:
		if bound {
			binding = fmt.Sprintf("layout(binding = %d) ", info.Index)
		}
		base, suffix, err := w.typeParts(typ)
		if err != nil {
			return err
		}
		w.line("%suniform %s %s%s;", binding, base, name, suffix)
	default:
		base, suffix, err := w.typeParts(typ)
		if err != nil {
			return err
		}
		w.line("uniform %s %s%s;", base, name, suffix)
	}
	return nil
}

func (w *Writer) declareCParam(g ir.InstID, name string, typ ir.InstID) error {
	switch w.m.Op(typ) {
	case ir.OpConstantBufferType:
		elem, err := w.typeName(w.m.Operand(typ, 0))
		if err != nil {
			return err
		}
		w.line("extern const %s *%s;", elem, name)
		w.names[g] = "(*" + name + ")"
	default:
		base, suffix, err := w.typeParts(typ)
		if err != nil {
			return err
		}
		w.line("extern %s %s%s;", base, name, suffix)
		w.names[g] = name
	}
	return nil
}

// declareFunctions renders every module-scope function except the
// entry point. Names are assigned up front so calls can reference
// functions rendered later.
func (w *Writer) declareFunctions(entry ir.InstID) error {
	var fns []ir.InstID
	for _, g := range w.m.Globals() {
		if g == entry || w.m.Op(g) != ir.OpFunc {
			continue
		}
		if ln, ok := w.m.LinkageName(g); ok {
			w.names[g] = w.namer.fromLinkage(ln)
		} else {
			w.names[g] = w.namer.call("fn")
		}
		fns = append(fns, g)
	}
	for _, fn := range fns {
		if err := w.emitFunction(fn, w.names[fn]); err != nil {
			return err
		}
	}
	return nil
}

// signatureParts renders the result type and parameter list of fn.
// Declarations take parameter types from the function type; bodies
// name each block parameter.
func (w *Writer) signatureParts(fn ir.InstID, locals *namer) (result string, params []string, err error) {
	sig := w.m.TypeOf(fn)
	if sig == ir.Nil || w.m.Op(sig) != ir.OpFuncType {
		return "", nil, NewError(ErrMalformedModule, "function has no function type")
	}
	result, err = w.typeName(w.m.Operand(sig, 0))
	if err != nil {
		return "", nil, err
	}

	body := w.m.FirstBlock(fn)
	if body == ir.Nil {
		for _, pt := range w.m.Operands(sig)[1:] {
			base, suffix, err := w.typeParts(pt)
			if err != nil {
				return "", nil, err
			}
			params = append(params, base+suffix)
		}
		return result, params, nil
	}

	for i, p := range w.m.BlockParams(body) {
		base, suffix, err := w.typeParts(w.m.TypeOf(p))
		if err != nil {
			return "", nil, err
		}
		name := locals.call(fmt.Sprintf("p%d", i))
		w.names[p] = name
		params = append(params, fmt.Sprintf("%s %s%s", base, name, suffix))
	}
	return result, params, nil
}

// emitFunction renders one helper function, or its prototype when the
// function has no body.
func (w *Writer) emitFunction(fn ir.InstID, name string) error {
	locals := w.namer.clone()
	result, params, err := w.signatureParts(fn, locals)
	if err != nil {
		return err
	}
	if w.m.FirstBlock(fn) == ir.Nil {
		w.line("%s %s(%s);", result, name, strings.Join(params, ", "))
		w.blank()
		return nil
	}

	w.line("%s %s(%s)", result, name, strings.Join(params, ", "))
	w.line("{")
	w.indent++
	saved := w.namer
	w.namer = locals
	err = w.emitBody(fn)
	w.namer = saved
	w.indent--
	if err != nil {
		return err
	}
	w.line("}")
	w.blank()
	return nil
}

// emitBody renders the block list of a function, restructuring
// branches into statements.
func (w *Writer) emitBody(fn ir.InstID) error {
	blocks := w.m.Children(fn)
	if len(blocks) == 0 {
		return NewError(ErrMalformedModule, "function body has no blocks")
	}
	i := 0
	for i < len(blocks) {
		blk := blocks[i]
		if i > 0 && len(w.m.BlockParams(blk)) > 0 {
			return NewError(ErrUnsupportedFeature, "blocks with arguments cannot be restructured")
		}
		if err := w.emitBlockInsts(blk); err != nil {
			return err
		}
		term := w.m.Terminator(blk)
		if term == ir.Nil {
			return NewError(ErrMalformedModule, "block has no terminator")
		}
		switch w.m.Op(term) {
		case ir.OpReturnValue:
			if err := w.emitReturnValue(term); err != nil {
				return err
			}
			if i != len(blocks)-1 {
				return NewError(ErrUnsupportedFeature, "code after a returning block cannot be restructured")
			}
			i++

		case ir.OpReturnVoid:
			w.line("return;")
			if i != len(blocks)-1 {
				return NewError(ErrUnsupportedFeature, "code after a returning block cannot be restructured")
			}
			i++

		case ir.OpUnreachable:
			if i != len(blocks)-1 {
				return NewError(ErrUnsupportedFeature, "code after an unreachable block cannot be restructured")
			}
			i++

		case ir.OpBranch:
			if i+1 >= len(blocks) || w.m.Operand(term, 0) != blocks[i+1] {
				return NewError(ErrUnsupportedFeature, "branch does not fall through to the next block")
			}
			i++

		case ir.OpCondBranch:
			next, err := w.emitCondBranch(blocks, i, term)
			if err != nil {
				return err
			}
			i = next

		default:
			return Errorf(ErrMalformedModule, "%s does not terminate a block", w.m.Op(term))
		}
	}
	return nil
}

// emitCondBranch restructures a two-way branch at blocks[i] into an
// if statement. Supported shapes: both arms return, both arms branch
// to a common join, or one arm is the join itself. It returns the
// index rendering continues at.
func (w *Writer) emitCondBranch(blocks []ir.InstID, i int, term ir.InstID) (int, error) {
	m := w.m
	cond, err := w.operandRef(m.Operand(term, 0))
	if err != nil {
		return 0, err
	}
	thenB := m.Operand(term, 1)
	elseB := m.Operand(term, 2)

	// One-armed variants where a branch target is the fallthrough.
	if i+2 < len(blocks) && thenB == blocks[i+1] && elseB == blocks[i+2] {
		tt := m.Terminator(thenB)
		et := m.Terminator(elseB)
		ttOp := m.Op(tt)
		etOp := m.Op(et)

		// Triangle: the then arm rejoins at the else target.
		if ttOp == ir.OpBranch && m.Operand(tt, 0) == elseB {
			w.line("if (%s) {", cond)
			w.indent++
			if err := w.emitArmBlock(thenB); err != nil {
				return 0, err
			}
			w.indent--
			w.line("}")
			return i + 2, nil
		}

		returns := func(op ir.Op) bool {
			return op == ir.OpReturnValue || op == ir.OpReturnVoid || op == ir.OpUnreachable
		}

		// Diamond: both arms jump to a common join block.
		if ttOp == ir.OpBranch && etOp == ir.OpBranch &&
			i+3 < len(blocks) &&
			m.Operand(tt, 0) == blocks[i+3] && m.Operand(et, 0) == blocks[i+3] {
			if err := w.emitIfElse(cond, thenB, elseB); err != nil {
				return 0, err
			}
			return i + 3, nil
		}

		// Both arms leave the function.
		if returns(ttOp) && returns(etOp) {
			if err := w.emitIfElse(cond, thenB, elseB); err != nil {
				return 0, err
			}
			if i+3 != len(blocks) {
				return 0, NewError(ErrUnsupportedFeature, "code after a returning conditional cannot be restructured")
			}
			return i + 3, nil
		}

		// Mixed: the then arm returns and the else arm is the rest of
		// the function.
		if returns(ttOp) && etOp == ir.OpBranch &&
			i+3 < len(blocks) && m.Operand(et, 0) == blocks[i+3] {
			w.line("if (%s) {", cond)
			w.indent++
			if err := w.emitArmBlock(thenB); err != nil {
				return 0, err
			}
			w.indent--
			w.line("}")
			if err := w.emitArmBlock(elseB); err != nil {
				return 0, err
			}
			return i + 3, nil
		}
	}

	// Inverted triangle: the then target is the fallthrough join.
	if i+2 < len(blocks) && elseB == blocks[i+1] && thenB == blocks[i+2] {
		et := m.Terminator(elseB)
		if m.Op(et) == ir.OpBranch && m.Operand(et, 0) == thenB {
			w.line("if (!(%s)) {", cond)
			w.indent++
			if err := w.emitArmBlock(elseB); err != nil {
				return 0, err
			}
			w.indent--
			w.line("}")
			return i + 2, nil
		}
	}

	return 0, NewError(ErrUnsupportedFeature, "control flow cannot be restructured into statements")
}

func (w *Writer) emitIfElse(cond string, thenB, elseB ir.InstID) error {
	w.line("if (%s) {", cond)
	w.indent++
	if err := w.emitArmBlock(thenB); err != nil {
		return err
	}
	w.indent--
	w.line("} else {")
	w.indent++
	if err := w.emitArmBlock(elseB); err != nil {
		return err
	}
	w.indent--
	w.line("}")
	return nil
}

// emitArmBlock renders one conditional arm: its instructions followed
// by its terminator, except branches to the join which render nothing.
func (w *Writer) emitArmBlock(blk ir.InstID) error {
	if len(w.m.BlockParams(blk)) > 0 {
		return NewError(ErrUnsupportedFeature, "blocks with arguments cannot be restructured")
	}
	if err := w.emitBlockInsts(blk); err != nil {
		return err
	}
	term := w.m.Terminator(blk)
	switch w.m.Op(term) {
	case ir.OpBranch, ir.OpUnreachable:
		return nil
	case ir.OpReturnValue:
		return w.emitReturnValue(term)
	case ir.OpReturnVoid:
		w.line("return;")
		return nil
	}
	return NewError(ErrUnsupportedFeature, "nested control flow cannot be restructured")
}

// emitBlockInsts renders every non-terminator instruction of blk.
func (w *Writer) emitBlockInsts(blk ir.InstID) error {
	term := w.m.Terminator(blk)
	for _, in := range w.m.Children(blk) {
		if in == term || w.m.Op(in) == ir.OpParam {
			continue
		}
		if err := w.emitInst(in); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) emitReturnValue(term ir.InstID) error {
	v, err := w.operandRef(w.m.Operand(term, 0))
	if err != nil {
		return err
	}
	if w.entryOutName != "" {
		w.line("%s = %s;", w.entryOutName, v)
		w.line("return;")
		return nil
	}
	w.line("return %s;", v)
	return nil
}

// emitEntry renders the entry point with the dialect's stage
// adornments.
func (w *Writer) emitEntry(entry ir.InstID, name string, stage ir.Stage) error {
	switch w.target() {
	case ir.TargetGLSL:
		return w.emitGLSLEntry(entry, stage)
	case ir.TargetC:
		return w.emitCEntry(entry, name)
	default:
		return w.emitHLSLEntry(entry, name, stage)
	}
}

// paramLocation returns the varying location assigned to an entry
// parameter, falling back to its position.
func (w *Writer) paramLocation(p ir.InstID, position int) int {
	if d, ok := w.m.FindDecoration(p, ir.DecLayout); ok && d.Layout != nil {
		if info, found := d.Layout.Find(ir.ResourceVaryingInput); found {
			return int(info.Index)
		}
	}
	return position
}

func (w *Writer) emitHLSLEntry(entry ir.InstID, name string, stage ir.Stage) error {
	locals := w.namer.clone()
	sig := w.m.TypeOf(entry)
	result, err := w.typeName(w.m.Operand(sig, 0))
	if err != nil {
		return err
	}

	body := w.m.FirstBlock(entry)
	var params []string
	for i, p := range w.m.BlockParams(body) {
		base, suffix, err := w.typeParts(w.m.TypeOf(p))
		if err != nil {
			return err
		}
		pname := locals.call(fmt.Sprintf("p%d", i))
		w.names[p] = pname
		semantic := ""
		if w.varyingParam(p) {
			semantic = fmt.Sprintf(" : TEXCOORD%d", w.paramLocation(p, i))
		}
		params = append(params, fmt.Sprintf("%s %s%s%s", base, pname, suffix, semantic))
	}

	resultSemantic := ""
	if !w.isVoid(w.m.Operand(sig, 0)) {
		switch stage {
		case ir.StageVertex:
			resultSemantic = " : SV_Position"
		default:
			resultSemantic = " : SV_Target0"
		}
	}

	if stage == ir.StageCompute {
		w.line("[numthreads(1, 1, 1)]")
	}
	w.line("%s %s(%s)%s", result, name, strings.Join(params, ", "), resultSemantic)
	w.line("{")
	w.indent++
	saved := w.namer
	w.namer = locals
	err = w.emitBody(entry)
	w.namer = saved
	w.indent--
	if err != nil {
		return err
	}
	w.line("}")
	return nil
}

// varyingParam reports whether an entry parameter is plain stage
// input rather than a resource.
func (w *Writer) varyingParam(p ir.InstID) bool {
	switch w.m.Op(w.m.TypeOf(p)) {
	case ir.OpTextureType, ir.OpSamplerType, ir.OpConstantBufferType:
		return false
	}
	return true
}

func (w *Writer) emitGLSLEntry(entry ir.InstID, stage ir.Stage) error {
	sig := w.m.TypeOf(entry)
	body := w.m.FirstBlock(entry)

	for i, p := range w.m.BlockParams(body) {
		typ := w.m.TypeOf(p)
		switch w.m.Op(typ) {
		case ir.OpTextureType:
			pname := w.namer.call(fmt.Sprintf("_tex%d", i))
			w.names[p] = pname
			w.line("uniform sampler2D %s;", pname)
		case ir.OpSamplerType:
			w.names[p] = w.namer.call(fmt.Sprintf("_smp%d", i))
		default:
			base, suffix, err := w.typeParts(typ)
			if err != nil {
				return err
			}
			loc := w.paramLocation(p, i)
			pname := w.namer.call(fmt.Sprintf("_in%d", loc))
			w.names[p] = pname
			w.line("layout(location = %d) in %s %s%s;", loc, base, pname, suffix)
		}
	}

	resultType := w.m.Operand(sig, 0)
	switch {
	case w.isVoid(resultType):
	case stage == ir.StageVertex:
		// The vertex result is the clip-space position.
		w.entryOutName = "gl_Position"
	default:
		t, err := w.typeName(resultType)
		if err != nil {
			return err
		}
		out := w.namer.call("_out0")
		w.entryOutName = out
		w.line("layout(location = 0) out %s %s;", t, out)
	}
	if stage == ir.StageCompute {
		w.line("layout(local_size_x = 1) in;")
	}
	w.blank()

	w.line("void main()")
	w.line("{")
	w.indent++
	err := w.emitBody(entry)
	w.indent--
	w.entryOutName = ""
	if err != nil {
		return err
	}
	w.line("}")
	return nil
}

func (w *Writer) emitCEntry(entry ir.InstID, name string) error {
	return w.emitFunctionNamed(entry, name)
}

// emitFunctionNamed renders a function under an already reserved
// name, without registering it for calls.
func (w *Writer) emitFunctionNamed(fn ir.InstID, name string) error {
	locals := w.namer.clone()
	result, params, err := w.signatureParts(fn, locals)
	if err != nil {
		return err
	}
	w.line("%s %s(%s)", result, name, strings.Join(params, ", "))
	w.line("{")
	w.indent++
	saved := w.namer
	w.namer = locals
	err = w.emitBody(fn)
	w.namer = saved
	w.indent--
	if err != nil {
		return err
	}
	w.line("}")
	return nil
}

// writeHeader writes the version directive or the C prelude ahead of
// the rendered declarations.
func (w *Writer) writeHeader(src *strings.Builder) {
	switch w.target() {
	case ir.TargetGLSL:
		fmt.Fprintf(src, "#version %d\n\n", w.opts.GLSLVersion)
	case ir.TargetC:
		w.writeCPrelude(src)
	}
}

func (w *Writer) writeCPrelude(src *strings.Builder) {
	src.WriteString("#include <math.h>\n\n")
	src.WriteString("typedef struct shade_texture_s *shade_texture_t;\n")
	src.WriteString("typedef struct shade_sampler_s *shade_sampler_t;\n")

	lanes := make([]int, 0, len(w.cVecs))
	for n := range w.cVecs {
		lanes = append(lanes, n)
	}
	sort.Ints(lanes)
	for _, n := range lanes {
		fmt.Fprintf(src, "typedef struct { float v[%d]; } shade_float%d;\n", n, n)
	}

	mats := make([][2]int, 0, len(w.cMats))
	for k := range w.cMats {
		mats = append(mats, k)
	}
	sort.Slice(mats, func(i, j int) bool {
		if mats[i][0] != mats[j][0] {
			return mats[i][0] < mats[j][0]
		}
		return mats[i][1] < mats[j][1]
	})
	for _, k := range mats {
		fmt.Fprintf(src, "typedef struct { float v[%d][%d]; } shade_float%dx%d;\n", k[0], k[1], k[0], k[1])
	}
	src.WriteByte('\n')

	binary := make([]cHelperKey, 0, len(w.cBinary))
	for k := range w.cBinary {
		binary = append(binary, k)
	}
	sortHelpers(binary)
	ops := map[string]string{"add": "+", "sub": "-", "mul": "*", "div": "/"}
	for _, k := range binary {
		fmt.Fprintf(src, "static inline shade_float%d shade_float%d_%s(shade_float%d a, shade_float%d b) {\n",
			k.lanes, k.lanes, k.verb, k.lanes, k.lanes)
		fmt.Fprintf(src, "    shade_float%d r;\n", k.lanes)
		fmt.Fprintf(src, "    for (int i = 0; i < %d; ++i) r.v[i] = a.v[i] %s b.v[i];\n", k.lanes, ops[k.verb])
		src.WriteString("    return r;\n}\n")
	}

	unary := make([]cHelperKey, 0, len(w.cUnary))
	for k := range w.cUnary {
		unary = append(unary, k)
	}
	sortHelpers(unary)
	for _, k := range unary {
		fmt.Fprintf(src, "static inline shade_float%d shade_float%d_%s(shade_float%d a) {\n",
			k.lanes, k.lanes, k.verb, k.lanes)
		fmt.Fprintf(src, "    shade_float%d r;\n", k.lanes)
		fmt.Fprintf(src, "    for (int i = 0; i < %d; ++i) r.v[i] = -a.v[i];\n", k.lanes)
		src.WriteString("    return r;\n}\n")
	}

	externs := make([]string, 0, len(w.cExterns))
	for sig := range w.cExterns {
		externs = append(externs, sig)
	}
	sort.Strings(externs)
	for _, sig := range externs {
		src.WriteString(sig)
		src.WriteByte('\n')
	}
	if len(binary)+len(unary)+len(externs) > 0 {
		src.WriteByte('\n')
	}
}

func sortHelpers(keys []cHelperKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].lanes != keys[j].lanes {
			return keys[i].lanes < keys[j].lanes
		}
		return keys[i].verb < keys[j].verb
	})
}
