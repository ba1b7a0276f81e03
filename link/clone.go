package link

import (
	"github.com/gogpu/shade/ir"
)

// srcRef identifies an instruction in one source module. Destination
// instructions use the destination module as their module.
type srcRef struct {
	module *ir.Module
	inst   ir.InstID
}

// env is one frame of the clone memo chain. Lookups walk toward the
// root frame; registrations land in the frame they are made in.
// Specialization pushes a fresh frame per generic body, so parameter
// bindings never leak between instantiations.
type env struct {
	parent *env
	cloned map[srcRef]ir.InstID
}

func newEnv(parent *env) *env {
	return &env{
		parent: parent,
		cloned: make(map[srcRef]ir.InstID),
	}
}

func (e *env) lookup(ref srcRef) (ir.InstID, bool) {
	for f := e; f != nil; f = f.parent {
		if id, ok := f.cloned[ref]; ok {
			return id, true
		}
	}
	return ir.Nil, false
}

func (e *env) register(ref srcRef, id ir.InstID) {
	e.cloned[ref] = id
}

// cloneValue returns the destination copy of value, cloning it unless
// the environment already holds one. References that are already
// destination instructions pass through unchanged.
func (l *Linker) cloneValue(e *env, src *ir.Module, value ir.InstID) (ir.InstID, error) {
	if value == ir.Nil {
		return ir.Nil, nil
	}
	if id, ok := e.lookup(srcRef{module: src, inst: value}); ok {
		return id, nil
	}
	if src == l.dst {
		return value, nil
	}
	return l.cloneValueNoMemo(e, src, value)
}

// cloneValueNoMemo dispatches on the operation class: module-scope
// values resolve through the symbol table, literals are
// value-constructed through the destination's interning, and
// everything else is copied structurally.
func (l *Linker) cloneValueNoMemo(e *env, src *ir.Module, value ir.InstID) (ir.InstID, error) {
	op := src.Op(value)
	switch {
	case op.IsGlobalValue():
		return l.cloneGlobalValue(e, src, value)

	case op.IsLiteral():
		typ, err := l.cloneValue(e, src, src.TypeOf(value))
		if err != nil {
			return ir.Nil, err
		}
		id := l.dst.InternLiteral(op, typ, src.Bits(value), src.Text(value))
		e.register(srcRef{module: src, inst: value}, id)
		return id, nil

	case op == ir.OpSpecialize:
		// Module-scope specializations have concrete arguments, so
		// they reduce at the point of reference. Everything that
		// referred to the specialize resolves to the instantiation.
		id, err := l.cloneInst(e, src, value, l.dst.Root())
		if err != nil {
			return ir.Nil, err
		}
		for l.dst.Op(id) == ir.OpSpecialize {
			if id, err = l.specializeGeneric(id); err != nil {
				return ir.Nil, err
			}
		}
		e.register(srcRef{module: src, inst: value}, id)
		return id, nil

	default:
		return l.cloneInst(e, src, value, l.dst.Root())
	}
}

// cloneGlobalValue clones a module-scope value. Linkage-named values
// resolve through the symbol table; private ones are cloned directly.
func (l *Linker) cloneGlobalValue(e *env, src *ir.Module, value ir.InstID) (ir.InstID, error) {
	name, hasName := src.LinkageName(value)
	if !hasName {
		return l.cloneGlobalValueImpl(e, src, value, func(shell ir.InstID) {
			e.register(srcRef{module: src, inst: value}, shell)
		})
	}
	return l.cloneSymbol(e, name)
}

// cloneSymbol clones the best candidate registered under name and
// maps every same-named candidate to the one destination clone, so
// references from different modules deduplicate.
func (l *Linker) cloneSymbol(e *env, name string) (ir.InstID, error) {
	if l.phase != phaseCloning {
		return ir.Nil, NewSymbolError(ErrInternalError, "symbol lookup outside the cloning phase", name)
	}

	candidates := l.symbols.Lookup(name)
	if len(candidates) == 0 {
		return ir.Nil, NewSymbolError(ErrUnresolvedSymbol, "no module declares this symbol", name)
	}
	if l.inProgress[name] {
		return ir.Nil, NewSymbolError(ErrCircularDefinition, "definition depends on resolving itself", name)
	}
	l.inProgress[name] = true
	defer delete(l.inProgress, name)

	best := selectCandidate(candidates, l.opts.Target)
	return l.cloneGlobalValueImpl(e, best.Module, best.Inst, func(shell ir.InstID) {
		for _, c := range candidates {
			e.register(srcRef{module: c.Module, inst: c.Inst}, shell)
		}
		delete(l.inProgress, name)
	})
}

// cloneGlobalValueImpl copies one module-scope value into the
// destination. onShell runs as soon as the destination instruction
// can be referenced, which is the point where recursive references
// start resolving through the environment.
//
// Code-bearing values register their shell before anything else, so
// recursive functions terminate. Other values resolve their type and
// operands first: a global whose type or initializer leads back to
// itself is a circular definition, and the in-progress marker in
// cloneSymbol turns that into an error instead of a loop.
func (l *Linker) cloneGlobalValueImpl(e *env, src *ir.Module, value ir.InstID, onShell func(ir.InstID)) (ir.InstID, error) {
	op := src.Op(value)
	if op.HasCode() {
		return l.cloneCode(e, src, value, onShell)
	}

	typ, err := l.cloneValue(e, src, src.TypeOf(value))
	if err != nil {
		return ir.Nil, err
	}
	srcOperands := src.Operands(value)
	operands := make([]ir.InstID, len(srcOperands))
	for i, o := range srcOperands {
		if operands[i], err = l.cloneValue(e, src, o); err != nil {
			return ir.Nil, err
		}
	}

	id := l.dst.NewInst(op, typ)
	l.dst.AppendChild(l.dst.Root(), id)
	l.dst.SetBits(id, src.Bits(value))
	l.dst.SetText(id, src.Text(value))
	if len(operands) > 0 {
		l.dst.SetOperands(id, operands...)
	}
	l.copyDecorations(src, value, id)
	onShell(id)

	if err := l.cloneChildren(e, src, value, id); err != nil {
		return ir.Nil, err
	}

	if op == ir.OpGlobalParam {
		l.attachGlobalLayout(src, value, id)
	}
	return id, nil
}

// cloneCode copies a function or generic. The shell registers before
// the type and body are visited, then the finished clone moves to the
// end of the destination module so callees precede their callers.
func (l *Linker) cloneCode(e *env, src *ir.Module, value ir.InstID, onShell func(ir.InstID)) (ir.InstID, error) {
	id := l.dst.NewInst(src.Op(value), ir.Nil)
	l.dst.AppendChild(l.dst.Root(), id)
	l.copyDecorations(src, value, id)
	onShell(id)

	typ, err := l.cloneValue(e, src, src.TypeOf(value))
	if err != nil {
		return ir.Nil, err
	}
	l.dst.SetType(id, typ)

	if err := l.cloneChildren(e, src, value, id); err != nil {
		return ir.Nil, err
	}

	l.dst.MoveToBack(id)
	return id, nil
}

// cloneChildren copies child instructions. For code-bearing
// instructions every block shell is created before any block is
// filled, so forward branch references resolve through the
// environment.
func (l *Linker) cloneChildren(e *env, src *ir.Module, from, to ir.InstID) error {
	children := src.Children(from)
	if len(children) == 0 {
		return nil
	}

	if src.Op(from).HasCode() {
		blocks := make([]ir.InstID, len(children))
		for i, blk := range children {
			nb := l.dst.NewInst(ir.OpBlock, ir.Nil)
			l.dst.AppendChild(to, nb)
			e.register(srcRef{module: src, inst: blk}, nb)
			blocks[i] = nb
		}
		for i, blk := range children {
			for _, inst := range src.Children(blk) {
				if _, err := l.cloneInst(e, src, inst, blocks[i]); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, c := range children {
		if _, err := l.cloneInst(e, src, c, to); err != nil {
			return err
		}
	}
	return nil
}

// cloneInst structurally copies one instruction into parent. The copy
// registers before its operands are visited, so reference cycles
// terminate through the environment instead of recursing forever.
func (l *Linker) cloneInst(e *env, src *ir.Module, value ir.InstID, parent ir.InstID) (ir.InstID, error) {
	id := l.dst.NewInst(src.Op(value), ir.Nil)
	e.register(srcRef{module: src, inst: value}, id)
	if parent != ir.Nil {
		l.dst.AppendChild(parent, id)
	}
	l.dst.SetBits(id, src.Bits(value))
	l.dst.SetText(id, src.Text(value))
	l.copyDecorations(src, value, id)

	typ, err := l.cloneValue(e, src, src.TypeOf(value))
	if err != nil {
		return ir.Nil, err
	}
	l.dst.SetType(id, typ)

	srcOperands := src.Operands(value)
	if len(srcOperands) > 0 {
		operands := make([]ir.InstID, len(srcOperands))
		for i, o := range srcOperands {
			if operands[i], err = l.cloneValue(e, src, o); err != nil {
				return ir.Nil, err
			}
		}
		l.dst.SetOperands(id, operands...)
	}

	return id, l.cloneChildren(e, src, value, id)
}

// copyDecorations copies every decoration of src's value onto the
// destination instruction. Layout records are shared by pointer; they
// are immutable once computed.
func (l *Linker) copyDecorations(src *ir.Module, value, id ir.InstID) {
	for _, d := range src.Decorations(value) {
		l.dst.Decorate(id, d)
	}
}

// attachGlobalLayout gives a cloned global shader parameter the
// layout computed for its linkage name, if one was supplied.
func (l *Linker) attachGlobalLayout(src *ir.Module, value, id ir.InstID) {
	name, ok := src.LinkageName(value)
	if !ok {
		return
	}
	layout := l.opts.GlobalLayouts[name]
	if layout == nil || l.dst.HasDecoration(id, ir.DecLayout) {
		return
	}
	l.dst.Decorate(id, ir.Decoration{Kind: ir.DecLayout, Layout: layout})
}
