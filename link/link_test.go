package link

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shade/ir"
)

// addSquareDef adds an exported float->float definition returning the
// square of its parameter.
func addSquareDef(b *ir.Builder, linkName string) ir.InstID {
	f32 := b.FloatType()
	fn := b.Func(b.FuncType(f32, f32))
	b.Export(fn, linkName)
	blk := b.AppendBlock(fn)
	b.SetInsertPoint(blk)
	p := b.Param(f32)
	b.ReturnValue(b.Mul(f32, p, p))
	b.SetInsertPoint(ir.Nil)
	return fn
}

// addIdentityDef adds an exported float->float definition returning
// its parameter unchanged.
func addIdentityDef(b *ir.Builder, linkName string) ir.InstID {
	f32 := b.FloatType()
	fn := b.Func(b.FuncType(f32, f32))
	b.Export(fn, linkName)
	blk := b.AppendBlock(fn)
	b.SetInsertPoint(blk)
	p := b.Param(f32)
	b.ReturnValue(p)
	b.SetInsertPoint(ir.Nil)
	return fn
}

// addImportDecl adds a bodyless float->float declaration that imports
// linkName.
func addImportDecl(b *ir.Builder, linkName string) ir.InstID {
	f32 := b.FloatType()
	fn := b.Func(b.FuncType(f32, f32))
	b.Import(fn, linkName)
	return fn
}

// addEntry adds an exported zero-argument entry function that calls
// callee with a float literal.
func addEntry(b *ir.Builder, entryName string, callee ir.InstID) ir.InstID {
	f32 := b.FloatType()
	fn := b.Func(b.FuncType(f32))
	b.Export(fn, entryName)
	blk := b.AppendBlock(fn)
	b.SetInsertPoint(blk)
	b.ReturnValue(b.Call(f32, callee, b.FloatLit(2)))
	b.SetInsertPoint(ir.Nil)
	return fn
}

// findByLinkage returns the module-scope instructions of m registered
// under name.
func findByLinkage(m *ir.Module, name string) []ir.InstID {
	var out []ir.InstID
	for _, g := range m.Globals() {
		if n, ok := m.LinkageName(g); ok && n == name {
			out = append(out, g)
		}
	}
	return out
}

// countOp returns how many instructions of m have the given op.
func countOp(m *ir.Module, op ir.Op) int {
	n := 0
	for id := ir.InstID(1); int(id) < m.Count()+1; id++ {
		if m.Op(id) == op {
			n++
		}
	}
	return n
}

func quietOptions(target ir.Target) Options {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return Options{Target: target, Logger: logger}
}

func TestLinkEntryPoint_SimpleProgram(t *testing.T) {
	t.Parallel()

	lib := ir.NewModule("lib")
	addSquareDef(ir.NewBuilder(lib), "square#(float)")

	user := ir.NewModule("user")
	ub := ir.NewBuilder(user)
	decl := addImportDecl(ub, "square#(float)")
	addEntry(ub, "main#()", decl)

	st := BuildSymbolTable([]*ir.Module{lib, user})
	linked, entry, err := LinkEntryPoint(st, "main#()", quietOptions(ir.TargetHLSL))
	require.NoError(t, err)

	assert.Equal(t, ir.OpFunc, linked.Op(entry))
	assert.True(t, linked.HasDecoration(entry, ir.DecKeepAlive))

	// The callee resolved to the library definition, not the bodyless
	// declaration.
	callees := findByLinkage(linked, "square#(float)")
	require.Len(t, callees, 1)
	assert.True(t, linked.IsDefinition(callees[0]))

	// The entry body calls the resolved clone.
	body := linked.Children(linked.FirstBlock(entry))
	var call ir.InstID
	for _, inst := range body {
		if linked.Op(inst) == ir.OpCall {
			call = inst
		}
	}
	require.NotEqual(t, ir.Nil, call)
	assert.Equal(t, callees[0], linked.Operand(call, 0))
}

func TestLinkEntryPoint_Deterministic(t *testing.T) {
	t.Parallel()

	build := func() *SymbolTable {
		lib := ir.NewModule("lib")
		lb := ir.NewBuilder(lib)
		addSquareDef(lb, "square#(float)")
		addIdentityDef(lb, "identity#(float)")

		user := ir.NewModule("user")
		ub := ir.NewBuilder(user)
		decl := addImportDecl(ub, "square#(float)")
		addEntry(ub, "main#()", decl)
		return BuildSymbolTable([]*ir.Module{lib, user})
	}

	run := func(st *SymbolTable) string {
		linked, _, err := LinkEntryPoint(st, "main#()", quietOptions(ir.TargetHLSL))
		require.NoError(t, err)
		return ir.Disassemble(linked)
	}

	first := run(build())
	second := run(build())
	assert.Equal(t, first, second)

	// Relinking from one shared table is deterministic too.
	st := build()
	assert.Equal(t, run(st), run(st))
}

func TestLinkEntryPoint_TargetOverride(t *testing.T) {
	t.Parallel()

	lib := ir.NewModule("lib")
	lb := ir.NewBuilder(lib)
	addIdentityDef(lb, "tonemap#(float)")
	hlslVariant := addSquareDef(lb, "tonemap#(float)")
	lb.SetTarget(hlslVariant, ir.TargetHLSL)

	newTable := func() *SymbolTable {
		user := ir.NewModule("user")
		ub := ir.NewBuilder(user)
		decl := addImportDecl(ub, "tonemap#(float)")
		addEntry(ub, "main#()", decl)
		return BuildSymbolTable([]*ir.Module{lib, user})
	}

	t.Run("matching target wins", func(t *testing.T) {
		t.Parallel()
		linked, _, err := LinkEntryPoint(newTable(), "main#()", quietOptions(ir.TargetHLSL))
		require.NoError(t, err)
		clones := findByLinkage(linked, "tonemap#(float)")
		require.Len(t, clones, 1)
		// The HLSL variant squares; its body contains a multiply.
		body := linked.Children(linked.FirstBlock(clones[0]))
		assert.Equal(t, ir.OpMul, linked.Op(body[1]))
	})

	t.Run("unrestricted wins elsewhere", func(t *testing.T) {
		t.Parallel()
		linked, _, err := LinkEntryPoint(newTable(), "main#()", quietOptions(ir.TargetGLSL))
		require.NoError(t, err)
		clones := findByLinkage(linked, "tonemap#(float)")
		require.Len(t, clones, 1)
		// The identity variant returns its parameter directly.
		body := linked.Children(linked.FirstBlock(clones[0]))
		assert.Equal(t, ir.OpReturnValue, linked.Op(body[1]))
	})
}

func TestLinkEntryPoint_Unresolved(t *testing.T) {
	t.Parallel()

	lib := ir.NewModule("lib")
	addSquareDef(ir.NewBuilder(lib), "square#(float)")
	st := BuildSymbolTable([]*ir.Module{lib})

	namesBefore := len(st.Names())
	candidatesBefore := len(st.Lookup("square#(float)"))

	_, _, err := LinkEntryPoint(st, "missing#()", quietOptions(ir.TargetHLSL))
	require.Error(t, err)
	var linkErr *Error
	require.ErrorAs(t, err, &linkErr)
	assert.True(t, linkErr.IsUnresolvedSymbol())
	assert.Equal(t, "missing#()", linkErr.Symbol)

	// A failed link must leave the table exactly as built.
	assert.Equal(t, namesBefore, len(st.Names()))
	assert.Equal(t, candidatesBefore, len(st.Lookup("square#(float)")))
	assert.Nil(t, st.Lookup("missing#()"))
}

func TestLinkEntryPoint_DeclarationSurvives(t *testing.T) {
	t.Parallel()

	// No module defines sample#(float); the import declaration links
	// in as a bodyless function for the runtime to satisfy.
	user := ir.NewModule("user")
	ub := ir.NewBuilder(user)
	decl := addImportDecl(ub, "sample#(float)")
	addEntry(ub, "main#()", decl)

	st := BuildSymbolTable([]*ir.Module{user})
	linked, _, err := LinkEntryPoint(st, "main#()", quietOptions(ir.TargetHLSL))
	require.NoError(t, err)

	clones := findByLinkage(linked, "sample#(float)")
	require.Len(t, clones, 1)
	assert.False(t, linked.IsDefinition(clones[0]))
}

func TestLinkEntryPoint_EntryLayout(t *testing.T) {
	t.Parallel()

	lib := ir.NewModule("lib")
	lb := ir.NewBuilder(lib)
	f32 := lb.FloatType()
	fn := lb.Func(lb.FuncType(f32, f32, f32))
	lb.Export(fn, "main#(float,float)")
	blk := lb.AppendBlock(fn)
	lb.SetInsertPoint(blk)
	p0 := lb.Param(f32)
	p1 := lb.Param(f32)
	lb.ReturnValue(lb.Add(f32, p0, p1))
	lb.SetInsertPoint(ir.Nil)

	st := BuildSymbolTable([]*ir.Module{lib})

	selfLayout := &ir.VarLayout{Resources: []ir.ResourceInfo{{Kind: ir.ResourceVaryingOutput, Index: 0, Count: 1}}}
	paramLayout := &ir.VarLayout{Resources: []ir.ResourceInfo{{Kind: ir.ResourceVaryingInput, Index: 0, Count: 1}}}

	t.Run("attached positionally", func(t *testing.T) {
		t.Parallel()
		opts := quietOptions(ir.TargetHLSL)
		opts.EntryLayout = &EntryPointLayout{
			Self:   selfLayout,
			Params: []*ir.VarLayout{paramLayout, nil},
		}
		linked, entry, err := LinkEntryPoint(st, "main#(float,float)", opts)
		require.NoError(t, err)

		d, ok := linked.FindDecoration(entry, ir.DecLayout)
		require.True(t, ok)
		assert.Equal(t, selfLayout, d.Layout)

		params := linked.BlockParams(linked.FirstBlock(entry))
		require.Len(t, params, 2)
		d, ok = linked.FindDecoration(params[0], ir.DecLayout)
		require.True(t, ok)
		assert.Equal(t, paramLayout, d.Layout)
		assert.False(t, linked.HasDecoration(params[1], ir.DecLayout))
	})

	t.Run("excess parameters rejected", func(t *testing.T) {
		t.Parallel()
		opts := quietOptions(ir.TargetHLSL)
		opts.EntryLayout = &EntryPointLayout{Params: []*ir.VarLayout{paramLayout}}
		_, _, err := LinkEntryPoint(st, "main#(float,float)", opts)
		var linkErr *Error
		require.ErrorAs(t, err, &linkErr)
		assert.Equal(t, ErrBadEntryPoint, linkErr.Kind)
	})
}

func TestLinkEntryPoint_GlobalParamLayout(t *testing.T) {
	t.Parallel()

	lib := ir.NewModule("lib")
	lb := ir.NewBuilder(lib)
	f32 := lb.FloatType()
	gp := lb.GlobalParam(lb.ConstantBufferType(f32))
	lb.Export(gp, "params#g")

	fn := lb.Func(lb.FuncType(f32))
	lb.Export(fn, "main#()")
	blk := lb.AppendBlock(fn)
	lb.SetInsertPoint(blk)
	lb.ReturnValue(lb.Load(f32, gp))
	lb.SetInsertPoint(ir.Nil)

	st := BuildSymbolTable([]*ir.Module{lib})

	layout := &ir.VarLayout{Resources: []ir.ResourceInfo{{Kind: ir.ResourceConstantBuffer, Index: 2, Count: 1}}}
	opts := quietOptions(ir.TargetHLSL)
	opts.GlobalLayouts = map[string]*ir.VarLayout{"params#g": layout}

	linked, _, err := LinkEntryPoint(st, "main#()", opts)
	require.NoError(t, err)

	clones := findByLinkage(linked, "params#g")
	require.Len(t, clones, 1)
	d, ok := linked.FindDecoration(clones[0], ir.DecLayout)
	require.True(t, ok)
	assert.Equal(t, layout, d.Layout)
}

func TestLinkEntryPoint_BindSweep(t *testing.T) {
	t.Parallel()

	lib := ir.NewModule("lib")
	lb := ir.NewBuilder(lib)
	f32 := lb.FloatType()

	// A global parameter and its binding that the entry point never
	// references.
	gp := lb.GlobalParam(f32)
	lb.Export(gp, "exposure#g")
	lb.BindGlobalParam(gp, lb.FloatLit(1.5))

	addSquareDef(lb, "main#(float)")

	st := BuildSymbolTable([]*ir.Module{lib})
	linked, _, err := LinkEntryPoint(st, "main#(float)", quietOptions(ir.TargetHLSL))
	require.NoError(t, err)

	require.Equal(t, 1, countOp(linked, ir.OpBindGlobalParam))
	// The sweep pulled the bound parameter in with it.
	assert.Len(t, findByLinkage(linked, "exposure#g"), 1)
}

func TestLinkEntryPoint_DebugChecks(t *testing.T) {
	t.Parallel()

	// The generic's produced function is exported under the same name
	// as a module-scope definition it calls. Instantiating the generic
	// then puts that name on two instructions in the linked module.
	newTable := func() *SymbolTable {
		lib := ir.NewModule("lib")
		lb := ir.NewBuilder(lib)
		base := addSquareDef(lb, "dup#(float)")

		gen := lb.Generic()
		lb.Export(gen, "wrap#<T>")
		gblk := lb.AppendBlock(gen)
		tparam := lib.NewInst(ir.OpParam, ir.Nil)
		lib.AppendChild(gblk, tparam)
		fnType := lib.NewInst(ir.OpFuncType, ir.Nil)
		lib.SetOperands(fnType, tparam, tparam)
		lib.AppendChild(gblk, fnType)
		fn := lib.NewInst(ir.OpFunc, fnType)
		lib.AppendChild(gblk, fn)
		lib.Decorate(fn, ir.Decoration{Kind: ir.DecExport, Text: "dup#(float)"})
		fblk := lib.NewInst(ir.OpBlock, ir.Nil)
		lib.AppendChild(fn, fblk)
		p := lib.NewInst(ir.OpParam, tparam)
		lib.AppendChild(fblk, p)
		call := lib.NewInst(ir.OpCall, tparam)
		lib.SetOperands(call, base, p)
		lib.AppendChild(fblk, call)
		ret := lib.NewInst(ir.OpReturnValue, ir.Nil)
		lib.SetOperands(ret, call)
		lib.AppendChild(fblk, ret)
		gret := lib.NewInst(ir.OpReturnValue, ir.Nil)
		lib.SetOperands(gret, fn)
		lib.AppendChild(gblk, gret)

		user := ir.NewModule("user")
		ub := ir.NewBuilder(user)
		genDecl := user.NewInst(ir.OpGeneric, ir.Nil)
		user.AppendChild(user.Root(), genDecl)
		ub.Import(genDecl, "wrap#<T>")
		spec := ub.Specialize(ir.Nil, genDecl, ub.FloatType())
		ub.Export(spec, "main#()")
		return BuildSymbolTable([]*ir.Module{lib, user})
	}

	t.Run("disabled by default", func(t *testing.T) {
		t.Parallel()
		_, _, err := LinkEntryPoint(newTable(), "main#()", quietOptions(ir.TargetHLSL))
		assert.NoError(t, err)
	})

	t.Run("reports duplicates", func(t *testing.T) {
		t.Parallel()
		opts := quietOptions(ir.TargetHLSL)
		opts.DebugChecks = true
		_, _, err := LinkEntryPoint(newTable(), "main#()", opts)
		var linkErr *Error
		require.ErrorAs(t, err, &linkErr)
		assert.Equal(t, ErrDuplicateSymbol, linkErr.Kind)
		assert.Equal(t, "dup#(float)", linkErr.Symbol)
	})
}
