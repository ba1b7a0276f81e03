package shade

import (
	"runtime"
	"testing"

	"github.com/gogpu/shade/emit"
	"github.com/gogpu/shade/ir"
	"github.com/gogpu/shade/layout"
	"github.com/gogpu/shade/link"
)

// ---------------------------------------------------------------------------
// Benchmark programs: module sets at different complexity levels
// ---------------------------------------------------------------------------

// benchSmall is a single module with one literal-returning entry point.
func benchSmall() []*ir.Module {
	m := ir.NewModule("small")
	b := ir.NewBuilder(m)
	f32 := b.FloatType()
	vec4 := b.VecType(f32, 4)

	entry := b.Func(b.FuncType(vec4))
	b.Export(entry, "flat#()")
	blk := b.AppendBlock(entry)
	b.SetInsertPoint(blk)
	b.ReturnValue(b.Construct(vec4,
		b.FloatLit(1), b.FloatLit(0), b.FloatLit(0), b.FloatLit(1)))
	b.SetInsertPoint(ir.Nil)
	return []*ir.Module{m}
}

// benchMedium is a two-module program: a library with a portable and
// an HLSL-only definition of the same function, and a user entry
// point with branchy control flow calling through the import.
func benchMedium() []*ir.Module {
	lib := ir.NewModule("lib")
	lb := ir.NewBuilder(lib)
	f32 := lb.FloatType()

	portable := lb.Func(lb.FuncType(f32, f32))
	lb.Export(portable, "curve#(float)")
	blk := lb.AppendBlock(portable)
	lb.SetInsertPoint(blk)
	p := lb.Param(f32)
	lb.ReturnValue(lb.IntrinsicCall(f32, "sqrt", lb.Mul(f32, p, p)))

	fast := lb.Func(lb.FuncType(f32, f32))
	lb.Export(fast, "curve#(float)")
	lb.SetTarget(fast, ir.TargetHLSL)
	blk = lb.AppendBlock(fast)
	lb.SetInsertPoint(blk)
	p = lb.Param(f32)
	lb.ReturnValue(p)
	lb.SetInsertPoint(ir.Nil)

	user := ir.NewModule("user")
	ub := ir.NewBuilder(user)
	uf32 := ub.FloatType()

	curve := ub.Func(ub.FuncType(uf32, uf32))
	ub.Import(curve, "curve#(float)")

	entry := ub.Func(ub.FuncType(uf32, uf32))
	ub.Export(entry, "shade#(float)")
	head := ub.AppendBlock(entry)
	thenB := ub.AppendBlock(entry)
	elseB := ub.AppendBlock(entry)
	join := ub.AppendBlock(entry)

	ub.SetInsertPoint(head)
	x := ub.Param(uf32)
	out := ub.Var(uf32)
	ub.CondBranch(ub.Less(x, ub.FloatLit(0.5)), thenB, elseB)

	ub.SetInsertPoint(thenB)
	ub.Store(out, ub.Call(uf32, curve, x))
	ub.Branch(join)

	ub.SetInsertPoint(elseB)
	ub.Store(out, ub.FloatLit(1))
	ub.Branch(join)

	ub.SetInsertPoint(join)
	ub.ReturnValue(ub.Load(uf32, out))
	ub.SetInsertPoint(ir.Nil)

	return []*ir.Module{lib, user}
}

// benchLarge adds a generic library, a specialization, and a chain of
// helper calls on top of the medium program's shape.
func benchLarge() []*ir.Module {
	lib := ir.NewModule("genlib")
	lb := ir.NewBuilder(lib)
	f32 := lb.FloatType()

	gen := lb.Generic()
	lb.Export(gen, "amp#<T>")
	gblk := lb.AppendBlock(gen)
	tparam := lib.NewInst(ir.OpParam, ir.Nil)
	lib.AppendChild(gblk, tparam)
	fnType := lib.NewInst(ir.OpFuncType, ir.Nil)
	lib.SetOperands(fnType, tparam, tparam)
	lib.AppendChild(gblk, fnType)
	fn := lib.NewInst(ir.OpFunc, fnType)
	lib.AppendChild(gblk, fn)
	fblk := lib.NewInst(ir.OpBlock, ir.Nil)
	lib.AppendChild(fn, fblk)
	p := lib.NewInst(ir.OpParam, tparam)
	lib.AppendChild(fblk, p)
	two := lb.FloatLit(2)
	mul := lib.NewInst(ir.OpMul, tparam)
	lib.SetOperands(mul, p, two)
	lib.AppendChild(fblk, mul)
	ret := lib.NewInst(ir.OpReturnValue, ir.Nil)
	lib.SetOperands(ret, mul)
	lib.AppendChild(fblk, ret)
	gret := lib.NewInst(ir.OpReturnValue, ir.Nil)
	lib.SetOperands(gret, fn)
	lib.AppendChild(gblk, gret)

	helper := lb.Func(lb.FuncType(f32, f32))
	lb.Export(helper, "soften#(float)")
	blk := lb.AppendBlock(helper)
	lb.SetInsertPoint(blk)
	hp := lb.Param(f32)
	lb.ReturnValue(lb.IntrinsicCall(f32, "saturate", hp))
	lb.SetInsertPoint(ir.Nil)

	user := ir.NewModule("user")
	ub := ir.NewBuilder(user)
	uf32 := ub.FloatType()

	genDecl := user.NewInst(ir.OpGeneric, ir.Nil)
	user.AppendChild(user.Root(), genDecl)
	ub.Import(genDecl, "amp#<T>")
	ampf := ub.Specialize(ir.Nil, genDecl, ub.FloatType())

	soften := ub.Func(ub.FuncType(uf32, uf32))
	ub.Import(soften, "soften#(float)")

	entry := ub.Func(ub.FuncType(uf32, uf32))
	ub.Export(entry, "hero#(float)")
	blk = ub.AppendBlock(entry)
	ub.SetInsertPoint(blk)
	x := ub.Param(uf32)
	amped := ub.Call(uf32, ampf, x)
	ub.ReturnValue(ub.Call(uf32, soften, amped))
	ub.SetInsertPoint(ir.Nil)

	return append(benchMedium(), lib, user)
}

type programCase struct {
	name  string
	build func() []*ir.Module
	entry string
}

var programsByComplexity = []programCase{
	{"small_literal", benchSmall, "flat#()"},
	{"medium_branchy", benchMedium, "shade#(float)"},
	{"large_generic", benchLarge, "hero#(float)"},
}

// ---------------------------------------------------------------------------
// End-to-end compilation benchmarks by complexity
// ---------------------------------------------------------------------------

// BenchmarkCompileEntryPoint benchmarks the full pipeline from module
// set to HLSL source, grouped by program complexity.
func BenchmarkCompileEntryPoint(b *testing.B) {
	for _, pc := range programsByComplexity {
		b.Run(pc.name, func(b *testing.B) {
			modules := pc.build()
			opts := DefaultOptions(ir.TargetHLSL)

			b.ReportAllocs()
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				var err error
				result, _, err = CompileEntryPoint(modules, pc.entry, opts)
				if err != nil {
					b.Fatalf("compile failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// ---------------------------------------------------------------------------
// Cross-target comparison: same program compiled to all 3 dialects
// ---------------------------------------------------------------------------

// BenchmarkCompileAllTargets benchmarks the medium program compiled to
// HLSL, GLSL, and C for cross-dialect comparison.
func BenchmarkCompileAllTargets(b *testing.B) {
	modules := benchMedium()

	for _, target := range []ir.Target{ir.TargetHLSL, ir.TargetGLSL, ir.TargetC} {
		b.Run(target.Name(), func(b *testing.B) {
			opts := DefaultOptions(target)

			b.ReportAllocs()
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				var err error
				result, _, err = CompileEntryPoint(modules, "shade#(float)", opts)
				if err != nil {
					b.Fatalf("compile failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// ---------------------------------------------------------------------------
// Individual pipeline stage benchmarks (resolve, link, emit)
// ---------------------------------------------------------------------------

// BenchmarkBuildSymbolTable benchmarks symbol table construction for
// programs of different complexity.
func BenchmarkBuildSymbolTable(b *testing.B) {
	for _, pc := range programsByComplexity {
		b.Run(pc.name, func(b *testing.B) {
			modules := pc.build()

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				table := link.BuildSymbolTable(modules)
				runtime.KeepAlive(table)
			}
		})
	}
}

// BenchmarkLinkEntryPoint benchmarks only the linking stage, with the
// symbol table and layouts computed once up front.
func BenchmarkLinkEntryPoint(b *testing.B) {
	for _, pc := range programsByComplexity {
		b.Run(pc.name, func(b *testing.B) {
			modules := pc.build()
			table := link.BuildSymbolTable(modules)
			globals, err := layout.ComputeGlobalLayouts(modules, ir.TargetHLSL)
			if err != nil {
				b.Fatalf("layout failed: %v", err)
			}
			opts := link.Options{Target: ir.TargetHLSL, GlobalLayouts: globals}

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				linked, _, lErr := link.LinkEntryPoint(table, pc.entry, opts)
				if lErr != nil {
					b.Fatalf("link failed: %v", lErr)
				}
				runtime.KeepAlive(linked)
			}
		})
	}
}

// BenchmarkEmit benchmarks only the rendering stage on a pre-linked
// module.
func BenchmarkEmit(b *testing.B) {
	modules := benchMedium()
	table := link.BuildSymbolTable(modules)

	for _, target := range []ir.Target{ir.TargetHLSL, ir.TargetGLSL, ir.TargetC} {
		b.Run(target.Name(), func(b *testing.B) {
			linked, entry, err := link.LinkEntryPoint(table, "shade#(float)", link.Options{Target: target})
			if err != nil {
				b.Fatalf("link failed: %v", err)
			}
			opts := emit.DefaultOptions(target)

			b.ReportAllocs()
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				var cErr error
				result, _, cErr = emit.Compile(linked, entry, opts)
				if cErr != nil {
					b.Fatalf("emit failed: %v", cErr)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}
