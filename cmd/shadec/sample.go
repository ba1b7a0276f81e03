package main

import (
	"github.com/gogpu/shade/ir"
	"github.com/gogpu/shade/mangle"
	"github.com/gogpu/shade/request"
)

// sampleProgram builds the embedded demo program: a color-grading
// library plus a user module with a fragment and a vertex entry point.
//
// The library exports luminance weights as named constants, a
// luminance function, a tone mapper with an HLSL-only override, and a
// generic gain helper the user module specializes to float. The user
// module owns a constant buffer, so the output also shows resource
// binding per target.
func sampleProgram() (*request.Manifest, []*ir.Module) {
	lumaName := mangle.Function(mangle.Qualify("color", "luma"), "float4")
	tonemapName := mangle.Function(mangle.Qualify("color", "tonemap"), "float")
	boostName := mangle.Generic(mangle.Qualify("color", "boost"), "T")
	mainName := mangle.Function("main", "float4")
	cornerName := mangle.Function("corner", "float2")

	lib := buildColorLibrary(lumaName, tonemapName, boostName)
	user := buildDemoModule(lumaName, tonemapName, boostName, mainName, cornerName)

	manifest := &request.Manifest{
		Name:    "demo",
		Targets: []string{"hlsl", "glsl", "c"},
		Entries: []request.ManifestEntry{
			{Name: mainName, Stage: "fragment"},
			{Name: cornerName, Stage: "vertex"},
		},
	}
	return manifest, []*ir.Module{lib, user}
}

func buildColorLibrary(lumaName, tonemapName, boostName string) *ir.Module {
	m := ir.NewModule("colorlib")
	b := ir.NewBuilder(m)
	f32 := b.FloatType()
	v4 := b.VecType(f32, 4)

	// Rec. 709 luminance weights.
	wr := b.GlobalConstant(f32, b.FloatLit(0.2126))
	b.Export(wr, mangle.Global(mangle.Qualify("color", "wr")))
	wg := b.GlobalConstant(f32, b.FloatLit(0.7152))
	b.Export(wg, mangle.Global(mangle.Qualify("color", "wg")))
	wb := b.GlobalConstant(f32, b.FloatLit(0.0722))
	b.Export(wb, mangle.Global(mangle.Qualify("color", "wb")))

	luma := b.Func(b.FuncType(f32, v4))
	b.Export(luma, lumaName)
	blk := b.AppendBlock(luma)
	b.SetInsertPoint(blk)
	c := b.Param(v4)
	r := b.Mul(f32, b.ElemExtract(f32, c, b.IntLit(0)), wr)
	g := b.Mul(f32, b.ElemExtract(f32, c, b.IntLit(1)), wg)
	bl := b.Mul(f32, b.ElemExtract(f32, c, b.IntLit(2)), wb)
	b.ReturnValue(b.Add(f32, b.Add(f32, r, g), bl))

	// Portable Reinhard curve.
	tonemap := b.Func(b.FuncType(f32, f32))
	b.Export(tonemap, tonemapName)
	blk = b.AppendBlock(tonemap)
	b.SetInsertPoint(blk)
	x := b.Param(f32)
	b.ReturnValue(b.Div(f32, x, b.Add(f32, x, b.FloatLit(1))))

	// HLSL gets the hardware clamp instead.
	fast := b.Func(b.FuncType(f32, f32))
	b.Export(fast, tonemapName)
	b.SetTarget(fast, ir.TargetHLSL)
	blk = b.AppendBlock(fast)
	b.SetInsertPoint(blk)
	x = b.Param(f32)
	b.ReturnValue(b.IntrinsicCall(f32, "saturate", x))
	b.SetInsertPoint(ir.Nil)

	// boost#<T>: a generic gain function, doubled per element type.
	gen := b.Generic()
	b.Export(gen, boostName)
	gblk := b.AppendBlock(gen)
	tparam := m.NewInst(ir.OpParam, ir.Nil)
	m.AppendChild(gblk, tparam)
	fnType := m.NewInst(ir.OpFuncType, ir.Nil)
	m.SetOperands(fnType, tparam, tparam)
	m.AppendChild(gblk, fnType)
	fn := m.NewInst(ir.OpFunc, fnType)
	m.AppendChild(gblk, fn)
	fblk := m.NewInst(ir.OpBlock, ir.Nil)
	m.AppendChild(fn, fblk)
	p := m.NewInst(ir.OpParam, tparam)
	m.AppendChild(fblk, p)
	two := b.FloatLit(2)
	mul := m.NewInst(ir.OpMul, tparam)
	m.SetOperands(mul, p, two)
	m.AppendChild(fblk, mul)
	ret := m.NewInst(ir.OpReturnValue, ir.Nil)
	m.SetOperands(ret, mul)
	m.AppendChild(fblk, ret)
	gret := m.NewInst(ir.OpReturnValue, ir.Nil)
	m.SetOperands(gret, fn)
	m.AppendChild(gblk, gret)

	return m
}

func buildDemoModule(lumaName, tonemapName, boostName, mainName, cornerName string) *ir.Module {
	m := ir.NewModule("demo")
	b := ir.NewBuilder(m)
	f32 := b.FloatType()
	v2 := b.VecType(f32, 2)
	v4 := b.VecType(f32, 4)

	luma := b.Func(b.FuncType(f32, v4))
	b.Import(luma, lumaName)
	tonemap := b.Func(b.FuncType(f32, f32))
	b.Import(tonemap, tonemapName)

	gen := m.NewInst(ir.OpGeneric, ir.Nil)
	m.AppendChild(m.Root(), gen)
	b.Import(gen, boostName)
	boostf := b.Specialize(ir.Nil, gen, f32)

	exposureKey := b.StructKey("exposure")
	params := b.StructType(ir.StructField{Key: exposureKey, Type: f32})
	cb := b.GlobalParam(b.ConstantBufferType(params))
	b.Export(cb, mangle.Global(mangle.Qualify("demo", "params")))

	frag := b.Func(b.FuncType(v4, v4))
	b.Export(frag, mainName)
	blk := b.AppendBlock(frag)
	b.SetInsertPoint(blk)
	color := b.Param(v4)
	l := b.Call(f32, luma, color)
	exposed := b.Mul(f32, l, b.FieldExtract(f32, cb, exposureKey))
	mapped := b.Call(f32, tonemap, exposed)
	boosted := b.Call(f32, boostf, mapped)
	b.ReturnValue(b.Construct(v4, boosted, boosted, boosted, b.FloatLit(1)))

	corner := b.Func(b.FuncType(v4, v2))
	b.Export(corner, cornerName)
	blk = b.AppendBlock(corner)
	b.SetInsertPoint(blk)
	pos := b.Param(v2)
	b.ReturnValue(b.Construct(v4,
		b.ElemExtract(f32, pos, b.IntLit(0)),
		b.ElemExtract(f32, pos, b.IntLit(1)),
		b.FloatLit(0), b.FloatLit(1)))
	b.SetInsertPoint(ir.Nil)

	return m
}
