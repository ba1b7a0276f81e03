package ir

// Op is the operation tag of an instruction.
type Op uint8

const (
	// OpInvalid occupies arena slot zero and never tags a live
	// instruction.
	OpInvalid Op = iota

	// OpModule is the root of a module; its children are the
	// module-scope instructions.
	OpModule

	// Type instructions. Keep this block contiguous; IsType relies
	// on the range.
	OpVoidType
	OpBoolType
	OpIntType
	OpUIntType
	OpFloatType
	OpVecType            // operands: element type, lane count literal
	OpMatType            // operands: element type, columns, rows
	OpPtrType            // operands: pointee type
	OpArrayType          // operands: element type, length literal
	OpFuncType           // operands: result type, then parameter types
	OpStructType         // children: OpStructField
	OpSamplerType        //
	OpTextureType        // operands: sampled element type
	OpConstantBufferType // operands: element type

	// Literal instructions. Keep contiguous; IsLiteral relies on
	// the range.
	OpBoolLit
	OpIntLit
	OpFloatLit
	OpStringLit

	// Module-scope values.
	OpFunc           // children: blocks
	OpGeneric        // children: one block returning the inner value
	OpGlobalVar      // type: pointer to the stored value
	OpGlobalConstant // operands: initializer
	OpGlobalParam    // type: parameter type
	OpStructKey      // str: field name
	OpStructField    // operands: struct key, field type

	// OpBindGlobalParam associates a global parameter with the value
	// supplied for it. Operands: parameter, value.
	OpBindGlobalParam

	// Code structure.
	OpBlock
	OpParam
	OpVar // function-local variable; type is the pointer type

	// Body instructions.
	OpCall          // operands: callee, then arguments
	OpIntrinsicCall // str: intrinsic name; operands: arguments
	OpSpecialize    // operands: generic, then arguments
	OpLoad          // operands: pointer
	OpStore         // operands: pointer, value
	OpFieldExtract  // operands: value, struct key
	OpFieldAddress  // operands: pointer, struct key
	OpElemExtract   // operands: value, index
	OpConstruct     // operands: components
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpEq
	OpNeq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpSelect // operands: condition, accept, reject

	// Terminators. Keep contiguous; IsTerminator relies on the
	// range.
	OpReturnValue // operands: value
	OpReturnVoid
	OpBranch      // operands: target block
	OpCondBranch  // operands: condition, then block, else block
	OpUnreachable

	opCount
)

var opNames = [opCount]string{
	OpInvalid:            "invalid",
	OpModule:             "module",
	OpVoidType:           "void_type",
	OpBoolType:           "bool_type",
	OpIntType:            "int_type",
	OpUIntType:           "uint_type",
	OpFloatType:          "float_type",
	OpVecType:            "vec_type",
	OpMatType:            "mat_type",
	OpPtrType:            "ptr_type",
	OpArrayType:          "array_type",
	OpFuncType:           "func_type",
	OpStructType:         "struct_type",
	OpSamplerType:        "sampler_type",
	OpTextureType:        "texture_type",
	OpConstantBufferType: "constant_buffer_type",
	OpBoolLit:            "bool_lit",
	OpIntLit:             "int_lit",
	OpFloatLit:           "float_lit",
	OpStringLit:          "string_lit",
	OpFunc:               "func",
	OpGeneric:            "generic",
	OpGlobalVar:          "global_var",
	OpGlobalConstant:     "global_constant",
	OpGlobalParam:        "global_param",
	OpStructKey:          "struct_key",
	OpStructField:        "struct_field",
	OpBindGlobalParam:    "bind_global_param",
	OpBlock:              "block",
	OpParam:              "param",
	OpVar:                "var",
	OpCall:               "call",
	OpIntrinsicCall:      "intrinsic_call",
	OpSpecialize:         "specialize",
	OpLoad:               "load",
	OpStore:              "store",
	OpFieldExtract:       "field_extract",
	OpFieldAddress:       "field_address",
	OpElemExtract:        "elem_extract",
	OpConstruct:          "construct",
	OpAdd:                "add",
	OpSub:                "sub",
	OpMul:                "mul",
	OpDiv:                "div",
	OpNeg:                "neg",
	OpEq:                 "eq",
	OpNeq:                "neq",
	OpLess:               "less",
	OpLessEq:             "less_eq",
	OpGreater:            "greater",
	OpGreaterEq:          "greater_eq",
	OpSelect:             "select",
	OpReturnValue:        "return_value",
	OpReturnVoid:         "return_void",
	OpBranch:             "branch",
	OpCondBranch:         "cond_branch",
	OpUnreachable:        "unreachable",
}

// String returns the lower-case mnemonic of op.
func (op Op) String() string {
	if op >= opCount {
		return "invalid"
	}
	return opNames[op]
}

// IsType reports whether op declares a type.
func (op Op) IsType() bool {
	return op >= OpVoidType && op <= OpConstantBufferType
}

// IsLiteral reports whether op is a literal value.
func (op Op) IsLiteral() bool {
	return op >= OpBoolLit && op <= OpStringLit
}

// IsGlobalValue reports whether op declares a module-scope value that
// may carry linkage and resolves through the symbol table.
func (op Op) IsGlobalValue() bool {
	switch op {
	case OpFunc, OpGeneric, OpGlobalVar, OpGlobalConstant,
		OpGlobalParam, OpStructKey, OpStructType:
		return true
	}
	return false
}

// HasCode reports whether instructions of this op parent blocks.
func (op Op) HasCode() bool {
	return op == OpFunc || op == OpGeneric
}

// IsTerminator reports whether op ends a block.
func (op Op) IsTerminator() bool {
	return op >= OpReturnValue && op <= OpUnreachable
}
