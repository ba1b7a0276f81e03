// Package ir defines the intermediate representation for shade.
//
// The IR is designed to be:
//   - Uniform: Every entity (type, literal, function, block, body
//     instruction) is an instruction node in one graph
//   - Linkable: Module-scope instructions carry linkage decorations so
//     separately built modules can be resolved against each other
//   - Compact: Instructions live in a per-module arena and reference
//     each other through integer handles
//
// # Structure
//
// A Module owns an arena of instructions. The root instruction
// (OpModule) parents every module-scope instruction: types with
// identity, functions, generics, global variables, parameters and
// constants. Functions and generics parent blocks; blocks parent
// parameters and body instructions in execution order.
//
// Instructions reference each other by InstID, an index into the
// owning module's arena. IDs are never shared between modules; moving
// a value across modules always means cloning it into the destination
// arena.
//
// # Translation Pipeline
//
// The typical pipeline is:
//
//	Builder → modules → link (resolve + specialize) → layout → emit
//
// The link stage consumes several modules and produces a single fresh
// module containing the transitive closure of one entry point.
//
// # References
//
// This IR design is inspired by:
//   - SPIR-V (instruction, decoration and linkage model):
//     https://www.khronos.org/registry/SPIR-V/
//   - LLVM (module-at-a-time linking of typed instruction graphs):
//     https://llvm.org/docs/LangRef.html#linkage-types
package ir
