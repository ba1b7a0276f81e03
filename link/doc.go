// Package link resolves and specializes IR modules.
//
// Linking starts from the modules of one program: a user module plus
// the library modules it compiles against. Module-scope instructions
// carrying linkage names are collected into a SymbolTable, where one
// name can have several competing candidates (declarations, plain
// definitions, target-specialized definitions).
//
// LinkEntryPoint then clones the transitive closure of one entry
// point into a fresh destination module:
//
//   - every linkage-named reference is resolved through the symbol
//     table, picking the best candidate for the requested target
//   - clones are memoized in an environment, so each symbol is cloned
//     exactly once per link and all same-named candidates collapse to
//     a single destination instruction
//   - specialize instructions are reduced eagerly by evaluating the
//     generic's body with parameters bound to the given arguments
//   - layout records computed ahead of time are attached to the entry
//     function, its parameters and the global shader parameters
//
// The source modules are never mutated; a failed link leaves the
// symbol table exactly as built.
package link
