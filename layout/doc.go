// Package layout assigns binding locations to shader parameters.
//
// Resources claim explicit bindings first, then everything unbound is
// packed into the lowest free slots per register class. The computed
// records key by linkage name, so the linker can attach them while
// cloning.
package layout
