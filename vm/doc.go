// Package vm implements the Madeup interpreter.
//
// This package contains:
//   - The closed Value sum type and the operator table over value kinds
//   - Lexical environments and the immutable builtin registry
//   - Call binding with named, autoscoped and defaulted parameters
//   - The tree-walking evaluator that drives the turtle and the geometry engine
//   - Interpolation, the seeded random stream and the provenance trace
package vm
