// Package render draws a compiled model for people: Graphviz DOT, a
// Mermaid state diagram, and a plain-text listing.
//
// Renderers read only the ir.Model snapshot, so they never touch a live
// system. Output is deterministic: states in enumeration order, edges in
// insertion order.
package render
