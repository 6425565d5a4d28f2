// Package formula parses and evaluates propositional formulas over fluents.
//
// Grammar:
//
//	formula := clause ("or" clause)*
//	clause  := literal ("and" literal)*
//	literal := ("~" | "!" | "not")? atom
//	atom    := name | "true" | "false"
//
// "&" and "&&" are accepted for "and", "|" and "||" for "or". Keywords are
// case-insensitive; fluent names are not.
//
// Parsing produces an Expr tree (Lit, Const, Not, And, Or). Evaluation is
// a table lookup of each fluent name in an Env, so a fluent never matches
// inside a longer name that shares its prefix. The empty formula parses to
// a nil Expr, which evaluates to true.
//
// Expr is a sealed interface: only types in this package implement it, so
// type switches over it are exhaustive.
package formula
