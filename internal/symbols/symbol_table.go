// symbols/symbol_table.go - Main symbol table entry point
//
// The table is split into focused files:
// - symbol_table_core.go: Sigil, Binding, Sub and scope types
// - symbol_table_operations.go: scopes, binding, lookup, predeclarations
// - symbol_table_aliases.go: collision-safe alias allocation and normalisation
// - symbol_table_packages.go: package registry shared by compilation units

package symbols
