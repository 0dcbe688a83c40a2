// Package jsonschema derives a JSON Schema from a Go type by reflection.
//
// It exists so that the keys a caller validates against, and the schema it
// shows the generator, come from the same struct definition. [Generate]
// handles structs, primitives, slices, maps and pointers; a struct that
// contains itself is emitted once and referenced through $defs.
package jsonschema
