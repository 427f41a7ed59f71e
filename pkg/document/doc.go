// Package document implements the structural traversal shared by the
// differ, the cloner and the checksum routine.
//
// A state document is an opaque, recursively structured value made of
// keyed mappings (map[string]interface{}), ordered sequences
// ([]interface{}) and scalar leaves. The package does not interpret
// domain semantics: it only walks, copies, compares, addresses and
// canonically encodes the structure.
package document
