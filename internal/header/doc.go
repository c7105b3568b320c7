// Package header provides the file-level collaborators of a scan:
// deciding whether a path denotes a C/C++ header, enumerating header
// files under a directory root, and reading file contents with lossy
// decoding of invalid byte sequences.
package header
