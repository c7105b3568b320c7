// Package main provides the entry point for the guardscan CLI.
//
// guardscan audits C and C++ header files for include-guard problems.
// It classifies each header as pragma-once, ifndef-guarded, or
// unprotected, and detects guard tags reused across multiple files.
//
// Usage:
//
//	guardscan scan <directory>
//	guardscan check <header-file>
//
// See --help for all available options.
package main

// main is the entry point for guardscan.
func main() {
	Execute()
}
