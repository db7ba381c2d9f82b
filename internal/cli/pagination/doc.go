// Package pagination sorts and pages sweep results for CLI output.
//
// Two mutually exclusive modes are supported: offset-based (--limit and
// --offset) and page-based (--page and --page-size).
package pagination
