// Package lines reads name lists, one name per line, from plain or gzip files
//
// Design choices:
// - Gzip is detected from the magic bytes, not the file extension.
// - Blank lines and lines starting with '#' are comments and never reach the resolver.
// - A line that is not valid UTF-8 yields domain.ErrSkipLine; the next call continues.
// - Lines are read with bufio.Reader so a single huge line cannot stall the scan.
package lines
