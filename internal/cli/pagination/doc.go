// Package pagination provides paging and sorting for CLI list commands.
//
// Two mutually exclusive modes are supported:
//   - Offset-based: --limit and --offset
//   - Page-based: --page and --page-size
//
// Sorting uses "field" or "field:order" expressions checked against a Sorter's
// known fields.
package pagination
