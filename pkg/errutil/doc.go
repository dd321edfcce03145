// Package errutil turns structured operation errors (a message, an optional
// JSON path and an optional extensions.code/fieldID pair) into errors a form
// can display. SplitErrorsByPath partitions an error list by the path prefixes
// a component is responsible for, Classify decides whether an error belongs to
// a destination field, and Consumer hands each error out at most once so the
// leftovers can be shown at dialog level. Nothing in this package keeps state
// between calls; the same input always yields the same partition.
package errutil
