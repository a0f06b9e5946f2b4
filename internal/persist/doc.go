// Package persist implements the three persistence channels of a project:
// the local slot store, JSON project files and spreadsheet workbooks.
//
// Every channel validates through the project package. A stored slot that
// no longer validates is treated as absent, so callers fall back to an
// empty project instead of failing. Imports never mutate the current
// project on failure: they return a new value or an error.
package persist
