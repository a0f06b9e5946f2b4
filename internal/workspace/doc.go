// Package workspace holds the open mapping project of an editor session.
//
// A Session owns one project at a time. Every mutation works on a clone
// that is autosaved and only then becomes the current project, so a
// failed operation leaves the previous valid state in place. Outcomes
// meant for the user are reported as diagnostics:
//   - Errors: unreadable or invalid files
//   - Warnings: conflicts such as enabling an active rubric
//   - Infos: empty results and confirmations
package workspace
