// Package reconcile merges new field information into an existing project
// without discarding user work.
//
// SetCatalog replaces one side's catalog wholesale and never touches rows.
// EnableRubric injects the template rows of a rubric into the active round;
// enabling an already enabled rubric is rejected with
// ErrRubricAlreadyEnabled and leaves the project unchanged. DisableRubric
// is destructive: every row tagged with the rubric code is deleted from
// every round, including rows the user has edited since.
package reconcile
