// Package storage holds the planner's process-local state: the default cutting
// settings and a short-lived cache of computed plans.
package storage
