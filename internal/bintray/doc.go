// Package bintray prunes stale package versions from a Bintray repository.
//
// Versions are listed through the Bintray REST API, classified by the
// retention planner against the local git history and the GitHub default
// branch, and deleted one at a time. The first failed deletion aborts the
// remaining batch.
package bintray
