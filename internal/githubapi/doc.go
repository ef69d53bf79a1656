// Package githubapi wraps the GitHub REST endpoints used to resolve a
// repository's default branch and its existing branch names.
package githubapi
