// Package gitoracle answers commit reachability questions by running git
// against a local clone.
package gitoracle
