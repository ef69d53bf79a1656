// Package percentencode encodes text for use as a single URL path segment,
// escaping every byte except unreserved characters.
package percentencode
