// Package credentials resolves API tokens supplied either literally or through
// env:NAME and file:/path references.
package credentials
