// Package installer downloads, extracts and builds third-party C++ dependencies
// (Boost and Protocol Buffers) for CI machines. Each installer skips all work
// when its "already built" marker is present.
package installer
