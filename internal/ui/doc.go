// Package ui provides helpers for formatting human-readable console output.
//
// Command lifecycle events are rendered through zap in console mode, and
// deletion announcements are written directly to the operator's terminal.
package ui
