// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions relkit uses to run
// git, archive extractors, and native build tools in a testable manner.
package execshell
