// Package retention decides which published package versions are stale.
//
// ParseVersion turns registry version identifiers into typed records carrying
// the commit hash and branch they were built from. Plan groups versions by
// branch, consults a ReachabilityOracle for each branch's latest commit, and
// applies the numeric retention count to whatever remains. Plan performs no I/O
// of its own; all side effects live behind the oracle.
package retention
