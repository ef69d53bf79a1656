package retention

import (
	"errors"
	"fmt"
	"strings"
)

const (
	versionSegmentSeparatorConstant  = "-"
	branchSeparatorConstant          = "_"
	commitSegmentIndexConstant       = 2
	commitPrefixLengthConstant       = 1
	malformedVersionMessageConstant  = "malformed version identifier"
	malformedVersionTemplateConstant = "%s %q: %s"
	missingCommitSegmentReason       = "expected at least three hyphen-separated segments"
	missingBranchSeparatorReason     = "missing underscore before branch name"
	emptyCommitHashReason            = "commit hash is empty"
	emptyBranchReason                = "branch name is empty"
)

// ErrMalformedVersion is the sentinel wrapped by MalformedVersionError.
var ErrMalformedVersion = errors.New(malformedVersionMessageConstant)

// VersionIdentifier is an opaque version string emitted by the package registry.
type VersionIdentifier string

// ParsedVersion is the typed form of a VersionIdentifier.
type ParsedVersion struct {
	Identifier VersionIdentifier
	CommitHash string
	Branch     string
}

// MalformedVersionError reports a version identifier that does not follow the
// <version>-<count>-g<hash>_<branch> layout.
type MalformedVersionError struct {
	Identifier VersionIdentifier
	Reason     string
}

// Error describes the malformed identifier.
func (malformedError MalformedVersionError) Error() string {
	return fmt.Sprintf(malformedVersionTemplateConstant, malformedVersionMessageConstant, string(malformedError.Identifier), malformedError.Reason)
}

// Unwrap exposes ErrMalformedVersion for errors.Is checks.
func (malformedError MalformedVersionError) Unwrap() error {
	return ErrMalformedVersion
}

// ParseVersion extracts the commit hash and branch from a version identifier.
//
// For "1.4.0-12-g1a2b3c4_feature/login" the commit hash is "1a2b3c4" (third
// hyphen segment, up to the first underscore, without its leading character)
// and the branch is "feature/login" (everything after the first underscore).
func ParseVersion(identifier VersionIdentifier) (ParsedVersion, error) {
	rawIdentifier := string(identifier)

	segments := strings.Split(rawIdentifier, versionSegmentSeparatorConstant)
	if len(segments) <= commitSegmentIndexConstant {
		return ParsedVersion{}, MalformedVersionError{Identifier: identifier, Reason: missingCommitSegmentReason}
	}

	branchSeparatorIndex := strings.Index(rawIdentifier, branchSeparatorConstant)
	if branchSeparatorIndex < 0 {
		return ParsedVersion{}, MalformedVersionError{Identifier: identifier, Reason: missingBranchSeparatorReason}
	}

	commitSegment, _, _ := strings.Cut(segments[commitSegmentIndexConstant], branchSeparatorConstant)
	if len(commitSegment) <= commitPrefixLengthConstant {
		return ParsedVersion{}, MalformedVersionError{Identifier: identifier, Reason: emptyCommitHashReason}
	}

	branch := rawIdentifier[branchSeparatorIndex+len(branchSeparatorConstant):]
	if len(branch) == 0 {
		return ParsedVersion{}, MalformedVersionError{Identifier: identifier, Reason: emptyBranchReason}
	}

	return ParsedVersion{
		Identifier: identifier,
		CommitHash: commitSegment[commitPrefixLengthConstant:],
		Branch:     branch,
	}, nil
}
