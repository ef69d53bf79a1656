package retention

import (
	"context"
	"errors"
	"fmt"
)

const (
	negativeKeepCountMessageConstant   = "number of versions to keep must not be negative"
	oracleNotConfiguredMessageConstant = "reachability oracle not configured"
	reachabilityCheckErrorTemplate     = "unable to check reachability of commit %s on branch %s: %w"
	mergeCheckErrorTemplate            = "unable to check whether commit %s on branch %s is merged into %s: %w"
)

var (
	// ErrNegativeKeepCount indicates a negative retention count.
	ErrNegativeKeepCount = errors.New(negativeKeepCountMessageConstant)
	// ErrOracleNotConfigured indicates Plan was called without a reachability oracle.
	ErrOracleNotConfigured = errors.New(oracleNotConfiguredMessageConstant)
)

// ReachabilityOracle answers commit-history questions about the local repository.
type ReachabilityOracle interface {
	// IsReachable reports whether the commit object exists in local history.
	IsReachable(executionContext context.Context, commitHash string) (bool, error)
	// IsMerged reports whether the named local branch contains the commit.
	IsMerged(executionContext context.Context, commitHash string, branch string) (bool, error)
}

// PlanInput carries the registry listing and retention policy for Plan.
type PlanInput struct {
	// Versions in registry response order, newest first.
	Versions      []VersionIdentifier
	DefaultBranch string
	KeepCount     int
}

// Decision partitions the input versions.
type Decision struct {
	// ToDelete holds stale branch groups followed by versions beyond the retention count.
	ToDelete []VersionIdentifier
	// ToKeep holds the latest version of every active non-default branch.
	ToKeep []VersionIdentifier
	// Retained holds versions kept implicitly because they fall within the retention count.
	Retained []VersionIdentifier
	// Skipped holds default-branch versions, which this plan never touches.
	Skipped []VersionIdentifier
}

type branchGroup struct {
	branch   string
	versions []ParsedVersion
}

// Plan decides which versions to delete and which to keep.
func Plan(executionContext context.Context, input PlanInput, oracle ReachabilityOracle) (Decision, error) {
	if input.KeepCount < 0 {
		return Decision{}, ErrNegativeKeepCount
	}
	if oracle == nil {
		return Decision{}, ErrOracleNotConfigured
	}

	parsedVersions := make([]ParsedVersion, 0, len(input.Versions))
	for _, identifier := range input.Versions {
		parsedVersion, parseError := ParseVersion(identifier)
		if parseError != nil {
			return Decision{}, parseError
		}
		parsedVersions = append(parsedVersions, parsedVersion)
	}

	decision := Decision{}
	classified := make(map[VersionIdentifier]struct{}, len(parsedVersions))

	for _, group := range groupByBranch(parsedVersions) {
		if group.branch == input.DefaultBranch {
			for _, parsedVersion := range group.versions {
				decision.Skipped = append(decision.Skipped, parsedVersion.Identifier)
				classified[parsedVersion.Identifier] = struct{}{}
			}
			continue
		}

		latestVersion := group.versions[0]
		stale, staleError := isStale(executionContext, oracle, latestVersion, input.DefaultBranch)
		if staleError != nil {
			return Decision{}, staleError
		}

		if stale {
			for _, parsedVersion := range group.versions {
				decision.ToDelete = append(decision.ToDelete, parsedVersion.Identifier)
				classified[parsedVersion.Identifier] = struct{}{}
			}
			continue
		}

		decision.ToKeep = append(decision.ToKeep, latestVersion.Identifier)
		classified[latestVersion.Identifier] = struct{}{}
	}

	unprocessed := make([]VersionIdentifier, 0, len(parsedVersions))
	for _, parsedVersion := range parsedVersions {
		if _, alreadyClassified := classified[parsedVersion.Identifier]; alreadyClassified {
			continue
		}
		unprocessed = append(unprocessed, parsedVersion.Identifier)
	}

	// Explicit keeps take priority over the retention count.
	cutoff := input.KeepCount - len(decision.ToKeep)
	if cutoff < 0 {
		cutoff = 0
	}
	if len(unprocessed) > cutoff {
		decision.ToDelete = append(decision.ToDelete, unprocessed[cutoff:]...)
		unprocessed = unprocessed[:cutoff]
	}
	decision.Retained = unprocessed

	return decision, nil
}

func isStale(executionContext context.Context, oracle ReachabilityOracle, latestVersion ParsedVersion, defaultBranch string) (bool, error) {
	reachable, reachabilityError := oracle.IsReachable(executionContext, latestVersion.CommitHash)
	if reachabilityError != nil {
		return false, fmt.Errorf(reachabilityCheckErrorTemplate, latestVersion.CommitHash, latestVersion.Branch, reachabilityError)
	}
	if !reachable {
		return true, nil
	}

	merged, mergeError := oracle.IsMerged(executionContext, latestVersion.CommitHash, defaultBranch)
	if mergeError != nil {
		return false, fmt.Errorf(mergeCheckErrorTemplate, latestVersion.CommitHash, latestVersion.Branch, defaultBranch, mergeError)
	}
	return merged, nil
}

// groupByBranch keeps branches in order of first appearance and versions in input order.
func groupByBranch(parsedVersions []ParsedVersion) []branchGroup {
	groupIndexByBranch := make(map[string]int)
	groups := make([]branchGroup, 0)
	for _, parsedVersion := range parsedVersions {
		groupIndex, exists := groupIndexByBranch[parsedVersion.Branch]
		if !exists {
			groupIndex = len(groups)
			groupIndexByBranch[parsedVersion.Branch] = groupIndex
			groups = append(groups, branchGroup{branch: parsedVersion.Branch})
		}
		groups[groupIndex].versions = append(groups[groupIndex].versions, parsedVersion)
	}
	return groups
}
