package gitoracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/temirov/relkit/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant        = "git executor not configured"
	repositoryPathRequiredMessageConstant    = "repository path must be provided"
	notGitRepositoryMessageConstant          = "not a git repository"
	repositoryCheckFailureTemplateConstant   = "%w: %s: %w"
	repositoryCheckErrorTemplateConstant     = "failed to inspect repository %s: %w"
	gitRevParseSubcommandConstant            = "rev-parse"
	gitDirFlagConstant                       = "--git-dir"
	commitLookupFailureTemplateConstant      = "failed to look up commit %s: %w"
	branchContainsFailureTemplateConstant    = "failed to list branches containing %s: %w"
	gitCatFileSubcommandConstant             = "cat-file"
	gitCommitObjectTypeConstant              = "commit"
	gitBranchSubcommandConstant              = "branch"
	gitContainsFlagConstant                  = "--contains"
	currentBranchMarkerConstant              = "* "
	otherBranchMarkerConstant                = "  "
	worktreeBranchMarkerConstant             = "+ "
	branchListingLineSeparatorConstant       = "\n"
	carriageReturnConstant                   = "\r"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableValue = "0"
)

// ErrGitExecutorNotConfigured indicates the oracle was constructed without a git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryPathRequired indicates the oracle was constructed without a repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrNotGitRepository indicates the repository path is not inside a git working copy.
var ErrNotGitRepository = errors.New(notGitRepositoryMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Oracle inspects the history of a single local repository.
type Oracle struct {
	executor        GitExecutor
	repositoryPath  string
	repositoryCheck sync.Once
	repositoryError error
}

// NewOracle constructs an Oracle bound to repositoryPath.
func NewOracle(executor GitExecutor, repositoryPath string) (*Oracle, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return nil, ErrRepositoryPathRequired
	}
	return &Oracle{executor: executor, repositoryPath: trimmedRepositoryPath}, nil
}

// IsReachable reports whether the commit object exists in the local object database.
// A non-zero exit from git means the commit is absent; any other failure is returned.
// The repository path is verified first, since git also exits non-zero outside a repository.
func (oracle *Oracle) IsReachable(executionContext context.Context, commitHash string) (bool, error) {
	if repositoryError := oracle.verifyRepository(executionContext); repositoryError != nil {
		return false, repositoryError
	}

	_, executionError := oracle.executor.ExecuteGit(executionContext, oracle.commandDetails(gitCatFileSubcommandConstant, gitCommitObjectTypeConstant, commitHash))
	if executionError == nil {
		return true, nil
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		return false, nil
	}
	return false, fmt.Errorf(commitLookupFailureTemplateConstant, commitHash, executionError)
}

// IsMerged reports whether the local branch named branch contains the commit.
func (oracle *Oracle) IsMerged(executionContext context.Context, commitHash string, branch string) (bool, error) {
	if repositoryError := oracle.verifyRepository(executionContext); repositoryError != nil {
		return false, repositoryError
	}

	result, executionError := oracle.executor.ExecuteGit(executionContext, oracle.commandDetails(gitBranchSubcommandConstant, gitContainsFlagConstant, commitHash))
	if executionError != nil {
		return false, fmt.Errorf(branchContainsFailureTemplateConstant, commitHash, executionError)
	}
	return listingContainsBranch(result.StandardOutput, branch), nil
}

// verifyRepository runs `git rev-parse --git-dir` once and remembers the outcome.
func (oracle *Oracle) verifyRepository(executionContext context.Context) error {
	oracle.repositoryCheck.Do(func() {
		_, executionError := oracle.executor.ExecuteGit(executionContext, oracle.commandDetails(gitRevParseSubcommandConstant, gitDirFlagConstant))
		if executionError == nil {
			return
		}
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			oracle.repositoryError = fmt.Errorf(repositoryCheckFailureTemplateConstant, ErrNotGitRepository, oracle.repositoryPath, executionError)
			return
		}
		oracle.repositoryError = fmt.Errorf(repositoryCheckErrorTemplateConstant, oracle.repositoryPath, executionError)
	})
	return oracle.repositoryError
}

func (oracle *Oracle) commandDetails(arguments ...string) execshell.CommandDetails {
	return execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     oracle.repositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableValue},
	}
}

// listingContainsBranch matches whole lines of `git branch` output, so "main"
// does not match "main-old".
func listingContainsBranch(listing string, branch string) bool {
	for _, line := range strings.Split(listing, branchListingLineSeparatorConstant) {
		trimmedLine := strings.TrimSuffix(line, carriageReturnConstant)
		for _, marker := range []string{currentBranchMarkerConstant, otherBranchMarkerConstant, worktreeBranchMarkerConstant} {
			if trimmedLine == marker+branch {
				return true
			}
		}
	}
	return false
}
