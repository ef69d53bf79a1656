package artifactory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/githubapi"
)

const (
	artifactClientMissingMessageConstant = "Artifactory client not configured"
	branchListerMissingMessageConstant   = "GitHub branch lister not configured"
	reporterMissingMessageConstant       = "deletion reporter not configured"
	listBranchesErrorTemplateConstant    = "unable to list branches of %s: %w"
	listFoldersErrorTemplateConstant     = "unable to list folders of %s: %w"
	deleteFolderErrorTemplateConstant    = "unable to delete folder %s: %w"
	plannedPruneMessageConstant          = "Planned Artifactory branch folder pruning"
	dryRunMessageConstant                = "Dry run enabled; skipping Artifactory deletions"
	prunedFolderMessageConstant          = "Pruned Artifactory branch folder"
	logFieldGitHubRepositoryConstant     = "github_repository"
	logFieldCurrentBranchConstant        = "current_branch"
	logFieldBranchCountConstant          = "branch_count"
	logFieldDeleteCountConstant          = "delete_count"
)

var (
	// ErrArtifactClientNotConfigured indicates a missing Artifactory client dependency.
	ErrArtifactClientNotConfigured = errors.New(artifactClientMissingMessageConstant)
	// ErrBranchListerNotConfigured indicates a missing GitHub client dependency.
	ErrBranchListerNotConfigured = errors.New(branchListerMissingMessageConstant)
	// ErrReporterNotConfigured indicates a missing deletion reporter dependency.
	ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)
)

// ArtifactClient lists and deletes branch folders.
type ArtifactClient interface {
	ListBranchFolders(executionContext context.Context, repository string) ([]string, error)
	DeleteBranchFolder(executionContext context.Context, repository string, folder string) error
}

// BranchLister lists the branches of a GitHub repository.
type BranchLister interface {
	ListBranchNames(executionContext context.Context, owner string, repository string) ([]string, error)
}

// DeletionReporter announces deletions to the operator.
type DeletionReporter interface {
	ReportDeletion(item string)
	ReportNothingToDelete()
	ReportDryRun()
}

// ServiceDependencies enumerates collaborators required by PruneService.
type ServiceDependencies struct {
	Artifacts ArtifactClient
	Branches  BranchLister
	Reporter  DeletionReporter
}

// ConnectionSettings describe how the service reaches Artifactory and GitHub.
type ConnectionSettings struct {
	ArtifactoryHost    string
	ArtifactoryBaseURL string
	ArtifactoryAPIKey  string
	GitHubToken        string
	GitHubBaseURL      string
}

// PruneOptions configure a pruning run.
type PruneOptions struct {
	ArtifactoryRepository string
	GitHubRepository      string
	CurrentBranch         string
	DryRun                bool
	Connection            ConnectionSettings
}

// PruneResult summarizes a pruning run.
type PruneResult struct {
	TotalFolders   int
	DeletedFolders []string
}

// PruneExecutor runs a pruning pass.
type PruneExecutor interface {
	Execute(executionContext context.Context, options PruneOptions) (PruneResult, error)
}

// PruneService deletes artifact folders of deleted branches.
type PruneService struct {
	logger    *zap.Logger
	artifacts ArtifactClient
	branches  BranchLister
	reporter  DeletionReporter
}

// NewPruneService constructs a PruneService from the provided dependencies.
func NewPruneService(logger *zap.Logger, dependencies ServiceDependencies) (*PruneService, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.Artifacts == nil {
		return nil, ErrArtifactClientNotConfigured
	}
	if dependencies.Branches == nil {
		return nil, ErrBranchListerNotConfigured
	}
	if dependencies.Reporter == nil {
		return nil, ErrReporterNotConfigured
	}

	return &PruneService{
		logger:    logger,
		artifacts: dependencies.Artifacts,
		branches:  dependencies.Branches,
		reporter:  dependencies.Reporter,
	}, nil
}

// Execute deletes every folder whose branch is gone, plus the current branch folder.
// Deletion stops at the first failure.
func (service *PruneService) Execute(executionContext context.Context, options PruneOptions) (PruneResult, error) {
	artifactoryRepository := strings.TrimSpace(options.ArtifactoryRepository)
	if len(artifactoryRepository) == 0 {
		return PruneResult{}, ErrRepositoryRequired
	}
	githubOwner, githubRepository, splitError := githubapi.SplitRepositoryFullName(options.GitHubRepository)
	if splitError != nil {
		return PruneResult{}, splitError
	}

	branches, branchesError := service.branches.ListBranchNames(executionContext, githubOwner, githubRepository)
	if branchesError != nil {
		return PruneResult{}, fmt.Errorf(listBranchesErrorTemplateConstant, options.GitHubRepository, branchesError)
	}

	folders, foldersError := service.artifacts.ListBranchFolders(executionContext, artifactoryRepository)
	if foldersError != nil {
		return PruneResult{}, fmt.Errorf(listFoldersErrorTemplateConstant, artifactoryRepository, foldersError)
	}

	selectedFolders := SelectFoldersForDeletion(folders, branches, options.CurrentBranch)
	service.logger.Info(
		plannedPruneMessageConstant,
		zap.String(logFieldRepositoryConstant, artifactoryRepository),
		zap.String(logFieldGitHubRepositoryConstant, options.GitHubRepository),
		zap.String(logFieldCurrentBranchConstant, options.CurrentBranch),
		zap.Int(logFieldBranchCountConstant, len(branches)),
		zap.Int(logFieldFolderCountConstant, len(folders)),
		zap.Int(logFieldDeleteCountConstant, len(selectedFolders)),
	)

	result := PruneResult{
		TotalFolders:   len(folders),
		DeletedFolders: make([]string, 0, len(selectedFolders)),
	}

	if len(selectedFolders) == 0 {
		service.reporter.ReportNothingToDelete()
		return result, nil
	}

	if options.DryRun {
		for _, folder := range selectedFolders {
			service.reporter.ReportDeletion(folder)
		}
		service.reporter.ReportDryRun()
		service.logger.Info(dryRunMessageConstant, zap.Int(logFieldDeleteCountConstant, len(selectedFolders)))
		return result, nil
	}

	for _, folder := range selectedFolders {
		service.reporter.ReportDeletion(folder)
		if deleteError := service.artifacts.DeleteBranchFolder(executionContext, artifactoryRepository, folder); deleteError != nil {
			return result, fmt.Errorf(deleteFolderErrorTemplateConstant, folder, deleteError)
		}
		result.DeletedFolders = append(result.DeletedFolders, folder)
		service.logger.Info(prunedFolderMessageConstant, zap.String(logFieldFolderConstant, folder))
	}

	return result, nil
}
