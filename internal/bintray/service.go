package bintray

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/retention"
)

const (
	registryClientMissingMessageConstant   = "Bintray registry client not configured"
	repositoryClientMissingMessageConstant = "GitHub repository client not configured"
	oracleMissingMessageConstant           = "reachability oracle not configured"
	reporterMissingMessageConstant         = "deletion reporter not configured"
	githubOwnerMissingMessageConstant      = "GitHub owner must be provided"
	githubRepositoryMissingMessageConstant = "GitHub repository must be provided"
	listVersionsErrorTemplateConstant      = "unable to list versions of %s: %w"
	defaultBranchErrorTemplateConstant     = "unable to resolve default branch of %s/%s: %w"
	planErrorTemplateConstant              = "unable to plan version retention: %w"
	deleteVersionErrorTemplateConstant     = "unable to delete version %s: %w"
	plannedPruneMessageConstant            = "Planned Bintray version pruning"
	dryRunMessageConstant                  = "Dry run enabled; skipping Bintray deletions"
	prunedVersionMessageConstant           = "Pruned Bintray version"
	logFieldDefaultBranchConstant          = "default_branch"
	logFieldTotalConstant                  = "total_versions"
	logFieldDeleteCountConstant            = "delete_count"
	logFieldKeepCountConstant              = "explicit_keep_count"
	logFieldRetainedCountConstant          = "retained_count"
	logFieldSkippedCountConstant           = "skipped_count"
)

var (
	// ErrRegistryClientNotConfigured indicates a missing Bintray client dependency.
	ErrRegistryClientNotConfigured = errors.New(registryClientMissingMessageConstant)
	// ErrRepositoryClientNotConfigured indicates a missing GitHub client dependency.
	ErrRepositoryClientNotConfigured = errors.New(repositoryClientMissingMessageConstant)
	// ErrOracleNotConfigured indicates a missing reachability oracle dependency.
	ErrOracleNotConfigured = errors.New(oracleMissingMessageConstant)
	// ErrReporterNotConfigured indicates a missing deletion reporter dependency.
	ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)
	// ErrGitHubOwnerRequired indicates an empty GitHub owner option.
	ErrGitHubOwnerRequired = errors.New(githubOwnerMissingMessageConstant)
	// ErrGitHubRepositoryRequired indicates an empty GitHub repository option.
	ErrGitHubRepositoryRequired = errors.New(githubRepositoryMissingMessageConstant)
)

// RegistryClient lists and deletes package versions.
type RegistryClient interface {
	ListVersions(executionContext context.Context, coordinates PackageCoordinates) ([]retention.VersionIdentifier, error)
	DeleteVersion(executionContext context.Context, coordinates PackageCoordinates, version retention.VersionIdentifier) error
}

// RepositoryClient resolves the default branch of the source repository.
type RepositoryClient interface {
	DefaultBranch(executionContext context.Context, owner string, repository string) (string, error)
}

// DeletionReporter announces deletions to the operator.
type DeletionReporter interface {
	ReportDeletion(item string)
	ReportNothingToDelete()
	ReportDryRun()
}

// ServiceDependencies enumerates collaborators required by PruneService.
type ServiceDependencies struct {
	Registry   RegistryClient
	Repository RepositoryClient
	Oracle     retention.ReachabilityOracle
	Reporter   DeletionReporter
}

// ConnectionSettings describe how the service reaches its collaborators.
type ConnectionSettings struct {
	BintrayToken   string
	BintrayBaseURL string
	GitHubToken    string
	GitHubBaseURL  string
	RepositoryPath string
}

// PruneOptions configure a pruning run.
type PruneOptions struct {
	Package          PackageCoordinates
	GitHubOwner      string
	GitHubRepository string
	KeepCount        int
	DryRun           bool
	Connection       ConnectionSettings
}

// PruneResult summarizes a pruning run.
type PruneResult struct {
	TotalVersions   int
	DeletedVersions []retention.VersionIdentifier
	KeptVersions    []retention.VersionIdentifier
}

// PruneExecutor runs a pruning pass.
type PruneExecutor interface {
	Execute(executionContext context.Context, options PruneOptions) (PruneResult, error)
}

// PruneService deletes stale Bintray versions.
type PruneService struct {
	logger     *zap.Logger
	registry   RegistryClient
	repository RepositoryClient
	oracle     retention.ReachabilityOracle
	reporter   DeletionReporter
}

// NewPruneService constructs a PruneService from the provided dependencies.
func NewPruneService(logger *zap.Logger, dependencies ServiceDependencies) (*PruneService, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.Registry == nil {
		return nil, ErrRegistryClientNotConfigured
	}
	if dependencies.Repository == nil {
		return nil, ErrRepositoryClientNotConfigured
	}
	if dependencies.Oracle == nil {
		return nil, ErrOracleNotConfigured
	}
	if dependencies.Reporter == nil {
		return nil, ErrReporterNotConfigured
	}

	return &PruneService{
		logger:     logger,
		registry:   dependencies.Registry,
		repository: dependencies.Repository,
		oracle:     dependencies.Oracle,
		reporter:   dependencies.Reporter,
	}, nil
}

// Execute lists versions, plans retention and deletes the stale versions in order.
// Deletion stops at the first failure; versions already deleted are reported in the result.
func (service *PruneService) Execute(executionContext context.Context, options PruneOptions) (PruneResult, error) {
	githubOwner := strings.TrimSpace(options.GitHubOwner)
	if len(githubOwner) == 0 {
		return PruneResult{}, ErrGitHubOwnerRequired
	}
	githubRepository := strings.TrimSpace(options.GitHubRepository)
	if len(githubRepository) == 0 {
		return PruneResult{}, ErrGitHubRepositoryRequired
	}
	if options.KeepCount < 0 {
		return PruneResult{}, retention.ErrNegativeKeepCount
	}

	versions, listError := service.registry.ListVersions(executionContext, options.Package)
	if listError != nil {
		return PruneResult{}, fmt.Errorf(listVersionsErrorTemplateConstant, options.Package.String(), listError)
	}

	defaultBranch, branchError := service.repository.DefaultBranch(executionContext, githubOwner, githubRepository)
	if branchError != nil {
		return PruneResult{}, fmt.Errorf(defaultBranchErrorTemplateConstant, githubOwner, githubRepository, branchError)
	}

	decision, planError := retention.Plan(executionContext, retention.PlanInput{
		Versions:      versions,
		DefaultBranch: defaultBranch,
		KeepCount:     options.KeepCount,
	}, service.oracle)
	if planError != nil {
		return PruneResult{}, fmt.Errorf(planErrorTemplateConstant, planError)
	}

	service.logger.Info(
		plannedPruneMessageConstant,
		zap.String(logFieldPackageConstant, options.Package.String()),
		zap.String(logFieldDefaultBranchConstant, defaultBranch),
		zap.Int(logFieldTotalConstant, len(versions)),
		zap.Int(logFieldDeleteCountConstant, len(decision.ToDelete)),
		zap.Int(logFieldKeepCountConstant, len(decision.ToKeep)),
		zap.Int(logFieldRetainedCountConstant, len(decision.Retained)),
		zap.Int(logFieldSkippedCountConstant, len(decision.Skipped)),
	)

	result := PruneResult{
		TotalVersions:   len(versions),
		DeletedVersions: make([]retention.VersionIdentifier, 0, len(decision.ToDelete)),
		KeptVersions:    keptVersions(versions, decision),
	}

	if len(decision.ToDelete) == 0 {
		service.reporter.ReportNothingToDelete()
		return result, nil
	}

	if options.DryRun {
		for _, version := range decision.ToDelete {
			service.reporter.ReportDeletion(string(version))
		}
		service.reporter.ReportDryRun()
		service.logger.Info(dryRunMessageConstant, zap.Int(logFieldDeleteCountConstant, len(decision.ToDelete)))
		return result, nil
	}

	for _, version := range decision.ToDelete {
		service.reporter.ReportDeletion(string(version))
		if deleteError := service.registry.DeleteVersion(executionContext, options.Package, version); deleteError != nil {
			return result, fmt.Errorf(deleteVersionErrorTemplateConstant, version, deleteError)
		}
		result.DeletedVersions = append(result.DeletedVersions, version)
		service.logger.Info(prunedVersionMessageConstant, zap.String(logFieldVersionConstant, string(version)))
	}

	return result, nil
}

// keptVersions lists every version not scheduled for deletion, in registry order.
func keptVersions(versions []retention.VersionIdentifier, decision retention.Decision) []retention.VersionIdentifier {
	scheduled := make(map[retention.VersionIdentifier]struct{}, len(decision.ToDelete))
	for _, version := range decision.ToDelete {
		scheduled[version] = struct{}{}
	}

	kept := make([]retention.VersionIdentifier, 0, len(versions)-len(decision.ToDelete))
	for _, version := range versions {
		if _, deleted := scheduled[version]; deleted {
			continue
		}
		kept = append(kept, version)
	}
	return kept
}
