package artifactory

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/credentials"
	"github.com/temirov/relkit/internal/githubapi"
	"github.com/temirov/relkit/internal/ui"
)

const (
	apiKeyNameConstant                   = "--artifactory-api-key"
	githubTokenNameConstant              = "GitHub token"
	tokenResolutionErrorTemplateConstant = "unable to resolve %s: %w"
)

// PruneServiceResolver creates prune executors for the command.
type PruneServiceResolver interface {
	Resolve(executionContext context.Context, logger *zap.Logger, options PruneOptions) (PruneExecutor, error)
}

// DefaultPruneServiceResolver wires a PruneService against Artifactory and GitHub.
type DefaultPruneServiceResolver struct {
	HTTPClient      HTTPClient
	GitHubTransport http.RoundTripper
	TokenResolver   *credentials.TokenResolver
	Output          io.Writer
	ReporterOptions []ui.DeletionReporterOption
}

// Resolve creates a prune executor using configured collaborators or defaults.
func (resolver *DefaultPruneServiceResolver) Resolve(executionContext context.Context, logger *zap.Logger, options PruneOptions) (PruneExecutor, error) {
	tokenResolver := resolver.TokenResolver
	if tokenResolver == nil {
		tokenResolver = credentials.NewTokenResolver(nil, nil)
	}

	apiKey, apiKeyError := tokenResolver.ResolveRequired(executionContext, options.Connection.ArtifactoryAPIKey, apiKeyNameConstant)
	if apiKeyError != nil {
		return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, apiKeyNameConstant, apiKeyError)
	}
	githubToken, githubTokenError := tokenResolver.ResolveGitHubToken(executionContext, options.Connection.GitHubToken)
	if githubTokenError != nil {
		return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, githubTokenNameConstant, githubTokenError)
	}

	artifactClient, artifactError := NewClient(logger, resolver.HTTPClient, ClientConfiguration{
		Host:    options.Connection.ArtifactoryHost,
		BaseURL: options.Connection.ArtifactoryBaseURL,
		APIKey:  apiKey,
	})
	if artifactError != nil {
		return nil, artifactError
	}

	githubOptions := []githubapi.Option{githubapi.WithLogger(logger)}
	if len(options.Connection.GitHubBaseURL) > 0 {
		githubOptions = append(githubOptions, githubapi.WithBaseURL(options.Connection.GitHubBaseURL))
	}
	if resolver.GitHubTransport != nil {
		githubOptions = append(githubOptions, githubapi.WithTransport(resolver.GitHubTransport))
	}
	branchLister, githubError := githubapi.NewClient(executionContext, githubToken, githubOptions...)
	if githubError != nil {
		return nil, githubError
	}

	reporter := ui.NewDeletionReporter(resolver.Output, ui.ArtifactoryDeletionTarget, resolver.ReporterOptions...)

	pruneService, serviceError := NewPruneService(logger, ServiceDependencies{
		Artifacts: artifactClient,
		Branches:  branchLister,
		Reporter:  reporter,
	})
	if serviceError != nil {
		return nil, serviceError
	}
	return pruneService, nil
}
