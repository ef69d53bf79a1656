package bintray

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/credentials"
	"github.com/temirov/relkit/internal/execshell"
	"github.com/temirov/relkit/internal/githubapi"
	"github.com/temirov/relkit/internal/gitoracle"
	"github.com/temirov/relkit/internal/ui"
)

const (
	bintrayTokenNameConstant             = "--bintray-token"
	tokenResolutionErrorTemplateConstant = "unable to resolve %s: %w"
	githubTokenNameConstant              = "GitHub token"
)

// PruneServiceResolver creates prune executors for the command.
type PruneServiceResolver interface {
	Resolve(executionContext context.Context, logger *zap.Logger, options PruneOptions) (PruneExecutor, error)
}

// DefaultPruneServiceResolver wires a PruneService against Bintray, GitHub and the local git repository.
type DefaultPruneServiceResolver struct {
	HTTPClient           HTTPClient
	GitHubTransport      http.RoundTripper
	CommandRunner        execshell.CommandRunner
	CommandEventObserver execshell.CommandEventObserver
	TokenResolver        *credentials.TokenResolver
	Output               io.Writer
	ReporterOptions      []ui.DeletionReporterOption
}

// Resolve creates a prune executor using configured collaborators or defaults.
func (resolver *DefaultPruneServiceResolver) Resolve(executionContext context.Context, logger *zap.Logger, options PruneOptions) (PruneExecutor, error) {
	tokenResolver := resolver.TokenResolver
	if tokenResolver == nil {
		tokenResolver = credentials.NewTokenResolver(nil, nil)
	}

	bintrayToken, bintrayTokenError := tokenResolver.ResolveRequired(executionContext, options.Connection.BintrayToken, bintrayTokenNameConstant)
	if bintrayTokenError != nil {
		return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, bintrayTokenNameConstant, bintrayTokenError)
	}
	githubToken, githubTokenError := tokenResolver.ResolveGitHubToken(executionContext, options.Connection.GitHubToken)
	if githubTokenError != nil {
		return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, githubTokenNameConstant, githubTokenError)
	}

	registryClient, registryError := NewClient(logger, resolver.HTTPClient, ClientConfiguration{
		BaseURL:  options.Connection.BintrayBaseURL,
		Username: options.Package.Subject,
		APIToken: bintrayToken,
	})
	if registryError != nil {
		return nil, registryError
	}

	githubOptions := []githubapi.Option{githubapi.WithLogger(logger)}
	if len(options.Connection.GitHubBaseURL) > 0 {
		githubOptions = append(githubOptions, githubapi.WithBaseURL(options.Connection.GitHubBaseURL))
	}
	if resolver.GitHubTransport != nil {
		githubOptions = append(githubOptions, githubapi.WithTransport(resolver.GitHubTransport))
	}
	repositoryClient, repositoryError := githubapi.NewClient(executionContext, githubToken, githubOptions...)
	if repositoryError != nil {
		return nil, repositoryError
	}

	commandRunner := resolver.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}
	executorOptions := make([]execshell.ShellExecutorOption, 0, 1)
	if resolver.CommandEventObserver != nil {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(resolver.CommandEventObserver))
	}
	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, executorOptions...)
	if executorError != nil {
		return nil, executorError
	}

	oracle, oracleError := gitoracle.NewOracle(shellExecutor, options.Connection.RepositoryPath)
	if oracleError != nil {
		return nil, oracleError
	}

	reporter := ui.NewDeletionReporter(resolver.Output, ui.BintrayDeletionTarget, resolver.ReporterOptions...)

	pruneService, serviceError := NewPruneService(logger, ServiceDependencies{
		Registry:   registryClient,
		Repository: repositoryClient,
		Oracle:     oracle,
		Reporter:   reporter,
	})
	if serviceError != nil {
		return nil, serviceError
	}
	return pruneService, nil
}
