package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v81/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	nilContextMessageConstant             = "github client: context is nil"
	ownerRequiredMessageConstant          = "repository owner must be provided"
	repositoryRequiredMessageConstant     = "repository name must be provided"
	repositoryFullNameErrorTemplate       = "repository %q must be in owner/name form"
	baseURLParseErrorTemplate             = "invalid GitHub API base URL %q: %w"
	repositoryLookupErrorTemplate         = "failed to look up repository %s/%s: %w"
	branchListingErrorTemplate            = "failed to list branches of %s/%s: %w"
	authorizationTokenTypeConstant        = "token"
	branchPageSizeConstant                = 100
	repositoryPathSeparatorConstant       = "/"
	trailingSlashConstant                 = "/"
	requestStartedMessageConstant         = "GitHub API request"
	requestCompletedMessageConstant       = "GitHub API response"
	requestFailedMessageConstant          = "GitHub API request failed"
	branchListingTruncatedMessageConstant = "Branch listing has more pages; only the first page is used"
	defaultBranchResolvedMessageConstant  = "Resolved default branch"
	branchesListedMessageConstant         = "Listed repository branches"
	logFieldMethodConstant                = "method"
	logFieldURLConstant                   = "url"
	logFieldStatusConstant                = "status"
	logFieldDurationConstant              = "duration"
	logFieldRepositoryConstant            = "repository"
	logFieldBranchConstant                = "branch"
	logFieldBranchCountConstant           = "branch_count"
	logFieldNextPageConstant              = "next_page"
)

var (
	// ErrNilContext indicates NewClient was called without a context.
	ErrNilContext = errors.New(nilContextMessageConstant)
	// ErrOwnerRequired indicates an empty repository owner.
	ErrOwnerRequired = errors.New(ownerRequiredMessageConstant)
	// ErrRepositoryRequired indicates an empty repository name.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
)

// Client resolves repository metadata through the GitHub REST API.
type Client struct {
	client *github.Client
	logger *zap.Logger
}

type clientOptions struct {
	baseURL   string
	logger    *zap.Logger
	transport http.RoundTripper
}

// Option customizes a Client.
type Option func(*clientOptions)

// WithBaseURL points the client at a different API root, such as a GitHub
// Enterprise installation or a test server.
func WithBaseURL(baseURL string) Option {
	return func(options *clientOptions) {
		options.baseURL = baseURL
	}
}

// WithLogger enables debug logging of every API round trip.
func WithLogger(logger *zap.Logger) Option {
	return func(options *clientOptions) {
		options.logger = logger
	}
}

// WithTransport replaces the base HTTP transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(options *clientOptions) {
		options.transport = transport
	}
}

// NewClient constructs a Client. An empty token produces an unauthenticated client.
func NewClient(executionContext context.Context, token string, options ...Option) (*Client, error) {
	if executionContext == nil {
		return nil, ErrNilContext
	}

	resolvedOptions := &clientOptions{}
	for _, apply := range options {
		if apply != nil {
			apply(resolvedOptions)
		}
	}
	logger := resolvedOptions.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := resolvedOptions.transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	transport = &loggingRoundTripper{base: transport, logger: logger}

	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) > 0 {
		tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken, TokenType: authorizationTokenTypeConstant})
		transport = &oauth2.Transport{Source: tokenSource, Base: transport}
	}

	githubClient := github.NewClient(&http.Client{Transport: transport})

	if len(resolvedOptions.baseURL) > 0 {
		rawBaseURL := resolvedOptions.baseURL
		if !strings.HasSuffix(rawBaseURL, trailingSlashConstant) {
			rawBaseURL += trailingSlashConstant
		}
		parsedBaseURL, parseError := url.Parse(rawBaseURL)
		if parseError != nil {
			return nil, fmt.Errorf(baseURLParseErrorTemplate, resolvedOptions.baseURL, parseError)
		}
		githubClient.BaseURL = parsedBaseURL
	}

	return &Client{client: githubClient, logger: logger}, nil
}

// DefaultBranch returns the default branch name of owner/repository.
func (client *Client) DefaultBranch(executionContext context.Context, owner string, repository string) (string, error) {
	trimmedOwner, trimmedRepository, validationError := validateRepository(owner, repository)
	if validationError != nil {
		return "", validationError
	}

	repositoryDetails, _, lookupError := client.client.Repositories.Get(executionContext, trimmedOwner, trimmedRepository)
	if lookupError != nil {
		return "", fmt.Errorf(repositoryLookupErrorTemplate, trimmedOwner, trimmedRepository, lookupError)
	}

	defaultBranch := repositoryDetails.GetDefaultBranch()
	client.logger.Debug(
		defaultBranchResolvedMessageConstant,
		zap.String(logFieldRepositoryConstant, trimmedOwner+repositoryPathSeparatorConstant+trimmedRepository),
		zap.String(logFieldBranchConstant, defaultBranch),
	)
	return defaultBranch, nil
}

// ListBranchNames returns the names on the first page of owner/repository branches.
func (client *Client) ListBranchNames(executionContext context.Context, owner string, repository string) ([]string, error) {
	trimmedOwner, trimmedRepository, validationError := validateRepository(owner, repository)
	if validationError != nil {
		return nil, validationError
	}

	listOptions := &github.BranchListOptions{ListOptions: github.ListOptions{PerPage: branchPageSizeConstant}}
	branches, response, listingError := client.client.Repositories.ListBranches(executionContext, trimmedOwner, trimmedRepository, listOptions)
	if listingError != nil {
		return nil, fmt.Errorf(branchListingErrorTemplate, trimmedOwner, trimmedRepository, listingError)
	}

	repositoryLabel := trimmedOwner + repositoryPathSeparatorConstant + trimmedRepository
	if response != nil && response.NextPage != 0 {
		client.logger.Warn(
			branchListingTruncatedMessageConstant,
			zap.String(logFieldRepositoryConstant, repositoryLabel),
			zap.Int(logFieldNextPageConstant, response.NextPage),
		)
	}

	branchNames := make([]string, 0, len(branches))
	for _, branch := range branches {
		branchNames = append(branchNames, branch.GetName())
	}
	client.logger.Debug(
		branchesListedMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryLabel),
		zap.Int(logFieldBranchCountConstant, len(branchNames)),
	)
	return branchNames, nil
}

// SplitRepositoryFullName splits "owner/name" into its parts.
func SplitRepositoryFullName(fullName string) (string, string, error) {
	owner, repository, found := strings.Cut(strings.TrimSpace(fullName), repositoryPathSeparatorConstant)
	if !found || len(strings.TrimSpace(owner)) == 0 || len(strings.TrimSpace(repository)) == 0 {
		return "", "", fmt.Errorf(repositoryFullNameErrorTemplate, fullName)
	}
	return strings.TrimSpace(owner), strings.TrimSpace(repository), nil
}

func validateRepository(owner string, repository string) (string, string, error) {
	trimmedOwner := strings.TrimSpace(owner)
	if len(trimmedOwner) == 0 {
		return "", "", ErrOwnerRequired
	}
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedRepository) == 0 {
		return "", "", ErrRepositoryRequired
	}
	return trimmedOwner, trimmedRepository, nil
}

// loggingRoundTripper emits one debug entry per request and per response.
type loggingRoundTripper struct {
	base   http.RoundTripper
	logger *zap.Logger
}

func (roundTripper *loggingRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	startTime := time.Now()
	roundTripper.logger.Debug(
		requestStartedMessageConstant,
		zap.String(logFieldMethodConstant, request.Method),
		zap.String(logFieldURLConstant, request.URL.String()),
	)

	response, roundTripError := roundTripper.base.RoundTrip(request)
	elapsed := time.Since(startTime)
	if roundTripError != nil {
		roundTripper.logger.Debug(
			requestFailedMessageConstant,
			zap.String(logFieldMethodConstant, request.Method),
			zap.String(logFieldURLConstant, request.URL.String()),
			zap.Duration(logFieldDurationConstant, elapsed),
			zap.Error(roundTripError),
		)
		return response, roundTripError
	}

	roundTripper.logger.Debug(
		requestCompletedMessageConstant,
		zap.String(logFieldMethodConstant, request.Method),
		zap.String(logFieldURLConstant, request.URL.String()),
		zap.Int(logFieldStatusConstant, response.StatusCode),
		zap.Duration(logFieldDurationConstant, elapsed),
	)
	return response, nil
}
