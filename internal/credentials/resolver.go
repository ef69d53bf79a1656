package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	pathutils "github.com/temirov/relkit/internal/utils/path"
)

const (
	tokenSourceSeparatorConstant               = ":"
	environmentTokenSourceTypeValueConstant    = "env"
	fileTokenSourceTypeValueConstant           = "file"
	environmentNameMissingErrorMessageConstant = "environment variable name must be provided"
	filePathMissingErrorMessageConstant        = "token file path must be provided"
	environmentTokenMissingTemplateConstant    = "environment variable %s is not set"
	fileReadErrorTemplateConstant              = "unable to read token file %s: %w"
	fileTokenEmptyErrorTemplateConstant        = "token file %s is empty"
	unsupportedTokenSourceTemplateConstant     = "unsupported token source type %q"
	requiredCredentialMissingTemplateConstant  = "%s must be provided"
)

// Environment variables consulted for a GitHub token when none is configured.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var gitHubTokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

var (
	// ErrEnvironmentNameMissing indicates an "env:" reference without a variable name.
	ErrEnvironmentNameMissing = errors.New(environmentNameMissingErrorMessageConstant)
	// ErrFilePathMissing indicates a "file:" reference without a path.
	ErrFilePathMissing = errors.New(filePathMissingErrorMessageConstant)
)

// TokenSourceType enumerates the supported token retrieval mechanisms.
type TokenSourceType string

// Token source type enumerations.
const (
	TokenSourceTypeLiteral     TokenSourceType = "literal"
	TokenSourceTypeEnvironment TokenSourceType = TokenSourceType(environmentTokenSourceTypeValueConstant)
	TokenSourceTypeFile        TokenSourceType = TokenSourceType(fileTokenSourceTypeValueConstant)
)

// TokenSource describes where a credential comes from.
type TokenSource struct {
	Type      TokenSourceType
	Reference string
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// ParseTokenSource interprets a configured credential value. Values prefixed
// with "env:" or "file:" are references; anything else is the token itself.
func ParseTokenSource(value string) (TokenSource, error) {
	trimmedValue := strings.TrimSpace(value)

	prefix, reference, found := strings.Cut(trimmedValue, tokenSourceSeparatorConstant)
	if !found {
		return TokenSource{Type: TokenSourceTypeLiteral, Reference: trimmedValue}, nil
	}

	reference = strings.TrimSpace(reference)
	switch strings.ToLower(strings.TrimSpace(prefix)) {
	case environmentTokenSourceTypeValueConstant:
		if len(reference) == 0 {
			return TokenSource{}, ErrEnvironmentNameMissing
		}
		return TokenSource{Type: TokenSourceTypeEnvironment, Reference: reference}, nil
	case fileTokenSourceTypeValueConstant:
		if len(reference) == 0 {
			return TokenSource{}, ErrFilePathMissing
		}
		return TokenSource{Type: TokenSourceTypeFile, Reference: reference}, nil
	default:
		return TokenSource{Type: TokenSourceTypeLiteral, Reference: trimmedValue}, nil
	}
}

// TokenResolver turns configured credential values into tokens.
type TokenResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
	homeExpander      *pathutils.HomeExpander
}

// NewTokenResolver creates a resolver; nil dependencies fall back to the process environment and filesystem.
func NewTokenResolver(environmentLookup EnvironmentLookup, fileReader FileReader) *TokenResolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}
	return &TokenResolver{
		environmentLookup: environmentLookup,
		fileReader:        fileReader,
		homeExpander:      pathutils.NewHomeExpander(),
	}
}

// Resolve returns the token for value. An empty value resolves to an empty token.
func (resolver *TokenResolver) Resolve(resolutionContext context.Context, value string) (string, error) {
	source, parseError := ParseTokenSource(value)
	if parseError != nil {
		return "", parseError
	}
	return resolver.ResolveSource(resolutionContext, source)
}

// ResolveRequired behaves like Resolve but fails when the token is empty.
func (resolver *TokenResolver) ResolveRequired(resolutionContext context.Context, value string, name string) (string, error) {
	token, resolveError := resolver.Resolve(resolutionContext, value)
	if resolveError != nil {
		return "", resolveError
	}
	if len(token) == 0 {
		return "", fmt.Errorf(requiredCredentialMissingTemplateConstant, name)
	}
	return token, nil
}

// ResolveGitHubToken resolves value, falling back to GH_TOKEN, GITHUB_TOKEN
// and GITHUB_API_TOKEN when value is empty. An empty result means anonymous access.
func (resolver *TokenResolver) ResolveGitHubToken(resolutionContext context.Context, value string) (string, error) {
	if len(strings.TrimSpace(value)) > 0 {
		return resolver.Resolve(resolutionContext, value)
	}
	for _, environmentName := range gitHubTokenPreference {
		if environmentValue, found := resolver.environmentLookup(environmentName); found {
			trimmedValue := strings.TrimSpace(environmentValue)
			if len(trimmedValue) > 0 {
				return trimmedValue, nil
			}
		}
	}
	return "", nil
}

// ResolveSource reads the token described by source.
func (resolver *TokenResolver) ResolveSource(resolutionContext context.Context, source TokenSource) (string, error) {
	_ = resolutionContext
	switch source.Type {
	case TokenSourceTypeLiteral:
		return strings.TrimSpace(source.Reference), nil
	case TokenSourceTypeEnvironment:
		value, found := resolver.environmentLookup(source.Reference)
		trimmedValue := strings.TrimSpace(value)
		if !found || len(trimmedValue) == 0 {
			return "", fmt.Errorf(environmentTokenMissingTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case TokenSourceTypeFile:
		filePath := resolver.homeExpander.Expand(source.Reference)
		contents, readError := resolver.fileReader(filePath)
		if readError != nil {
			return "", fmt.Errorf(fileReadErrorTemplateConstant, filePath, readError)
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(fileTokenEmptyErrorTemplateConstant, filePath)
		}
		return trimmedValue, nil
	default:
		return "", fmt.Errorf(unsupportedTokenSourceTemplateConstant, source.Type)
	}
}
