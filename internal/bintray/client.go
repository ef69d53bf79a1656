package bintray

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/retention"
)

const (
	// DefaultBaseURL is the public Bintray REST API root.
	DefaultBaseURL                        = "https://api.bintray.com"
	packagesPathSegmentConstant           = "packages"
	versionsPathSegmentConstant           = "versions"
	pathSeparatorConstant                 = "/"
	listVersionsOperationConstant         = "list versions"
	deleteVersionOperationConstant        = "delete version"
	loggerMissingMessageConstant          = "logger not configured"
	usernameMissingMessageConstant        = "Bintray user must be provided"
	apiTokenMissingMessageConstant        = "Bintray API token must be provided"
	subjectMissingMessageConstant         = "Bintray subject must be provided"
	repositoryMissingMessageConstant      = "Bintray repository must be provided"
	packageMissingMessageConstant         = "Bintray package must be provided"
	baseURLParseErrorTemplateConstant     = "invalid Bintray base URL %q: %w"
	requestCreationErrorTemplateConstant  = "unable to build %s request: %w"
	requestExecutionErrorTemplateConstant = "%s request failed: %w"
	responseDecodeErrorTemplateConstant   = "unable to decode %s response: %w"
	unexpectedStatusErrorTemplateConstant = "Bintray %s failed. Status: %d, reason: %s"
	listedVersionsMessageConstant         = "Listed Bintray versions"
	deletedVersionMessageConstant         = "Deleted Bintray version"
	logFieldPackageConstant               = "package"
	logFieldVersionCountConstant          = "version_count"
	logFieldVersionConstant               = "version"
	packageLabelTemplateConstant          = "%s/%s/%s"
)

var (
	// ErrLoggerNotConfigured indicates the client was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)
	// ErrUsernameRequired indicates a missing Bintray user.
	ErrUsernameRequired = errors.New(usernameMissingMessageConstant)
	// ErrAPITokenRequired indicates a missing Bintray API token.
	ErrAPITokenRequired = errors.New(apiTokenMissingMessageConstant)
	// ErrSubjectRequired indicates package coordinates without a subject.
	ErrSubjectRequired = errors.New(subjectMissingMessageConstant)
	// ErrRepositoryRequired indicates package coordinates without a repository.
	ErrRepositoryRequired = errors.New(repositoryMissingMessageConstant)
	// ErrPackageRequired indicates package coordinates without a package name.
	ErrPackageRequired = errors.New(packageMissingMessageConstant)
)

// HTTPClient issues HTTP requests.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// ClientConfiguration carries the Bintray endpoint and credentials.
type ClientConfiguration struct {
	BaseURL  string
	Username string
	APIToken string
}

// PackageCoordinates identify a Bintray package.
type PackageCoordinates struct {
	Subject    string
	Repository string
	Package    string
}

func (coordinates PackageCoordinates) validate() error {
	switch {
	case len(strings.TrimSpace(coordinates.Subject)) == 0:
		return ErrSubjectRequired
	case len(strings.TrimSpace(coordinates.Repository)) == 0:
		return ErrRepositoryRequired
	case len(strings.TrimSpace(coordinates.Package)) == 0:
		return ErrPackageRequired
	}
	return nil
}

func (coordinates PackageCoordinates) String() string {
	return fmt.Sprintf(packageLabelTemplateConstant, coordinates.Subject, coordinates.Repository, coordinates.Package)
}

// UnexpectedStatusError reports a Bintray response with an unexpected HTTP status.
type UnexpectedStatusError struct {
	Operation  string
	StatusCode int
	Status     string
}

// Error describes the failed operation and response status.
func (statusError UnexpectedStatusError) Error() string {
	return fmt.Sprintf(unexpectedStatusErrorTemplateConstant, statusError.Operation, statusError.StatusCode, statusError.Status)
}

type packageResponse struct {
	Versions []string `json:"versions"`
}

// Client talks to the Bintray REST API.
type Client struct {
	logger        *zap.Logger
	httpClient    HTTPClient
	baseURL       *url.URL
	configuration ClientConfiguration
}

// NewClient constructs a Client. A nil httpClient uses http.DefaultClient.
func NewClient(logger *zap.Logger, httpClient HTTPClient, configuration ClientConfiguration) (*Client, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	configuration.Username = strings.TrimSpace(configuration.Username)
	if len(configuration.Username) == 0 {
		return nil, ErrUsernameRequired
	}
	configuration.APIToken = strings.TrimSpace(configuration.APIToken)
	if len(configuration.APIToken) == 0 {
		return nil, ErrAPITokenRequired
	}

	rawBaseURL := strings.TrimSpace(configuration.BaseURL)
	if len(rawBaseURL) == 0 {
		rawBaseURL = DefaultBaseURL
	}
	parsedBaseURL, parseError := url.Parse(strings.TrimSuffix(rawBaseURL, pathSeparatorConstant))
	if parseError != nil {
		return nil, fmt.Errorf(baseURLParseErrorTemplateConstant, rawBaseURL, parseError)
	}
	configuration.BaseURL = parsedBaseURL.String()

	return &Client{
		logger:        logger,
		httpClient:    httpClient,
		baseURL:       parsedBaseURL,
		configuration: configuration,
	}, nil
}

// ListVersions returns the package's versions in registry order, newest first.
func (client *Client) ListVersions(executionContext context.Context, coordinates PackageCoordinates) ([]retention.VersionIdentifier, error) {
	if validationError := coordinates.validate(); validationError != nil {
		return nil, validationError
	}

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, client.packageURL(coordinates), nil)
	if requestError != nil {
		return nil, fmt.Errorf(requestCreationErrorTemplateConstant, listVersionsOperationConstant, requestError)
	}

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return nil, fmt.Errorf(requestExecutionErrorTemplateConstant, listVersionsOperationConstant, responseError)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, newUnexpectedStatusError(listVersionsOperationConstant, response)
	}

	var decodedResponse packageResponse
	if decodeError := json.NewDecoder(response.Body).Decode(&decodedResponse); decodeError != nil {
		return nil, fmt.Errorf(responseDecodeErrorTemplateConstant, listVersionsOperationConstant, decodeError)
	}

	versions := make([]retention.VersionIdentifier, 0, len(decodedResponse.Versions))
	for _, version := range decodedResponse.Versions {
		versions = append(versions, retention.VersionIdentifier(version))
	}

	client.logger.Debug(
		listedVersionsMessageConstant,
		zap.String(logFieldPackageConstant, coordinates.String()),
		zap.Int(logFieldVersionCountConstant, len(versions)),
	)
	return versions, nil
}

// DeleteVersion removes a single version. Any status other than 200 is an error.
func (client *Client) DeleteVersion(executionContext context.Context, coordinates PackageCoordinates, version retention.VersionIdentifier) error {
	if validationError := coordinates.validate(); validationError != nil {
		return validationError
	}

	versionURL := client.packageURL(coordinates, versionsPathSegmentConstant, string(version))
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodDelete, versionURL, nil)
	if requestError != nil {
		return fmt.Errorf(requestCreationErrorTemplateConstant, deleteVersionOperationConstant, requestError)
	}
	request.SetBasicAuth(client.configuration.Username, client.configuration.APIToken)

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return fmt.Errorf(requestExecutionErrorTemplateConstant, deleteVersionOperationConstant, responseError)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode != http.StatusOK {
		return newUnexpectedStatusError(deleteVersionOperationConstant, response)
	}

	client.logger.Debug(
		deletedVersionMessageConstant,
		zap.String(logFieldPackageConstant, coordinates.String()),
		zap.String(logFieldVersionConstant, string(version)),
	)
	return nil
}

// packageURL escapes every segment, so branch names containing "/" stay a single segment.
func (client *Client) packageURL(coordinates PackageCoordinates, extraSegments ...string) string {
	segments := []string{packagesPathSegmentConstant, coordinates.Subject, coordinates.Repository, coordinates.Package}
	segments = append(segments, extraSegments...)

	escapedSegments := make([]string, 0, len(segments))
	for _, segment := range segments {
		escapedSegments = append(escapedSegments, url.PathEscape(strings.TrimSpace(segment)))
	}
	return client.configuration.BaseURL + pathSeparatorConstant + strings.Join(escapedSegments, pathSeparatorConstant)
}

func newUnexpectedStatusError(operation string, response *http.Response) UnexpectedStatusError {
	return UnexpectedStatusError{
		Operation:  operation,
		StatusCode: response.StatusCode,
		Status:     http.StatusText(response.StatusCode),
	}
}
