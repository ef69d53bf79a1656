package artifactory

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
)

const (
	baseURLTemplateConstant               = "https://%s/artifactory"
	storageAPIPathTemplateConstant        = "%s/api/storage/%s/"
	folderPathTemplateConstant            = "%s/%s/%s"
	apiKeyHeaderNameConstant              = "X-JFrog-Art-Api"
	folderURIPrefixConstant               = "/"
	pathSeparatorConstant                 = "/"
	listFoldersOperationConstant          = "list folders"
	deleteFolderOperationConstant         = "delete folder"
	loggerMissingMessageConstant          = "logger not configured"
	hostMissingMessageConstant            = "Artifactory host must be provided"
	apiKeyMissingMessageConstant          = "Artifactory API key must be provided"
	repositoryMissingMessageConstant      = "Artifactory repository must be provided"
	folderMissingMessageConstant          = "Artifactory folder must be provided"
	baseURLParseErrorTemplateConstant     = "invalid Artifactory base URL %q: %w"
	requestCreationErrorTemplateConstant  = "unable to build %s request: %w"
	requestExecutionErrorTemplateConstant = "%s request failed: %w"
	responseDecodeErrorTemplateConstant   = "unable to decode %s response: %w"
	unexpectedStatusErrorTemplateConstant = "Artifactory %s failed. Status: %d, reason: %s"
	listedFoldersMessageConstant          = "Listed Artifactory branch folders"
	deletedFolderMessageConstant          = "Deleted Artifactory branch folder"
	logFieldRepositoryConstant            = "repository"
	logFieldFolderCountConstant           = "folder_count"
	logFieldFolderConstant                = "folder"
)

var (
	// ErrLoggerNotConfigured indicates a missing logger dependency.
	ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)
	// ErrHostRequired indicates neither a host nor a base URL was configured.
	ErrHostRequired = errors.New(hostMissingMessageConstant)
	// ErrAPIKeyRequired indicates a missing API key.
	ErrAPIKeyRequired = errors.New(apiKeyMissingMessageConstant)
	// ErrRepositoryRequired indicates a missing repository name.
	ErrRepositoryRequired = errors.New(repositoryMissingMessageConstant)
	// ErrFolderRequired indicates an empty folder name.
	ErrFolderRequired = errors.New(folderMissingMessageConstant)
)

// HTTPClient issues HTTP requests.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// ClientConfiguration carries the Artifactory endpoint and API key.
// BaseURL overrides the https://{Host}/artifactory default.
type ClientConfiguration struct {
	Host    string
	BaseURL string
	APIKey  string
}

// UnexpectedStatusError reports an Artifactory response with an unexpected HTTP status.
type UnexpectedStatusError struct {
	Operation  string
	StatusCode int
	Status     string
}

// Error describes the failed operation and response status.
func (statusError UnexpectedStatusError) Error() string {
	return fmt.Sprintf(unexpectedStatusErrorTemplateConstant, statusError.Operation, statusError.StatusCode, statusError.Status)
}

type storageChild struct {
	URI    string `json:"uri"`
	Folder bool   `json:"folder"`
}

type storageResponse struct {
	Children []storageChild `json:"children"`
}

// Client talks to the Artifactory storage and repository APIs.
type Client struct {
	logger     *zap.Logger
	httpClient HTTPClient
	baseURL    string
	apiKey     string
}

// NewClient constructs a Client. A nil httpClient uses http.DefaultClient.
func NewClient(logger *zap.Logger, httpClient HTTPClient, configuration ClientConfiguration) (*Client, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	apiKey := strings.TrimSpace(configuration.APIKey)
	if len(apiKey) == 0 {
		return nil, ErrAPIKeyRequired
	}

	rawBaseURL := strings.TrimSpace(configuration.BaseURL)
	if len(rawBaseURL) == 0 {
		host := strings.TrimSpace(configuration.Host)
		if len(host) == 0 {
			return nil, ErrHostRequired
		}
		rawBaseURL = fmt.Sprintf(baseURLTemplateConstant, host)
	}
	parsedBaseURL, parseError := url.Parse(strings.TrimSuffix(rawBaseURL, pathSeparatorConstant))
	if parseError != nil {
		return nil, fmt.Errorf(baseURLParseErrorTemplateConstant, rawBaseURL, parseError)
	}

	return &Client{
		logger:     logger,
		httpClient: httpClient,
		baseURL:    parsedBaseURL.String(),
		apiKey:     apiKey,
	}, nil
}

// ListBranchFolders returns the names of the repository's top-level folders.
func (client *Client) ListBranchFolders(executionContext context.Context, repository string) ([]string, error) {
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedRepository) == 0 {
		return nil, ErrRepositoryRequired
	}

	storageURL := fmt.Sprintf(storageAPIPathTemplateConstant, client.baseURL, url.PathEscape(trimmedRepository))
	response, requestError := client.do(executionContext, http.MethodGet, storageURL, listFoldersOperationConstant)
	if requestError != nil {
		return nil, requestError
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, newUnexpectedStatusError(listFoldersOperationConstant, response)
	}

	var decodedResponse storageResponse
	if decodeError := json.NewDecoder(response.Body).Decode(&decodedResponse); decodeError != nil {
		return nil, fmt.Errorf(responseDecodeErrorTemplateConstant, listFoldersOperationConstant, decodeError)
	}

	folders := make([]string, 0, len(decodedResponse.Children))
	for _, child := range decodedResponse.Children {
		if !child.Folder {
			continue
		}
		folders = append(folders, strings.TrimPrefix(child.URI, folderURIPrefixConstant))
	}

	client.logger.Debug(
		listedFoldersMessageConstant,
		zap.String(logFieldRepositoryConstant, trimmedRepository),
		zap.Int(logFieldFolderCountConstant, len(folders)),
	)
	return folders, nil
}

// DeleteBranchFolder removes a folder. The folder name is used as returned by
// ListBranchFolders, already percent-encoded. Any status other than 204 is an error.
func (client *Client) DeleteBranchFolder(executionContext context.Context, repository string, folder string) error {
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedRepository) == 0 {
		return ErrRepositoryRequired
	}
	if len(folder) == 0 {
		return ErrFolderRequired
	}

	folderURL := fmt.Sprintf(folderPathTemplateConstant, client.baseURL, url.PathEscape(trimmedRepository), folder)
	response, requestError := client.do(executionContext, http.MethodDelete, folderURL, deleteFolderOperationConstant)
	if requestError != nil {
		return requestError
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode != http.StatusNoContent {
		return newUnexpectedStatusError(deleteFolderOperationConstant, response)
	}

	client.logger.Debug(
		deletedFolderMessageConstant,
		zap.String(logFieldRepositoryConstant, trimmedRepository),
		zap.String(logFieldFolderConstant, folder),
	)
	return nil
}

func (client *Client) do(executionContext context.Context, method string, requestURL string, operation string) (*http.Response, error) {
	request, requestError := http.NewRequestWithContext(executionContext, method, requestURL, nil)
	if requestError != nil {
		return nil, fmt.Errorf(requestCreationErrorTemplateConstant, operation, requestError)
	}
	request.Header.Set(apiKeyHeaderNameConstant, client.apiKey)

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return nil, fmt.Errorf(requestExecutionErrorTemplateConstant, operation, responseError)
	}
	return response, nil
}

func newUnexpectedStatusError(operation string, response *http.Response) UnexpectedStatusError {
	return UnexpectedStatusError{
		Operation:  operation,
		StatusCode: response.StatusCode,
		Status:     http.StatusText(response.StatusCode),
	}
}
