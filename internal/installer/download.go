package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"
)

const (
	downloadStatusErrorTemplateConstant    = "download of %s failed. Status: %d, reason: %s"
	downloadRequestErrorTemplateConstant   = "unable to build download request for %s: %w"
	downloadExecutionErrorTemplateConstant = "download of %s failed: %w"
	removeExistingErrorTemplateConstant    = "unable to remove existing file %s: %w"
	createFileErrorTemplateConstant        = "unable to create %s: %w"
	writeFileErrorTemplateConstant         = "unable to write %s: %w"
	downloadingMessageConstant             = "Downloading archive"
	downloadedMessageConstant              = "Downloaded archive"
	logFieldURLConstant                    = "url"
	logFieldDestinationConstant            = "destination"
	logFieldBytesConstant                  = "bytes"
)

// HTTPClient issues HTTP requests.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// DownloadStatusError reports a download answered with a non-200 status.
type DownloadStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

// Error describes the failed download.
func (statusError DownloadStatusError) Error() string {
	return fmt.Sprintf(downloadStatusErrorTemplateConstant, statusError.URL, statusError.StatusCode, statusError.Status)
}

// HTTPDownloader stores remote archives on disk.
type HTTPDownloader struct {
	logger     *zap.Logger
	httpClient HTTPClient
}

// NewHTTPDownloader constructs an HTTPDownloader. A nil httpClient uses http.DefaultClient.
func NewHTTPDownloader(logger *zap.Logger, httpClient HTTPClient) (*HTTPDownloader, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPDownloader{logger: logger, httpClient: httpClient}, nil
}

// Download replaces destinationPath with the body served at sourceURL.
// A partially written file is removed when the transfer fails.
func (downloader *HTTPDownloader) Download(executionContext context.Context, sourceURL string, destinationPath string) error {
	if removeError := os.Remove(destinationPath); removeError != nil && !errors.Is(removeError, os.ErrNotExist) {
		return fmt.Errorf(removeExistingErrorTemplateConstant, destinationPath, removeError)
	}

	downloader.logger.Info(
		downloadingMessageConstant,
		zap.String(logFieldURLConstant, sourceURL),
		zap.String(logFieldDestinationConstant, destinationPath),
	)

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, sourceURL, nil)
	if requestError != nil {
		return fmt.Errorf(downloadRequestErrorTemplateConstant, sourceURL, requestError)
	}
	response, responseError := downloader.httpClient.Do(request)
	if responseError != nil {
		return fmt.Errorf(downloadExecutionErrorTemplateConstant, sourceURL, responseError)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return DownloadStatusError{URL: sourceURL, StatusCode: response.StatusCode, Status: http.StatusText(response.StatusCode)}
	}

	destinationFile, createError := os.Create(destinationPath)
	if createError != nil {
		return fmt.Errorf(createFileErrorTemplateConstant, destinationPath, createError)
	}

	writtenBytes, copyError := io.Copy(destinationFile, response.Body)
	closeError := destinationFile.Close()
	if copyError == nil {
		copyError = closeError
	}
	if copyError != nil {
		_ = os.Remove(destinationPath)
		return fmt.Errorf(writeFileErrorTemplateConstant, destinationPath, copyError)
	}

	downloader.logger.Info(
		downloadedMessageConstant,
		zap.String(logFieldDestinationConstant, destinationPath),
		zap.Int64(logFieldBytesConstant, writtenBytes),
	)
	return nil
}
