package installer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/installer"
)

func TestHTTPDownloaderReplacesExistingFile(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, "/release/1.70.0/source/boost_1_70_0.tar.bz2", request.URL.Path)
		_, _ = responseWriter.Write([]byte("archive-bytes"))
	}))
	defer server.Close()

	destinationPath := filepath.Join(testInstance.TempDir(), "boost_1_70_0.tar.bz2")
	require.NoError(testInstance, os.WriteFile(destinationPath, []byte("stale archive from an earlier run"), 0o600))

	downloader, downloaderError := installer.NewHTTPDownloader(zap.NewNop(), nil)
	require.NoError(testInstance, downloaderError)

	downloadError := downloader.Download(context.Background(), server.URL+"/release/1.70.0/source/boost_1_70_0.tar.bz2", destinationPath)
	require.NoError(testInstance, downloadError)

	contents, readError := os.ReadFile(destinationPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "archive-bytes", string(contents))
}

func TestHTTPDownloaderRejectsUnexpectedStatus(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	destinationPath := filepath.Join(testInstance.TempDir(), "missing.tar.gz")
	downloader, downloaderError := installer.NewHTTPDownloader(zap.NewNop(), server.Client())
	require.NoError(testInstance, downloaderError)

	downloadError := downloader.Download(context.Background(), server.URL+"/missing.tar.gz", destinationPath)
	var statusError installer.DownloadStatusError
	require.ErrorAs(testInstance, downloadError, &statusError)
	require.Equal(testInstance, http.StatusNotFound, statusError.StatusCode)
	require.NoFileExists(testInstance, destinationPath)
}

func TestNewHTTPDownloaderRequiresLogger(testInstance *testing.T) {
	_, downloaderError := installer.NewHTTPDownloader(nil, nil)
	require.ErrorIs(testInstance, downloaderError, installer.ErrLoggerNotConfigured)
}
