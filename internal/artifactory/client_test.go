package artifactory_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/relkit/internal/artifactory"
)

const (
	testAPIKeyConstant     = "art-key"
	testRepositoryConstant = "builds-local"
)

func newTestClient(testInstance *testing.T, serverURL string) *artifactory.Client {
	testInstance.Helper()
	client, clientError := artifactory.NewClient(zap.NewNop(), nil, artifactory.ClientConfiguration{
		BaseURL: serverURL,
		APIKey:  testAPIKeyConstant,
	})
	require.NoError(testInstance, clientError)
	return client
}

func TestNewClientValidatesConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		configuration artifactory.ClientConfiguration
		expectedError error
	}{
		{
			name:          "missing_logger",
			configuration: artifactory.ClientConfiguration{Host: "repo.example.com", APIKey: "k"},
			expectedError: artifactory.ErrLoggerNotConfigured,
		},
		{
			name:          "missing_api_key",
			logger:        zap.NewNop(),
			configuration: artifactory.ClientConfiguration{Host: "repo.example.com"},
			expectedError: artifactory.ErrAPIKeyRequired,
		},
		{
			name:          "missing_host",
			logger:        zap.NewNop(),
			configuration: artifactory.ClientConfiguration{APIKey: "k"},
			expectedError: artifactory.ErrHostRequired,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, clientError := artifactory.NewClient(testCase.logger, nil, testCase.configuration)
			require.ErrorIs(testInstance, clientError, testCase.expectedError)
		})
	}
}

type recordingHTTPClient struct {
	requests []*http.Request
}

func (client *recordingHTTPClient) Do(request *http.Request) (*http.Response, error) {
	client.requests = append(client.requests, request)
	return nil, context.Canceled
}

func TestClientBuildsURLFromHost(testInstance *testing.T) {
	httpClient := &recordingHTTPClient{}
	client, clientError := artifactory.NewClient(zap.NewNop(), httpClient, artifactory.ClientConfiguration{
		Host:   "repo.example.com",
		APIKey: testAPIKeyConstant,
	})
	require.NoError(testInstance, clientError)

	_, listError := client.ListBranchFolders(context.Background(), testRepositoryConstant)
	require.ErrorIs(testInstance, listError, context.Canceled)
	require.Len(testInstance, httpClient.requests, 1)
	require.Equal(testInstance, "https://repo.example.com/artifactory/api/storage/builds-local/", httpClient.requests[0].URL.String())
	require.Equal(testInstance, testAPIKeyConstant, httpClient.requests[0].Header.Get("X-JFrog-Art-Api"))
}

func TestListBranchFoldersKeepsOnlyFolders(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, http.MethodGet, request.Method)
		require.Equal(testInstance, "/api/storage/builds-local/", request.URL.Path)
		require.Equal(testInstance, testAPIKeyConstant, request.Header.Get("X-JFrog-Art-Api"))
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = responseWriter.Write([]byte(`{"repo":"builds-local","path":"/","children":[{"uri":"/abc","folder":true},{"uri":"/index.html","folder":false},{"uri":"/feature%2Flogin","folder":true}]}`))
	}))
	defer server.Close()

	folders, listError := newTestClient(testInstance, server.URL).ListBranchFolders(context.Background(), testRepositoryConstant)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"abc", "feature%2Flogin"}, folders)
}

func TestListBranchFoldersRejectsUnexpectedStatus(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, listError := newTestClient(testInstance, server.URL).ListBranchFolders(context.Background(), testRepositoryConstant)
	var statusError artifactory.UnexpectedStatusError
	require.ErrorAs(testInstance, listError, &statusError)
	require.Equal(testInstance, http.StatusUnauthorized, statusError.StatusCode)
	require.EqualError(testInstance, listError, "Artifactory list folders failed. Status: 401, reason: Unauthorized")
}

func TestDeleteBranchFolderKeepsEncodedName(testInstance *testing.T) {
	var receivedPath string
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, http.MethodDelete, request.Method)
		require.Equal(testInstance, testAPIKeyConstant, request.Header.Get("X-JFrog-Art-Api"))
		receivedPath = request.URL.EscapedPath()
		responseWriter.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	deleteError := newTestClient(testInstance, server.URL).DeleteBranchFolder(context.Background(), testRepositoryConstant, "feature%2Flogin")
	require.NoError(testInstance, deleteError)
	require.Equal(testInstance, "/builds-local/feature%2Flogin", receivedPath)
}

func TestDeleteBranchFolderRequiresNoContent(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(testInstance, server.URL)
	deleteError := client.DeleteBranchFolder(context.Background(), testRepositoryConstant, "abc")
	var statusError artifactory.UnexpectedStatusError
	require.ErrorAs(testInstance, deleteError, &statusError)
	require.Equal(testInstance, "delete folder", statusError.Operation)

	require.ErrorIs(testInstance, client.DeleteBranchFolder(context.Background(), testRepositoryConstant, ""), artifactory.ErrFolderRequired)
	require.ErrorIs(testInstance, client.DeleteBranchFolder(context.Background(), " ", "abc"), artifactory.ErrRepositoryRequired)
}
