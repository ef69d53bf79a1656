package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relkit/internal/ui"
)

func TestDeletionReporterWritesOperatorLines(testInstance *testing.T) {
	testCases := []struct {
		name               string
		target             ui.DeletionTarget
		items              []string
		dryRun             bool
		expectedTranscript string
	}{
		{
			name:               "bintray_deletions",
			target:             ui.BintrayDeletionTarget,
			items:              []string{"1.0.0-1-gabc_feature", "0.9.0-3-gdef_feature"},
			expectedTranscript: "Deleting from Bintray: 1.0.0-1-gabc_feature\nDeleting from Bintray: 0.9.0-3-gdef_feature\n",
		},
		{
			name:               "bintray_nothing",
			target:             ui.BintrayDeletionTarget,
			expectedTranscript: "No Bintray versions will be deleted\n",
		},
		{
			name:               "artifactory_dry_run",
			target:             ui.ArtifactoryDeletionTarget,
			items:              []string{"feature%2Flogin"},
			dryRun:             true,
			expectedTranscript: "Deleting from Artifactory: feature%2Flogin\nDry run: nothing was deleted\n",
		},
		{
			name:               "artifactory_nothing",
			target:             ui.ArtifactoryDeletionTarget,
			expectedTranscript: "No artifact branches will be deleted\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			reporter := ui.NewDeletionReporter(outputBuffer, testCase.target, ui.WithColorDisabled())

			if len(testCase.items) == 0 {
				reporter.ReportNothingToDelete()
			}
			for _, item := range testCase.items {
				reporter.ReportDeletion(item)
			}
			if testCase.dryRun {
				reporter.ReportDryRun()
			}

			require.Equal(testInstance, testCase.expectedTranscript, outputBuffer.String())
		})
	}
}
