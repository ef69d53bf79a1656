package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

const (
	deletionPrefixTemplateConstant = "Deleting from %s:"
	deletionLineTemplateConstant   = "%s %s\n"
	nothingToDeleteLineTemplate    = "%s\n"
	dryRunNoticeMessageConstant    = "Dry run: nothing was deleted"
	bintrayTargetLabelConstant     = "Bintray"
	bintrayNothingMessageConstant  = "No Bintray versions will be deleted"
	artifactoryTargetLabelConstant = "Artifactory"
	artifactoryNothingMessage      = "No artifact branches will be deleted"
)

// DeletionTarget names the remote store in operator output.
type DeletionTarget struct {
	Label          string
	NothingMessage string
}

// Deletion targets used by the prune commands.
var (
	BintrayDeletionTarget     = DeletionTarget{Label: bintrayTargetLabelConstant, NothingMessage: bintrayNothingMessageConstant}
	ArtifactoryDeletionTarget = DeletionTarget{Label: artifactoryTargetLabelConstant, NothingMessage: artifactoryNothingMessage}
)

// DeletionReporter writes one operator-facing line per deleted item.
type DeletionReporter struct {
	writer    io.Writer
	target    DeletionTarget
	highlight *color.Color
	muted     *color.Color
}

// DeletionReporterOption customizes a DeletionReporter.
type DeletionReporterOption func(*DeletionReporter)

// WithColorDisabled forces plain output regardless of the terminal.
func WithColorDisabled() DeletionReporterOption {
	return func(reporter *DeletionReporter) {
		reporter.highlight.DisableColor()
		reporter.muted.DisableColor()
	}
}

// NewDeletionReporter constructs a reporter writing to writer, or stdout when writer is nil.
func NewDeletionReporter(writer io.Writer, target DeletionTarget, options ...DeletionReporterOption) *DeletionReporter {
	if writer == nil {
		writer = os.Stdout
	}
	reporter := &DeletionReporter{
		writer:    writer,
		target:    target,
		highlight: color.New(color.FgRed, color.Bold),
		muted:     color.New(color.FgYellow),
	}
	for _, apply := range options {
		if apply != nil {
			apply(reporter)
		}
	}
	return reporter
}

// ReportDeletion announces that item is about to be deleted.
func (reporter *DeletionReporter) ReportDeletion(item string) {
	prefix := reporter.highlight.Sprintf(deletionPrefixTemplateConstant, reporter.target.Label)
	_, _ = fmt.Fprintf(reporter.writer, deletionLineTemplateConstant, prefix, item)
}

// ReportNothingToDelete announces an empty deletion plan.
func (reporter *DeletionReporter) ReportNothingToDelete() {
	_, _ = fmt.Fprintf(reporter.writer, nothingToDeleteLineTemplate, reporter.target.NothingMessage)
}

// ReportDryRun notes that the listed deletions were not performed.
func (reporter *DeletionReporter) ReportDryRun() {
	_, _ = reporter.muted.Fprintln(reporter.writer, dryRunNoticeMessageConstant)
}
