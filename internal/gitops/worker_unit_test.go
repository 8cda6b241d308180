package gitops

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/orchestrator-core/controlplane/internal/models"
)

func TestAssignmentPathLayout(t *testing.T) {
	got := assignmentPath("h1", "team", "w1", "d1")
	assert.Equal(t, filepath.Join("h1", "team", "w1", "d1"), got)
}

func TestCommitMessageTruncatesOperationID(t *testing.T) {
	events := []models.Event{{OperationID: "0123456789abcdef"}}
	assert.Equal(t, "reconcile: 0123456789ab", commitMessage(events))
}

func TestCommitMessageKeepsShortOperationID(t *testing.T) {
	events := []models.Event{{OperationID: "abc"}}
	assert.Equal(t, "reconcile: abc", commitMessage(events))
}

func TestLatestTimestampPicksMax(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []models.Event{
		{Timestamp: base},
		{Timestamp: base.Add(time.Hour)},
		{Timestamp: base.Add(time.Minute)},
	}
	assert.Equal(t, base.Add(time.Hour), latestTimestamp(events))
}
