package persistence

import (
	"context"
	"testing"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAuditSink_AppendAndEntries(t *testing.T) {
	sink := NewGormAuditSink(newTestDB(t))
	ctx := context.Background()
	ref := report.AuditRef{Type: report.TypeStockAdjustment, ReportID: uuid.New()}

	entries, err := sink.Entries(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, sink.AppendLogLine(ctx, ref, "first", true))
	require.NoError(t, sink.AppendLogLine(ctx, ref, "second", false))
	require.NoError(t, sink.AppendLogLine(ctx, ref, "third", true))

	entries, err = sink.Entries(ctx, ref)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0].Message)
	assert.True(t, entries[0].Mismatch)
	assert.Equal(t, "second", entries[1].Message)
	assert.False(t, entries[1].Mismatch)
	assert.Equal(t, "third", entries[2].Message)
	assert.Equal(t, ref, entries[2].Ref)

	other := report.AuditRef{Type: report.TypeLiveInventory, ReportID: ref.ReportID}
	entries, err = sink.Entries(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, entries, "logs are keyed by type and report")
}

func TestGormAuditSink_DeleteAllIfEmpty(t *testing.T) {
	db := newTestDB(t)
	sink := NewGormAuditSink(db)
	ctx := context.Background()

	empty := report.AuditRef{Type: report.TypeLiveInventory, ReportID: uuid.New()}
	require.NoError(t, sink.DeleteAllIfEmpty(ctx, empty), "no job is fine")

	filled := report.AuditRef{Type: report.TypeLiveInventory, ReportID: uuid.New()}
	require.NoError(t, sink.AppendLogLine(ctx, filled, "kept", true))
	require.NoError(t, sink.DeleteAllIfEmpty(ctx, filled))

	entries, err := sink.Entries(ctx, filled)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "a log with lines survives")
}

func TestGormMessagePoster(t *testing.T) {
	poster := NewGormMessagePoster(newTestDB(t))
	ctx := context.Background()
	ref := report.AuditRef{Type: report.TypeStockAdjustment, ReportID: uuid.New()}

	require.NoError(t, poster.Post(ctx, ref, report.Message{
		Subject:        "Unprocessed lines",
		Body:           "see attachment",
		AttachmentKeys: []string{"reports/adj-000001/inv_unprocessed_lines.csv", "reports/adj-000001/other.csv"},
	}))
	require.NoError(t, poster.Post(ctx, ref, report.Message{Body: "Report downloaded"}))

	msgs, err := poster.Messages(ctx, ref)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Unprocessed lines", msgs[0].Subject)
	assert.Equal(t, []string{"reports/adj-000001/inv_unprocessed_lines.csv", "reports/adj-000001/other.csv"}, msgs[0].AttachmentKeys)
	assert.Empty(t, msgs[1].AttachmentKeys)
}
