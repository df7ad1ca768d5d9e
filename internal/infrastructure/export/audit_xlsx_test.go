package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteAuditLog(t *testing.T) {
	r := &report.Report{BaseEntity: shared.BaseEntity{ID: uuid.New()}, Type: report.TypeStockAdjustment, Name: "ADJ/000004"}
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	entries := []report.LogEntry{
		{ID: uuid.New(), Message: "Code Q configuration not found for processing", Mismatch: true, CreatedAt: at},
		{ID: uuid.New(), Message: "Counter Part Combination line", CreatedAt: at.Add(time.Minute)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAuditLog(&buf, r, entries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(AuditSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Report", "Time", "Mismatch", "Message"}, rows[0])
	assert.Equal(t, []string{"ADJ/000004", "2024-05-01 10:30:00", "TRUE", "Code Q configuration not found for processing"}, rows[1])
	assert.Equal(t, "FALSE", rows[2][2])
}

func TestWriteAuditLog_Empty(t *testing.T) {
	r := &report.Report{BaseEntity: shared.BaseEntity{ID: uuid.New()}, Type: report.TypeLiveInventory, Name: "LIVE/000001"}

	var buf bytes.Buffer
	require.NoError(t, WriteAuditLog(&buf, r, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(AuditSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "fba_live_inventory-"+r.ID.String()+"-log.xlsx", AuditFileName(r))
}
