package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kayako-stat-service/internal/domain/entity"
	"kayako-stat-service/pkg/logger"
	"kayako-stat-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const exportCSV = "id,creation_date,system_id,type,status,first_answer_date,last_answer_date,region\n" +
	"1,2024-01-01,CRM,Incident,Closed,00:00:00,2024-01-03,\n" +
	"2,2024-01-01,CRM,Incident,Closed,09:15:30,,RU\n" +
	"3,2024-01-01,CRM,Incident,Closed,09:15:30,2024-01-02,\n"

func setupImportService(t *testing.T, policy ErrorPolicy) (*ImportService, *memoryTicketRepo, *memoryHistoryRepo, *metrics.Metrics) {
	t.Helper()
	log := logger.NewNopLogger()
	repo := newMemoryTicketRepo()
	history := &memoryHistoryRepo{}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())

	svc := NewImportService(NewTicketImporter(policy, log), NewTicketSync(repo, log), history, m, log)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, repo, history, m
}

func TestImportService_ImportFile(t *testing.T) {
	svc, repo, history, m := setupImportService(t, PolicyAbort)

	run, err := svc.ImportFile(context.Background(), "export.csv", strings.NewReader(exportCSV))
	require.NoError(t, err)

	assert.Equal(t, entity.ImportCompleted, run.Status)
	assert.Equal(t, 3, run.RowsRead)
	assert.Equal(t, 1, run.DroppedUnanswered)
	assert.Equal(t, 1, run.DroppedUnresolved)
	assert.Equal(t, 1, run.RecordsSynced)
	assert.Equal(t, uint(1), run.ID)
	assert.True(t, run.FinishedAt.After(run.StartedAt))

	require.Len(t, repo.records, 1)
	stored := repo.records[3]
	assert.Equal(t, 33330, stored.FirstAnswerSeconds)
	assert.Equal(t, entity.RegionUnspecified, stored.Region)

	require.Len(t, history.runs, 1)
	assert.InDelta(t, 3, testutil.ToFloat64(m.RowsRead), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RecordsSynced), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RowsDropped.WithLabelValues("unanswered")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ImportsTotal.WithLabelValues(entity.ImportCompleted)), 0)
}

func TestImportService_ParseErrorWritesNothing(t *testing.T) {
	svc, repo, history, m := setupImportService(t, PolicyAbort)
	data := exportCSV + "oops,2024-01-01,CRM,Incident,Closed,09:15:30,2024-01-02,RU\n"

	run, err := svc.ImportFile(context.Background(), "export.csv", strings.NewReader(data))

	var perr *entity.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 5, perr.Row)
	assert.Equal(t, entity.ImportFailed, run.Status)
	assert.NotEmpty(t, run.ErrorDetail)
	assert.Empty(t, repo.records)
	require.Len(t, history.runs, 1)
	assert.Equal(t, entity.ImportFailed, history.runs[0].Status)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ErrorsCount.WithLabelValues("parse")), 0)
}

func TestImportService_StorageError(t *testing.T) {
	log := logger.NewNopLogger()
	repo := new(ticketRepoMock)
	repo.On("FindByTicketID", mock.Anything, int64(3)).Return(nil, errors.New("no reachable servers"))
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	history := &memoryHistoryRepo{}
	svc := NewImportService(NewTicketImporter(PolicyAbort, log), NewTicketSync(repo, log), history, m, log)

	run, err := svc.ImportFile(context.Background(), "export.csv", strings.NewReader(exportCSV))

	var serr *entity.StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, entity.ImportFailed, run.Status)
	assert.Equal(t, 0, run.RecordsSynced)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ErrorsCount.WithLabelValues("sync")), 0)
}

func TestImportService_UnsupportedFormat(t *testing.T) {
	svc, _, history, _ := setupImportService(t, PolicyAbort)

	run, err := svc.ImportFile(context.Background(), "export.xls", strings.NewReader("binary"))

	assert.True(t, errors.Is(err, entity.ErrUnsupportedFormat))
	assert.Equal(t, entity.ImportFailed, run.Status)
	assert.Len(t, history.runs, 1)
}

func TestImportService_RecentRuns(t *testing.T) {
	svc, _, _, _ := setupImportService(t, PolicySkip)
	ctx := context.Background()

	_, err := svc.ImportFile(ctx, "first.csv", strings.NewReader(exportCSV))
	require.NoError(t, err)
	_, err = svc.ImportFile(ctx, "second.csv", strings.NewReader(exportCSV))
	require.NoError(t, err)

	runs, err := svc.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "second.csv", runs[0].FileName)
}
