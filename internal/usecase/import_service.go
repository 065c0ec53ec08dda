package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"kayako-stat-service/internal/domain/entity"
	"kayako-stat-service/internal/domain/repository"
	"kayako-stat-service/internal/interface/spreadsheet"
	"kayako-stat-service/pkg/logger"
	"kayako-stat-service/pkg/metrics"
)

// ImportService runs an uploaded export through the importer and the sync
// and records the outcome in the import history
type ImportService struct {
	importer    *TicketImporter
	sync        *TicketSync
	historyRepo repository.ImportRunRepository
	metrics     *metrics.Metrics
	logger      logger.Logger
	now         func() time.Time
}

// NewImportService creates a new import service
func NewImportService(
	importer *TicketImporter,
	sync *TicketSync,
	historyRepo repository.ImportRunRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ImportService {
	return &ImportService{
		importer:    importer,
		sync:        sync,
		historyRepo: historyRepo,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// ImportFile imports one export. Parse failures abort before anything is
// written; storage failures abort the remaining sync. Either way the run is
// recorded as failed and the error is returned alongside it.
func (s *ImportService) ImportFile(ctx context.Context, name string, r io.Reader) (*entity.ImportRun, error) {
	log := s.logger.With("file", name)
	run := &entity.ImportRun{
		FileName:  name,
		StartedAt: s.now().UTC(),
	}
	log.Info("Starting import")

	err := s.run(ctx, run, r)

	run.FinishedAt = s.now().UTC()
	run.Status = entity.ImportCompleted
	if err != nil {
		run.Status = entity.ImportFailed
		run.ErrorDetail = err.Error()
		s.metrics.ErrorsCount.WithLabelValues(errorOperation(err)).Inc()
		log.Error("Import failed", "error", err)
	} else {
		log.Info("Import finished", "records", run.RecordsSynced)
	}
	s.metrics.ImportsTotal.WithLabelValues(run.Status).Inc()
	s.metrics.ImportDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	if s.historyRepo != nil {
		if herr := s.historyRepo.Create(ctx, run); herr != nil {
			s.metrics.ErrorsCount.WithLabelValues("history").Inc()
			log.Error("Failed to record import run", "error", herr)
		}
	}

	return run, err
}

func (s *ImportService) run(ctx context.Context, run *entity.ImportRun, r io.Reader) error {
	rows, err := spreadsheet.ReadRows(run.FileName, r)
	if err != nil {
		return err
	}

	result, err := s.importer.Import(rows)
	if err != nil {
		return err
	}
	run.RowsRead = result.RowsRead
	run.DroppedUnanswered = result.DroppedUnanswered
	run.DroppedUnresolved = result.DroppedUnresolved
	run.RowsSkipped = len(result.Skipped)

	s.metrics.RowsRead.Add(float64(result.RowsRead))
	s.metrics.RowsDropped.WithLabelValues("unanswered").Add(float64(result.DroppedUnanswered))
	s.metrics.RowsDropped.WithLabelValues("unresolved").Add(float64(result.DroppedUnresolved))
	s.metrics.RowsDropped.WithLabelValues("invalid").Add(float64(len(result.Skipped)))

	synced, err := s.sync.Sync(ctx, result.Records)
	run.RecordsSynced = synced
	s.metrics.RecordsSynced.Add(float64(synced))
	return err
}

// RecentRuns lists the latest import runs, newest first
func (s *ImportService) RecentRuns(ctx context.Context, limit int) ([]*entity.ImportRun, error) {
	if s.historyRepo == nil {
		return []*entity.ImportRun{}, nil
	}
	return s.historyRepo.ListRecent(ctx, limit)
}

func errorOperation(err error) string {
	var parseErr *entity.ParseError
	var storageErr *entity.StorageError
	switch {
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &storageErr):
		return "sync"
	default:
		return "read"
	}
}
