package usecase

import (
	"context"

	"kayako-stat-service/internal/domain/entity"
	"kayako-stat-service/internal/domain/repository"
	"kayako-stat-service/pkg/logger"
)

// TicketSync upserts normalized records into the record store
type TicketSync struct {
	ticketRepo repository.TicketRepository
	logger     logger.Logger
}

// NewTicketSync creates a new repository sync
func NewTicketSync(ticketRepo repository.TicketRepository, logger logger.Logger) *TicketSync {
	return &TicketSync{
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

// Sync stores every record under its ticket id, last write wins. The first
// storage fault stops the batch and is returned as a *entity.StorageError
// together with the number of records now in the store from this batch. A
// record whose insert succeeded counts even when the replace after it fails.
func (s *TicketSync) Sync(ctx context.Context, records []*entity.TicketRecord) (int, error) {
	for i, record := range records {
		existing, err := s.ticketRepo.FindByTicketID(ctx, record.ID)
		if err != nil {
			return i, s.fail("find", record.ID, err)
		}

		if existing == nil {
			if err := s.ticketRepo.Insert(ctx, record); err != nil {
				return i, s.fail("insert", record.ID, err)
			}
		}

		// Replace even after an insert so the stored field set always matches this import
		if err := s.ticketRepo.Replace(ctx, record); err != nil {
			if existing == nil {
				return i + 1, s.fail("replace", record.ID, err)
			}
			return i, s.fail("replace", record.ID, err)
		}
	}

	s.logger.Info("Records synced", "count", len(records))
	return len(records), nil
}

func (s *TicketSync) fail(op string, id int64, err error) error {
	s.logger.Error("Record sync aborted", "operation", op, "ticketID", id, "error", err)
	return &entity.StorageError{Op: op, TicketID: id, Err: err}
}
