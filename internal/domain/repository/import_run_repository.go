package repository

import (
	"context"

	"kayako-stat-service/internal/domain/entity"
)

// ImportRunRepository defines the interface for import history operations
type ImportRunRepository interface {
	Create(ctx context.Context, run *entity.ImportRun) error
	ListRecent(ctx context.Context, limit int) ([]*entity.ImportRun, error)
}
