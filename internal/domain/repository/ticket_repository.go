package repository

import (
	"context"

	"kayako-stat-service/internal/domain/entity"

	"go.mongodb.org/mongo-driver/bson"
)

// TicketRepository defines the interface for ticket record storage operations
type TicketRepository interface {
	FindByTicketID(ctx context.Context, id int64) (*entity.TicketRecord, error)
	Insert(ctx context.Context, record *entity.TicketRecord) error
	Replace(ctx context.Context, record *entity.TicketRecord) error
	Find(ctx context.Context, filter bson.M) ([]*entity.TicketRecord, error)
	Distinct(ctx context.Context, field string) ([]string, error)
}
