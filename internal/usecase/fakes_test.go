package usecase

import (
	"context"
	"sort"

	"kayako-stat-service/internal/domain/entity"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

// memoryTicketRepo keeps records by ticket id
type memoryTicketRepo struct {
	records  map[int64]entity.TicketRecord
	inserts  int
	replaces int
	filters  []bson.M
	distinct map[string][]string
}

func newMemoryTicketRepo() *memoryTicketRepo {
	return &memoryTicketRepo{records: make(map[int64]entity.TicketRecord)}
}

func (m *memoryTicketRepo) FindByTicketID(ctx context.Context, id int64) (*entity.TicketRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memoryTicketRepo) Insert(ctx context.Context, record *entity.TicketRecord) error {
	m.inserts++
	m.records[record.ID] = *record
	return nil
}

func (m *memoryTicketRepo) Replace(ctx context.Context, record *entity.TicketRecord) error {
	m.replaces++
	if _, ok := m.records[record.ID]; ok {
		m.records[record.ID] = *record
	}
	return nil
}

// Find ignores the filter and returns everything in id order
func (m *memoryTicketRepo) Find(ctx context.Context, filter bson.M) ([]*entity.TicketRecord, error) {
	m.filters = append(m.filters, filter)
	ids := make([]int64, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*entity.TicketRecord, 0, len(ids))
	for _, id := range ids {
		r := m.records[id]
		out = append(out, &r)
	}
	return out, nil
}

func (m *memoryTicketRepo) Distinct(ctx context.Context, field string) ([]string, error) {
	return m.distinct[field], nil
}

type ticketRepoMock struct {
	mock.Mock
}

func (m *ticketRepoMock) FindByTicketID(ctx context.Context, id int64) (*entity.TicketRecord, error) {
	args := m.Called(ctx, id)
	rec := args.Get(0)
	if rec == nil {
		return nil, args.Error(1)
	}
	return rec.(*entity.TicketRecord), args.Error(1)
}

func (m *ticketRepoMock) Insert(ctx context.Context, record *entity.TicketRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *ticketRepoMock) Replace(ctx context.Context, record *entity.TicketRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *ticketRepoMock) Find(ctx context.Context, filter bson.M) ([]*entity.TicketRecord, error) {
	args := m.Called(ctx, filter)
	recs := args.Get(0)
	if recs == nil {
		return nil, args.Error(1)
	}
	return recs.([]*entity.TicketRecord), args.Error(1)
}

func (m *ticketRepoMock) Distinct(ctx context.Context, field string) ([]string, error) {
	args := m.Called(ctx, field)
	vals := args.Get(0)
	if vals == nil {
		return nil, args.Error(1)
	}
	return vals.([]string), args.Error(1)
}

type memoryHistoryRepo struct {
	runs []*entity.ImportRun
}

func (h *memoryHistoryRepo) Create(ctx context.Context, run *entity.ImportRun) error {
	run.ID = uint(len(h.runs) + 1)
	h.runs = append(h.runs, run)
	return nil
}

func (h *memoryHistoryRepo) ListRecent(ctx context.Context, limit int) ([]*entity.ImportRun, error) {
	out := make([]*entity.ImportRun, 0, limit)
	for i := len(h.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.runs[i])
	}
	return out, nil
}
