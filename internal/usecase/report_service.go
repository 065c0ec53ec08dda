package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"kayako-stat-service/internal/domain/entity"
	"kayako-stat-service/internal/domain/repository"
	"kayako-stat-service/pkg/logger"

	"github.com/montanaflynn/stats"
	"go.mongodb.org/mongo-driver/bson"
)

// ReportService answers dashboard queries against the record store
type ReportService struct {
	ticketRepo repository.TicketRepository
	logger     logger.Logger
}

// NewReportService creates a new report service
func NewReportService(ticketRepo repository.TicketRepository, logger logger.Logger) *ReportService {
	return &ReportService{
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

// BuildFilter translates a query into a Mongo filter. Creation dates match
// from midnight of Start up to and including midnight after End. Sentinel or
// empty filters only require the field to exist.
func BuildFilter(q entity.ReportQuery) bson.M {
	start := truncateDay(q.Start)
	end := truncateDay(q.End).AddDate(0, 0, 1)

	return bson.M{
		"creation_date": bson.M{"$gte": start, "$lte": end},
		"region":        fieldFilter(q.Region, entity.AllRegions),
		"system_id":     fieldFilter(q.SystemID, entity.AllSystems),
		"type":          fieldFilter(q.Type, entity.AllTypes),
		"status":        fieldFilter(q.Status, entity.AllStatuses),
	}
}

func fieldFilter(value, all string) bson.M {
	if value == "" || value == all {
		return bson.M{"$exists": true}
	}
	return bson.M{"$eq": value}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Report runs the query and aggregates the matching records
func (s *ReportService) Report(ctx context.Context, q entity.ReportQuery) (*entity.Report, error) {
	if truncateDay(q.End).Before(truncateDay(q.Start)) {
		return nil, entity.ErrInvalidRange
	}

	records, err := s.ticketRepo.Find(ctx, BuildFilter(q))
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	report := Summarize(records)
	s.logger.Debug("Report computed", "start", q.Start, "end", q.End, "total", report.Total)
	return report, nil
}

// Summarize computes counts, resolution statistics and histograms. An empty
// input yields a zero total with empty series and no statistics.
func Summarize(records []*entity.TicketRecord) *entity.Report {
	report := &entity.Report{
		Total:            len(records),
		BySystem:         []entity.ValueCount{},
		ByType:           []entity.ValueCount{},
		ByStatus:         []entity.ValueCount{},
		ByResolutionDays: []entity.ValueCount{},
	}
	if len(records) == 0 {
		return report
	}

	systems := make(map[string]int)
	types := make(map[string]int)
	statuses := make(map[string]int)
	resolution := make(map[string]int)
	days := make([]int, 0, len(records))

	for _, r := range records {
		systems[r.SystemID]++
		types[r.Type]++
		statuses[r.Status]++
		d := r.ResolutionDays()
		resolution[strconv.Itoa(d)]++
		days = append(days, d)
	}

	mean, median := meanAndMedian(days)
	report.MeanResolutionDays = &mean
	report.MedianResolutionDays = &median
	report.BySystem = valueCounts(systems)
	report.ByType = valueCounts(types)
	report.ByStatus = valueCounts(statuses)
	report.ByResolutionDays = valueCounts(resolution)
	return report
}

func meanAndMedian(values []int) (float64, float64) {
	data := stats.LoadRawData(values)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	return mean, median
}

// valueCounts orders by count descending, then by value
func valueCounts(counts map[string]int) []entity.ValueCount {
	result := make([]entity.ValueCount, 0, len(counts))
	for v, c := range counts {
		result = append(result, entity.ValueCount{Value: v, Count: c})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Value < result[j].Value
	})
	return result
}

// Filters returns the sidebar options, each list headed by its sentinel
func (s *ReportService) Filters(ctx context.Context) (*entity.FilterOptions, error) {
	opts := &entity.FilterOptions{}
	fields := []struct {
		name string
		all  string
		dst  *[]string
	}{
		{"region", entity.AllRegions, &opts.Regions},
		{"system_id", entity.AllSystems, &opts.Systems},
		{"type", entity.AllTypes, &opts.Types},
		{"status", entity.AllStatuses, &opts.Statuses},
	}

	for _, f := range fields {
		values, err := s.ticketRepo.Distinct(ctx, f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to list distinct %s: %w", f.name, err)
		}
		sort.Strings(values)
		*f.dst = append([]string{f.all}, values...)
	}
	return opts, nil
}
