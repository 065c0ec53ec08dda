package entity

import (
	"time"
)

// ReportQuery selects records for the dashboard. Each string filter holds
// either a concrete value or its "all" sentinel.
type ReportQuery struct {
	Start    time.Time
	End      time.Time
	Region   string
	SystemID string
	Type     string
	Status   string
}

// ValueCount is a single bar of a value-count histogram
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Report holds the aggregates rendered by the dashboard charts
type Report struct {
	Total                int          `json:"total"`
	MeanResolutionDays   *float64     `json:"mean_resolution_days,omitempty"`
	MedianResolutionDays *float64     `json:"median_resolution_days,omitempty"`
	BySystem             []ValueCount `json:"by_system"`
	ByType               []ValueCount `json:"by_type"`
	ByStatus             []ValueCount `json:"by_status"`
	ByResolutionDays     []ValueCount `json:"by_resolution_days"`
}

// FilterOptions lists sidebar choices, each headed by its "all" sentinel
type FilterOptions struct {
	Regions  []string `json:"regions"`
	Systems  []string `json:"systems"`
	Types    []string `json:"types"`
	Statuses []string `json:"statuses"`
}
