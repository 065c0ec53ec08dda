package repository

import (
	"context"
	"time"

	"kayako-stat-service/internal/domain/entity"
	"kayako-stat-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormImportRunRepository implements the ImportRunRepository interface
type GormImportRunRepository struct {
	db *gorm.DB
}

// NewGormImportRunRepository creates a new GORM import history repository
func NewGormImportRunRepository(db *gorm.DB) repository.ImportRunRepository {
	return &GormImportRunRepository{
		db: db,
	}
}

// ImportRunModel GORM model for database mapping
type ImportRunModel struct {
	ID                uint      `gorm:"primaryKey"`
	FileName          string    `gorm:"column:file_name"`
	RowsRead          int       `gorm:"column:rows_read"`
	DroppedUnanswered int       `gorm:"column:dropped_unanswered"`
	DroppedUnresolved int       `gorm:"column:dropped_unresolved"`
	RowsSkipped       int       `gorm:"column:rows_skipped"`
	RecordsSynced     int       `gorm:"column:records_synced"`
	Status            string    `gorm:"column:status;index"`
	ErrorDetail       string    `gorm:"column:error_detail"`
	StartedAt         time.Time `gorm:"column:started_at;index"`
	FinishedAt        time.Time `gorm:"column:finished_at"`
}

// TableName overrides the default table name
func (ImportRunModel) TableName() string {
	return "import_runs"
}

// AutoMigrate creates or updates the import_runs table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&ImportRunModel{})
}

// Create stores a finished import run and sets its ID
func (r *GormImportRunRepository) Create(ctx context.Context, run *entity.ImportRun) error {
	model := ImportRunModel{
		FileName:          run.FileName,
		RowsRead:          run.RowsRead,
		DroppedUnanswered: run.DroppedUnanswered,
		DroppedUnresolved: run.DroppedUnresolved,
		RowsSkipped:       run.RowsSkipped,
		RecordsSynced:     run.RecordsSynced,
		Status:            run.Status,
		ErrorDetail:       run.ErrorDetail,
		StartedAt:         run.StartedAt,
		FinishedAt:        run.FinishedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	run.ID = model.ID
	return nil
}

// ListRecent returns the latest import runs, newest first
func (r *GormImportRunRepository) ListRecent(ctx context.Context, limit int) ([]*entity.ImportRun, error) {
	var models []ImportRunModel
	result := r.db.WithContext(ctx).Order("started_at desc").Order("id desc").Limit(limit).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM models to domain entities
	runs := make([]*entity.ImportRun, 0, len(models))
	for _, m := range models {
		runs = append(runs, &entity.ImportRun{
			ID:                m.ID,
			FileName:          m.FileName,
			RowsRead:          m.RowsRead,
			DroppedUnanswered: m.DroppedUnanswered,
			DroppedUnresolved: m.DroppedUnresolved,
			RowsSkipped:       m.RowsSkipped,
			RecordsSynced:     m.RecordsSynced,
			Status:            m.Status,
			ErrorDetail:       m.ErrorDetail,
			StartedAt:         m.StartedAt,
			FinishedAt:        m.FinishedAt,
		})
	}
	return runs, nil
}
