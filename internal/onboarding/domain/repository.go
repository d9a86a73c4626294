package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, run *OnboardingRun) error
	UpdateProgress(ctx context.Context, db *gorm.DB, runID string, progress Progress, now time.Time) error
	Finish(ctx context.Context, db *gorm.DB, runID string, status RunStatus, failedStep int, errText *string, compensations []CompensationRecord, now time.Time) error
	FindByRunID(ctx context.Context, db *gorm.DB, runID string) (*OnboardingRun, error)
	// ListPendingCleanup returns runs whose compensation failed and runs
	// still marked running that have not moved since staleBefore.
	ListPendingCleanup(ctx context.Context, db *gorm.DB, staleBefore time.Time, limit int) ([]OnboardingRun, error)
}
