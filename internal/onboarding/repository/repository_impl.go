package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/smallbiznis/tenantflow/internal/onboarding/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, run *domain.OnboardingRun) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO onboarding_runs (id, run_id, owner_id, email, status, last_completed_step, failed_step, started_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.RunID,
		run.OwnerID,
		run.Email,
		run.Status,
		run.LastCompletedStep,
		run.FailedStep,
		run.StartedAt,
		run.UpdatedAt,
	).Error
}

func (r *repo) UpdateProgress(ctx context.Context, db *gorm.DB, runID string, progress domain.Progress, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE onboarding_runs
		 SET last_completed_step = ?, tenant_id = ?, lease_id = ?, connected_account_id = ?,
			billing_customer_id = ?, billing_subscription_id = ?, invitation_code = ?, updated_at = ?
		 WHERE run_id = ?`,
		progress.LastCompletedStep,
		progress.TenantID,
		progress.LeaseID,
		progress.ConnectedAccount,
		progress.CustomerID,
		progress.SubscriptionID,
		progress.InvitationCode,
		now,
		runID,
	).Error
}

func (r *repo) Finish(ctx context.Context, db *gorm.DB, runID string, status domain.RunStatus, failedStep int, errText *string, compensations []domain.CompensationRecord, now time.Time) error {
	var payload datatypes.JSON
	if len(compensations) > 0 {
		raw, err := json.Marshal(compensations)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(raw)
	}

	return db.WithContext(ctx).Exec(
		`UPDATE onboarding_runs
		 SET status = ?, failed_step = ?, error = ?, compensations = ?, updated_at = ?, finished_at = ?
		 WHERE run_id = ?`,
		status,
		failedStep,
		errText,
		payload,
		now,
		now,
		runID,
	).Error
}

func (r *repo) FindByRunID(ctx context.Context, db *gorm.DB, runID string) (*domain.OnboardingRun, error) {
	var run domain.OnboardingRun
	err := db.WithContext(ctx).
		Where("run_id = ?", runID).
		Limit(1).
		Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == 0 {
		return nil, nil
	}
	return &run, nil
}

func (r *repo) ListPendingCleanup(ctx context.Context, db *gorm.DB, staleBefore time.Time, limit int) ([]domain.OnboardingRun, error) {
	var runs []domain.OnboardingRun
	err := db.WithContext(ctx).
		Where("status = ? OR (status = ? AND updated_at < ?)",
			domain.RunStatusCompensationFailed,
			domain.RunStatusRunning,
			staleBefore,
		).
		Order("started_at ASC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
