package scheduler

import (
	"context"
	"time"

	"github.com/devayla/base-counter/services/counter-service/internal/service"
)

type DailyMintResetJob struct {
	mints service.MintService
}

func NewDailyMintResetJob(mints service.MintService) *DailyMintResetJob {
	return &DailyMintResetJob{mints: mints}
}

func (j *DailyMintResetJob) Name() string {
	return "daily-mint-reset"
}

func (j *DailyMintResetJob) Run(ctx context.Context, _ time.Time) error {
	_, err := j.mints.ResetDailyStatus(ctx)
	return err
}

type AuthKeyCleanupJob struct {
	auth service.AuthService
}

func NewAuthKeyCleanupJob(auth service.AuthService) *AuthKeyCleanupJob {
	return &AuthKeyCleanupJob{auth: auth}
}

func (j *AuthKeyCleanupJob) Name() string {
	return "auth-key-cleanup"
}

func (j *AuthKeyCleanupJob) Run(ctx context.Context, _ time.Time) error {
	_, err := j.auth.CleanupExpired(ctx)
	return err
}
