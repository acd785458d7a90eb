package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inventrack/inventory-server-go/internal/repository"
)

// RetentionJob periodically purges access-code history whose expiry is
// older than the retention window, together with the grants obtained
// through it. Codes that expired more recently stay behind as history.
// Grants go first so a partial failure never leaves a grant pointing at
// a purged code.
type RetentionJob struct {
	codeRepo  repository.AccessCodeRepository
	grantRepo repository.AccessGrantRepository
	retention time.Duration
	interval  time.Duration
	done      chan struct{}
}

func NewRetentionJob(
	codeRepo repository.AccessCodeRepository,
	grantRepo repository.AccessGrantRepository,
	retention time.Duration,
	interval time.Duration,
) *RetentionJob {
	return &RetentionJob{
		codeRepo:  codeRepo,
		grantRepo: grantRepo,
		retention: retention,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

func (j *RetentionJob) Start() {
	go j.run()
	log.Info().
		Dur("interval", j.interval).
		Dur("retention", j.retention).
		Msg("retention job started")
}

func (j *RetentionJob) Stop() {
	close(j.done)
	log.Info().Msg("retention job stopped")
}

func (j *RetentionJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.purge()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.purge()
		}
	}
}

func (j *RetentionJob) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)

	j.runPurge(ctx, "stale access grants", func(ctx context.Context) (int64, error) {
		return j.grantRepo.DeleteForCodesExpiredBefore(ctx, cutoff)
	})
	j.runPurge(ctx, "expired access codes", func(ctx context.Context) (int64, error) {
		return j.codeRepo.DeleteExpiredBefore(ctx, cutoff)
	})
}

func (j *RetentionJob) runPurge(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to purge %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("purged %s", name)
	}
}
