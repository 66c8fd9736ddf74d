package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian-front/internal/catalog"
	"github.com/meridian-erp/meridian-front/internal/erp"
)

// CatalogWarmupJob refreshes catalog cache keys off-peak. Upstream reads
// need a bearer token, so the worker signs in with its own service account.
type CatalogWarmupJob struct {
	Cache    *catalog.Cache
	Client   *erp.Client
	Username string
	Password string
	Logger   *slog.Logger
}

// Handle processes TaskCatalogWarmup tasks.
func (j *CatalogWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	var payload CatalogWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	if j.Username != "" {
		token, err := j.Client.Login(ctx, j.Username, j.Password)
		if err != nil {
			return err
		}
		ctx = erp.ContextWithToken(ctx, token.AccessToken)
	}

	keys := payload.Keys
	if len(keys) == 0 {
		keys = j.Cache.Keys()
	}

	var failed int
	for _, key := range keys {
		if err := j.Cache.Refresh(ctx, key); err != nil {
			failed++
			j.logger().Warn("warmup refresh failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	j.logger().Info("catalog warmup finished", slog.Int("keys", len(keys)), slog.Int("failed", failed))
	if failed == len(keys) && len(keys) > 0 {
		return errors.New("catalog warmup: all refreshes failed")
	}
	return nil
}

func (j *CatalogWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
