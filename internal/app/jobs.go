package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/despensa-app/despensa/internal/engine"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err := a.sched.AddFunc("@daily", func() {
		a.SchedExpiryDigestTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedExpiryDigestTask logs a daily summary of items expiring soon or
// already expired. Informational only; display state is always
// recomputed on read, never from this task.
func (a *Application) SchedExpiryDigestTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recs, err := a.service.ListAll(ctx)
	if err != nil {
		zap.L().Error("expiry digest: list failed", zap.Error(err))
		return
	}

	now := time.Now()
	expired, urgent := 0, 0
	for _, rec := range recs {
		item, err := engine.Evaluate(rec, now)
		if err != nil {
			zap.L().Error("expiry digest: record cannot be evaluated",
				zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		switch {
		case item.Urgency.Kind == engine.KindExpired:
			expired++
		case item.Urgency.Kind == engine.KindWarning:
			urgent++
			zap.L().Warn("item expiring soon",
				zap.String("id", rec.ID),
				zap.String("name", rec.Name),
				zap.Int("days_remaining", item.Days))
		}
	}

	zap.L().Info("expiry digest",
		zap.Int("records", len(recs)),
		zap.Int("expired", expired),
		zap.Int("expiring_soon", urgent))
}
