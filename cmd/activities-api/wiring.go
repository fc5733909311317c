// cmd/activities-api/wiring.go
package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"mergington-activities/internal/activity/events"
	"mergington-activities/internal/activity/notify"
	"mergington-activities/internal/activity/service"
	"mergington-activities/internal/activity/store"
	"mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/pkg/registry"
)

// loadStore seeds the registry from cfg.SeedFile, or the built-in
// activities when it is empty.
func loadStore(cfg config.RegistryConfig, log logger.Logger) (*store.Store, error) {
	if cfg.SeedFile == "" {
		s := store.NewDefault()
		log.Info("activity registry seeded from defaults", map[string]interface{}{
			"activities": len(s.Names()),
		})
		return s, nil
	}

	reg, err := registry.LoadRegistry(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	s, err := store.New(reg.ToStoreSeed())
	if err != nil {
		return nil, err
	}
	log.Info("activity registry seeded from file", map[string]interface{}{
		"seedFile":   cfg.SeedFile,
		"version":    reg.Version,
		"activities": len(s.Names()),
	})
	return s, nil
}

type sinkSet struct {
	Publisher events.Publisher
	Checks    map[string]service.ReadinessCheck
	closers   []func() error
}

func (s *sinkSet) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// buildSinks assembles the configured event publishers and email notifier.
func buildSinks(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, log logger.Logger) (*sinkSet, error) {
	set := &sinkSet{Checks: map[string]service.ReadinessCheck{}}
	var fanout events.Fanout

	if cfg.Events.Enabled {
		switch cfg.Events.Sink {
		case config.SinkRedis:
			var rc *database.RedisClient
			err := retryWithBackoff(func() error {
				var err error
				rc, err = database.NewRedis(cfg.Database.Redis)
				if err != nil {
					return err
				}
				pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := rc.Ping(pingCtx); err != nil {
					rc.Close()
					return err
				}
				return nil
			}, 5, time.Second, zapLog, "Redis connection")
			if err != nil {
				return nil, err
			}
			set.closers = append(set.closers, rc.Close)
			set.Checks["redis"] = rc.Ping
			fanout = append(fanout, events.Instrument(config.SinkRedis,
				events.NewRedisStreamPublisher(rc.GetClient(), cfg.Events.StreamPrefix, cfg.Events.MaxLen)))
			zapLog.Info("Redis stream sink enabled", zap.String("prefix", cfg.Events.StreamPrefix))

		case config.SinkSNS:
			snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
			if err != nil {
				return nil, err
			}
			fanout = append(fanout, events.Instrument(config.SinkSNS,
				events.NewSNSPublisher(snsClient, cfg.Events.SNS.TopicARN)))
			zapLog.Info("SNS topic sink enabled", zap.String("topicArn", cfg.Events.SNS.TopicARN))
		}
	}

	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			return nil, err
		}
		fanout = append(fanout, events.Instrument("ses",
			notify.NewEmailNotifier(sesClient, cfg.Notifications.Email.FromEmail, log)))
		zapLog.Info("Email notifications enabled", zap.String("from", cfg.Notifications.Email.FromEmail))
	}

	if len(fanout) == 0 {
		set.Publisher = events.NopPublisher{}
		return set, nil
	}
	set.Publisher = fanout
	return set, nil
}
