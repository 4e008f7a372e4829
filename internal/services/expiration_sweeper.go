package services

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ruralpay/cardtransfer/internal/audit"
	"github.com/ruralpay/cardtransfer/internal/models"
	"github.com/ruralpay/cardtransfer/internal/store"
	"github.com/sirupsen/logrus"
)

// ExpirationSweeper moves cards past their expiration timestamp into the expired status.
// It never takes the transfer row locks and never touches balances.
type ExpirationSweeper struct {
	uow   store.UnitOfWork
	clock Clock
	lock  SweepLock
	audit *audit.AuditLogger
	log   *logrus.Logger
	cron  *cron.Cron
}

// NewExpirationSweeper builds a sweeper scheduled in the clock's location. lock may be nil.
func NewExpirationSweeper(uow store.UnitOfWork, clock Clock, lock SweepLock, log *logrus.Logger) *ExpirationSweeper {
	cronLog := cron.PrintfLogger(log)
	return &ExpirationSweeper{
		uow:   uow,
		clock: clock,
		lock:  lock,
		audit: audit.NewAuditLogger(log),
		log:   log,
		cron: cron.New(
			cron.WithLocation(clock.Now().Location()),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
	}
}

// RunOnce expires every card whose expiration timestamp is before now and returns how many
// cards changed. Running it again without a clock change expires nothing.
func (s *ExpirationSweeper) RunOnce(ctx context.Context) (int, error) {
	now := s.clock.Now()
	s.log.WithField("as_of", now).Info("[SWEEPER] running expired cards check")

	var expired []*models.Card
	previous := make(map[*models.Card]models.CardStatus)
	err := s.uow.Do(ctx, func(stores store.Stores) error {
		cards, err := stores.Cards().FindExpired(ctx, now, models.CardStatusExpired)
		if err != nil {
			return err
		}

		for _, card := range cards {
			previous[card] = card.Status
			card.Status = models.CardStatusExpired
		}
		if err := stores.Cards().SaveStatuses(ctx, cards); err != nil {
			return err
		}

		expired = cards
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("expire cards: %w", err)
	}

	for _, card := range expired {
		s.audit.LogExpired(card, previous[card])
	}
	s.log.WithField("expired", len(expired)).Info("[SWEEPER] expired cards check is finished")
	return len(expired), nil
}

// Start runs one sweep immediately, covering runs missed while the process was down, then
// schedules a sweep on every tick of schedule (five-field cron syntax).
func (s *ExpirationSweeper) Start(ctx context.Context, schedule string) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("schedule sweeper %q: %w", schedule, err)
	}

	s.run(ctx)
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to return.
func (s *ExpirationSweeper) Stop() {
	<-s.cron.Stop().Done()
}

// run is one scheduled sweep. Failures are logged and left for the next tick.
func (s *ExpirationSweeper) run(ctx context.Context) {
	held := false
	if s.lock != nil {
		acquired, err := s.lock.TryAcquire(ctx)
		switch {
		case err != nil:
			s.log.WithError(err).Warn("[SWEEPER] sweep lock unavailable, sweeping anyway")
		case !acquired:
			s.log.Info("[SWEEPER] another instance swept recently, skipping")
			return
		default:
			held = true
		}
	}

	if _, err := s.RunOnce(ctx); err != nil {
		s.log.WithError(err).Error("[SWEEPER] expired cards check failed, retrying on next schedule")
		if held {
			if err := s.lock.Release(ctx); err != nil {
				s.log.WithError(err).Warn("[SWEEPER] failed to release sweep lock")
			}
		}
	}
}
