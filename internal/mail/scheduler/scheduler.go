package scheduler

import (
	"context"
	"time"

	maildomain "github.com/mrxception/MailMind/internal/mail/domain"
	"github.com/mrxception/MailMind/internal/mail/repository"
	"github.com/mrxception/MailMind/internal/mail/usecase"

	"github.com/rs/zerolog"
)

// SyncScheduler periodically re-ingests the mailbox of every connected user
// so chat answers stay close to the live inbox even when nobody presses sync.
type SyncScheduler struct {
	sync        *usecase.SyncUsecase
	connections repository.ConnectionRepository
	interval    time.Duration
	maxMessages int
	log         zerolog.Logger
	stopChan    chan struct{}
}

func NewSyncScheduler(
	sync *usecase.SyncUsecase,
	connections repository.ConnectionRepository,
	interval time.Duration,
	maxMessages int,
	log zerolog.Logger,
) *SyncScheduler {
	return &SyncScheduler{
		sync:        sync,
		connections: connections,
		interval:    interval,
		maxMessages: maxMessages,
		log:         log.With().Str("component", "sync-scheduler").Logger(),
		stopChan:    make(chan struct{}),
	}
}

// Start begins the scheduler loop. An interval of zero disables it.
func (s *SyncScheduler) Start() {
	if s.interval <= 0 {
		s.log.Info().Msg("background sync disabled")
		return
	}

	s.log.Info().Dur("interval", s.interval).Msg("background sync started")

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.syncAll()
			case <-s.stopChan:
				s.log.Info().Msg("background sync stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *SyncScheduler) Stop() {
	close(s.stopChan)
}

func (s *SyncScheduler) syncAll() {
	userIDs, err := s.connections.ConnectedUserIDs()
	if err != nil {
		s.log.Error().Err(err).Msg("listing connected users failed")
		return
	}

	for _, userID := range userIDs {
		count, err := s.sync.SyncEmails(context.Background(), userID, s.maxMessages)
		if err != nil {
			if maildomain.NeedsReauth(err) {
				// Nothing the scheduler can do; the user is prompted on
				// their next interaction.
				s.log.Warn().Str("user_id", userID).Msg("sync skipped, reauthorization required")
			} else {
				s.log.Error().Err(err).Str("user_id", userID).Msg("background sync failed")
			}
			continue
		}
		s.log.Debug().Str("user_id", userID).Int("count", count).Msg("background sync done")
	}
}
