package session

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultSweepSchedule runs the inactivity purge every five minutes.
const DefaultSweepSchedule = "@every 5m"

// Sweeper destroys sessions that have been inactive for longer than ttl.
type Sweeper struct {
	purger Purger
	ttl    time.Duration
	now    func() time.Time
}

// NewSweeper creates a sweeper for the given store.
func NewSweeper(purger Purger, ttl time.Duration) *Sweeper {
	return &Sweeper{
		purger: purger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Run purges every session last saved more than ttl ago.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	return s.purger.Purge(ctx, s.now().Add(-s.ttl))
}

// Schedule registers the sweep on c using a cron spec such as "@every 5m".
func (s *Sweeper) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	if spec == "" {
		spec = DefaultSweepSchedule
	}
	return c.AddFunc(spec, func() {
		removed, err := s.Run(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("Failed to purge inactive sessions")
			return
		}
		if removed > 0 {
			log.Info().Int("sessions_removed", removed).Msg("Purged inactive sessions")
		}
	})
}
