package schedule

import (
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Start registers the periodic sweeps and starts the cron scheduler. The
// returned cron can be stopped on shutdown.
func Start(sweeper *Sweeper, publisher Publisher) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc("@every 30s", sweeper.SweepRounds); err != nil {
		return nil, err
	}
	if publisher != nil {
		if _, err := c.AddFunc("@every 1m", func() { sweeper.SweepFills(publisher) }); err != nil {
			return nil, err
		}
	}

	c.Start()
	log.Info("Schedule started: round sweep every 30s, fill sweep every 1m")
	return c, nil
}
