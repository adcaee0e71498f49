package cron

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/washpoint/carwash-app/schedule"
)

// StartProvisioningSweep runs the auto-provisioner for every ruled station
// just after midnight, so today's schedules exist before the first customer
// asks for them. Requests still provision lazily; the sweep only warms the
// common case.
func StartProvisioningSweep(prov *schedule.AutoProvisioner) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc("5 0 * * *", func() {
		n := prov.SweepToday()
		log.Info().Int("provisioned", n).Msg("daily availability sweep finished")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Msg("availability provisioning sweep scheduled")
	return c, nil
}
