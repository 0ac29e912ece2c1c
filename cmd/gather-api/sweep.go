package main

import (
	"github.com/dimitrije/gather-api/internal/scheduler"
	"github.com/dimitrije/gather-api/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep-status",
	Short: "Apply every due event status check once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		eventService := services.NewEventService(db, scheduler.NewStatusScheduler())
		sweeper := scheduler.NewSweeper(db, eventService, cfg.StatusSweepInterval)

		n, err := sweeper.SweepOnce(cmd.Context())
		if err != nil {
			return err
		}
		log.WithField("checks", n).Info("Status sweep finished")
		return nil
	},
}
