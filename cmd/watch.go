package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"motor_dashboard/internal/push"
	"motor_dashboard/internal/service"
	"motor_dashboard/internal/upstream"

	"github.com/spf13/cobra"
)

var (
	watchMotorID int
	watchCookie  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow one motor's live readings from the terminal",
	Long: `Load a motor's detail page state and log every live reading for it,
with the same filtering and health classification as the browser page.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVarP(&watchMotorID, "motor", "m", 0, "motor id to follow")
	watchCmd.Flags().StringVar(&watchCookie, "cookie", "", "session cookie forwarded to the API (e.g. session=...)")
	_ = watchCmd.MarkFlagRequired("motor")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	channels := push.NewFactory(cfg.Push, log)
	dev, err := service.NewDeviceDetail(watchMotorID, newAPIClient(cfg), channels, nil, log.Named("watch"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchCookie != "" {
		ctx = upstream.WithSession(ctx, http.Header{"Cookie": {watchCookie}})
	}

	view := dev.Load(ctx)
	if view.Spec != nil {
		log.Infow("motor", "name", view.Spec.Name, "type", view.Spec.Type,
			"rated_power_kw", view.Spec.RatedPower, "installed", view.Spec.InstallDate)
	}
	if view.DetailError != "" {
		log.Warnw("detail unavailable", "error", view.DetailError)
	}
	if view.Chart != nil {
		log.Infow("history loaded", "points", len(view.Chart.Values))
	}
	if view.Reading != nil {
		logReading(log.Infow, *view.Reading)
	}

	err = dev.Watch(ctx, func(v service.ReadingView) error {
		logReading(log.Infow, v)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func logReading(logf func(msg string, kv ...interface{}), v service.ReadingView) {
	logf("reading",
		"time", v.Timestamp,
		"status", v.Status,
		"temperature", v.Temperature,
		"vibration", v.Vibration,
		"sound", v.Sound,
	)
}
