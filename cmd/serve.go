package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-reservations/floor"
	"github.com/yeremiapane/table-reservations/router"
	"github.com/yeremiapane/table-reservations/services"
	"github.com/yeremiapane/table-reservations/utils"
)

func newServeCmd() *cobra.Command {
	var noSweep bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.cfg.CheckServe(); err != nil {
				return err
			}

			gin.SetMode(a.cfg.GinMode)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			hub := floor.NewHub()
			sweeper := services.NewSweeper(a.store)
			sweeper.Interval = a.cfg.SweepInterval
			sweeper.OnSweep = func(res services.SweepResult) {
				hub.Broadcast(floor.EventSweepCompleted, res)
			}
			if !noSweep {
				sweeper.Start()
				defer sweeper.Stop()
			}

			engine := router.SetupRouter(router.Dependencies{
				Tables:            services.NewTableService(a.store),
				Reservations:      services.NewReservationService(a.store),
				Sweeper:           sweeper,
				Reports:           services.NewReportService(a.store),
				Plan:              a.plan,
				Clock:             a.clock,
				Hub:               hub,
				Timezone:          a.cfg.Timezone,
				ReportTitle:       a.cfg.ReportTitle,
				CORSOrigin:        a.cfg.CORSOrigin,
				AdminPasswordHash: a.cfg.AdminPasswordHash,
				HostPasswordHash:  a.cfg.HostPasswordHash,
				RateLimit:         a.cfg.RateLimit,
			})

			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           engine,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				utils.InfoLogger.Printf("Listening on port %s", a.cfg.Port)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			utils.InfoLogger.Info("Shutting down")
			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&noSweep, "no-sweep", false, "do not run the background sweeper")
	return cmd
}
