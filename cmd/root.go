package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-reservations/config"
	"github.com/yeremiapane/table-reservations/database"
	"github.com/yeremiapane/table-reservations/layout"
	"github.com/yeremiapane/table-reservations/services"
	"github.com/yeremiapane/table-reservations/utils"
	"gorm.io/gorm"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reservas",
		Short:         "Restaurant table reservations: floor plan, bookings, sweeper and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newExportCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the wiring shared by every command that touches the database.
type app struct {
	cfg   *config.Config
	db    *gorm.DB
	clock *utils.RestaurantClock
	plan  *layout.Static
	store *services.Store
}

// bootstrap loads configuration, opens the database, migrates it and seeds
// any floor plan table that has no state row yet.
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	utils.InitLogger(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)

	clock, err := utils.NewRestaurantClock(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	plan, err := layout.Default()
	if err != nil {
		return nil, fmt.Errorf("cannot load floor plan: %w", err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}
	if _, err := database.SeedTables(db, plan); err != nil {
		closeDB(db)
		return nil, err
	}

	return &app{
		cfg:   cfg,
		db:    db,
		clock: clock,
		plan:  plan,
		store: services.NewStore(db, clock, plan),
	}, nil
}

func (a *app) Close() {
	closeDB(a.db)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
