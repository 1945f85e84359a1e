package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/closingdesk/commission-backend/internal/commission"
	"github.com/closingdesk/commission-backend/pkg/config"
	"github.com/closingdesk/commission-backend/pkg/db"
	"github.com/closingdesk/commission-backend/pkg/logger"
	"github.com/closingdesk/commission-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

// goose commands that run against a live database without extra arguments.
var dbCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"redo":    true,
	"status":  true,
	"version": true,
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "commission-migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "command: up|down|redo|status|version|to|create|validate|check-plans")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for -cmd=create)")
	target := flag.String("target", "", "target version YYYYMMDDHHMMSS (for -cmd=to)")
	plans := flag.String("plans", "", "commission plans file (for -cmd=check-plans, defaults to COMMISSION_PLANS_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	exitOn(context.Background(), logg, "load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "commission-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	switch *cmd {
	case "create":
		if *name == "" {
			exitOn(ctx, logg, "create migration", fmt.Errorf("-name is required"))
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		exitOn(ctx, logg, "create migration", err)
		fmt.Println("created migration:", path)
		return

	case "validate":
		exitOn(ctx, logg, "validate migrations", migrate.ValidateDir(*dir))
		fmt.Println("migration validation passed")
		return

	case "check-plans":
		path := *plans
		if path == "" {
			path = cfg.Commission.PlansFile
		}
		if path == "" {
			exitOn(ctx, logg, "check plans", fmt.Errorf("no plans file given"))
		}
		registry, err := commission.LoadRegistryFile(path)
		exitOn(ctx, logg, "check plans", err)
		fmt.Printf("%s: %d agent plans valid\n", path, registry.Len())
		return
	}

	if *cmd != "to" && !dbCommands[*cmd] {
		exitOn(ctx, logg, "parse flags", fmt.Errorf("unknown -cmd value %q", *cmd))
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitOn(ctx, logg, "connect database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	exitOn(ctx, logg, "extract sql database", err)

	if *cmd == "to" {
		if *target == "" {
			exitOn(ctx, logg, "migrate to version", fmt.Errorf("-target is required"))
		}
		exitOn(ctx, logg, "migrate to version", migrate.MigrateToVersion(ctx, sqlDB, *dir, *target))
	} else {
		exitOn(ctx, logg, "goose "+*cmd, migrate.Run(ctx, sqlDB, *dir, *cmd, os.Stdout))
	}
	logg.Info(ctx, "migrate finished")
}

func exitOn(ctx context.Context, logg *logger.Logger, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "migrate: "+step+" failed", err)
	os.Exit(1)
}
