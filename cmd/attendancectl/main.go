package main

import (
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/cli"
)

var CLI struct {
	Version kong.VersionFlag
	Debug   bool `help:"Enable debug logging."`

	Migrate cli.MigrateCmd `cmd:"" help:"Apply embedded database migrations."`
	Calc    cli.CalcCmd    `cmd:"" help:"Compute work, overtime and night minutes for a shift."`
	Token   cli.TokenCmd   `cmd:"" help:"Mint a development access token."`
}

func main() {
	// A missing .env is fine; flags and the environment still apply
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("attendancectl"),
		kong.Description("Operations tool for the attendance service"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": "v1.0.0",
			"today":   time.Now().Format("2006-01-02"),
		},
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "attendancectl",
	})
	if CLI.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	err := ctx.Run(&cli.Context{Log: logger, Out: os.Stdout})
	if err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}
