package main

import (
	"fmt"
	"log"
	"os"
	"ticker/internal/app"
	"ticker/internal/config"
	_ "time/tzdata"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := rootApp().Run(os.Args); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func rootApp() *cli.App {
	return &cli.App{
		Name:  "ticker",
		Usage: "Scrolling news ticker for LED matrix panels",
		Description: `Fetches headlines from RSS and Atom feeds and rotates them on a
		pixel panel together with the time, the date, quotes and fun facts.

		Settings come from a JSON or TOML file. Environment variables prefixed
		with TICKER_ override the file and may be kept in a .env file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.json",
				Usage:   "Path to the JSON or TOML config file",
				EnvVars: []string{"TICKER_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env",
				Value: ".env",
				Usage: "Optional .env file with TICKER_* overrides",
			},
		},
		Commands: []*cli.Command{
			runCmd(),
			fetchCmd(),
			validateCmd(),
		},
		Action: func(ctx *cli.Context) error {
			return runTicker(ctx)
		},
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Run the ticker: render loop, feed worker and status API",
		Action: runTicker,
	}
}

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Run one ingestion cycle and print the headlines",
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			report := a.FetchOnce(ctx.Context)
			for _, h := range a.Headlines() {
				fmt.Println(h.String())
			}
			fmt.Printf("\n%d sources ok, %d empty, %d failed in %s\n",
				report.Succeeded, report.Empty, report.Failed, report.Duration)
			return nil
		},
	}
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check the configuration and exit",
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if err := cfg.ApplyDefaults(); err != nil {
				fmt.Println("warning:", err)
			}
			fmt.Printf("config OK: %d sources, %d content slots\n", len(cfg.Feeds.Sources), len(cfg.Display.Slots))
			return nil
		},
	}
}

func runTicker(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("could not init app: %w", err)
	}
	return a.Run()
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	if err := config.LoadDotEnv(ctx.String("env")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
