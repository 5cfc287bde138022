package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"availcal/internal/calendar"
	"availcal/internal/config"
	"availcal/internal/ics"
	appLog "availcal/internal/log"
	"availcal/internal/schedule"
	"availcal/internal/session"
	"availcal/internal/web"
)

const version = "0.1.0"

func main() {
	// Load .env first; a missing file is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "availcal",
		Usage:   "Edit weekly availability with daily overrides and blackouts.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "/etc/availcal/config.yaml",
				Usage:   "Path to config file",
				EnvVars: []string{"AVAILCAL_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			presetsCommand(),
			weekCommand(),
			exportCommand(),
			validateCommand(),
		},
	}

	err := app.Run(os.Args)
	appLog.Sync()
	if err != nil {
		appLog.Error("availcal failed", err)
		os.Exit(1)
	}
}

// loadConfig reads the config and applies its log level.
func loadConfig(c *cli.Context) (*config.Config, *time.Location, error) {
	path := c.String("config")
	conf, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", path, err)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("invalid timezone, using UTC", err, "timezone", conf.Timezone)
	}
	return conf, loc, nil
}

// seedWeek returns the config seed, or the named preset when given.
func seedWeek(conf *config.Config, preset string) (schedule.WeekSchedule, error) {
	if preset == "" {
		return conf.SeedWeek()
	}
	p, err := schedule.PresetByName(preset)
	if err != nil {
		return schedule.NewWeekSchedule(), err
	}
	return schedule.ApplyPreset(p), nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the availability editing API.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "HTTP listen address (overrides config if set)"},
		},
		Action: func(c *cli.Context) error {
			appLog.Info("availcal starting", "version", version)

			conf, loc, err := loadConfig(c)
			if err != nil {
				return err
			}
			// CLI --listen overrides config file listen if provided.
			if l := c.String("listen"); l != "" {
				conf.Listen = l
			}

			appLog.Info("effective config",
				"listen", conf.Listen,
				"timezone", loc.String(),
				"week_start", conf.WeekStart,
				"sweep", conf.SweepCron,
				"session_idle", conf.SessionIdle().String(),
				"seed_preset", conf.Seed.Preset,
				"basic_auth", conf.BasicAuth != nil,
			)

			// Root context with cancellation on SIGINT/SIGTERM.
			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			go func() {
				select {
				case sig := <-sigCh:
					appLog.Info("signal received, shutting down", "signal", sig.String())
					cancel()
				case <-ctx.Done():
				}
			}()

			registry := session.NewRegistry(session.Options{
				Location:  loc,
				WeekStart: conf.WeekStartDay(),
				IdleTTL:   conf.SessionIdle(),
			})
			if err := registry.StartSweeper(conf.SweepCron); err != nil {
				return err
			}
			defer registry.StopSweeper()

			srv := web.NewServer(conf, loc, registry)
			if err := srv.Serve(ctx); err != nil {
				return fmt.Errorf("http server: %w", err)
			}

			appLog.Info("availcal exiting", "sessions", registry.Len())
			return nil
		},
	}
}

func presetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "presets",
		Usage: "List the built-in schedule presets.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print presets as JSON"},
		},
		Action: func(c *cli.Context) error {
			presets := schedule.Presets()
			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(presets)
			}
			for _, p := range presets {
				fmt.Printf("%-14s %s\n", p.Name, p.Description)
			}
			return nil
		},
	}
}

func weekCommand() *cli.Command {
	return &cli.Command{
		Name:  "week",
		Usage: "Print the effective schedule of one calendar week.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "preset", Usage: "Use this preset instead of the config seed"},
			&cli.StringFlag{Name: "date", Usage: "Any date in the week, YYYY-MM-DD (default today)"},
			&cli.IntFlag{Name: "offset", Usage: "Move this many weeks forward (negative for back)"},
		},
		Action: func(c *cli.Context) error {
			conf, loc, err := loadConfig(c)
			if err != nil {
				return err
			}
			week, err := seedWeek(conf, c.String("preset"))
			if err != nil {
				return err
			}

			nav := calendar.NewNavigation(time.Now().In(loc), conf.WeekStartDay())
			if d := c.String("date"); d != "" {
				date, err := schedule.ParseDateKey(d, loc)
				if err != nil {
					return err
				}
				nav.Current = date
			}
			for i := c.Int("offset"); i > 0; i-- {
				nav = nav.NextWeek()
			}
			for i := c.Int("offset"); i < 0; i++ {
				nav = nav.PreviousWeek()
			}

			for _, date := range nav.WeekDays() {
				ds := schedule.EffectiveDaySchedule(date, week, nil)
				fmt.Printf("%s %s  %s\n", schedule.DateKey(date), schedule.WeekdayOf(date), describeDay(ds))
			}
			return nil
		},
	}
}

func describeDay(ds schedule.DaySchedule) string {
	ranges := ds.ActiveRanges()
	if len(ranges) == 0 {
		return "unavailable"
	}
	out := ""
	for i, r := range ranges {
		if i > 0 {
			out += ", "
		}
		out += r.From + "-" + r.To
	}
	return out
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the seed schedule as an iCalendar feed.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "preset", Usage: "Use this preset instead of the config seed"},
			&cli.IntFlag{Name: "weeks", Value: 4, Usage: "Number of weeks from the current one"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (default stdout)"},
		},
		Action: func(c *cli.Context) error {
			conf, loc, err := loadConfig(c)
			if err != nil {
				return err
			}
			week, err := seedWeek(conf, c.String("preset"))
			if err != nil {
				return err
			}
			weeks := c.Int("weeks")
			if weeks < 1 {
				return errors.New("--weeks must be at least 1")
			}

			start := calendar.StartOfWeek(time.Now().In(loc), conf.WeekStartDay())
			res, err := ics.ExpandAvailability(week, nil, ics.ExpandConfig{
				DisplayLocation: loc,
				RangeStart:      start,
				RangeEnd:        start.AddDate(0, 0, 7*weeks),
			})
			if err != nil {
				return err
			}
			for _, s := range res.Skipped {
				appLog.Info("skipped invalid range", "range", s)
			}

			body := ics.Export(res.Windows, nil, ics.ExportOptions{CalendarName: "availcal"})
			out := c.String("out")
			if out == "" {
				_, err = fmt.Print(body)
				return err
			}
			if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			appLog.Info("calendar exported", "path", out, "windows", len(res.Windows), "truncated", res.Truncated)
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check the config seed schedule for malformed or overlapping ranges.",
		Action: func(c *cli.Context) error {
			conf, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			week, err := conf.SeedWeek()
			if err != nil {
				return err
			}
			if err := schedule.Validate(week); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return cli.Exit("seed schedule is invalid", 2)
			}
			fmt.Println("seed schedule is valid")
			return nil
		},
	}
}
