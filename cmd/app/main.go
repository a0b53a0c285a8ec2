package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/dagaz/internal"
	"github.com/starford/dagaz/internal/dayservice"
	"github.com/starford/dagaz/internal/editor"
	"github.com/starford/dagaz/internal/export"
	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/mcpserver"
	"github.com/starford/dagaz/internal/store"
	pkgconfig "github.com/starford/dagaz/pkg/config"
)

// loadConfig reads the config file named by --config. A missing file is
// not an error for a local CLI: defaults apply.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	if !pkgconfig.Exists(path) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// openService opens the database and wraps it in a day service. The
// caller must call the returned close func.
func openService(cfg *internal.Config) (*dayservice.Service, func(), error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return dayservice.New(db), func() { db.Close() }, nil
}

// targetDay resolves the --day offset against today (UTC).
func targetDay(cmd *cli.Command) time.Time {
	return journal.DateOf(time.Now()).AddDate(0, 0, int(cmd.Int("day")))
}

func showAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, closeDB, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	now := time.Now().UTC()
	date := targetDay(cmd)

	span := 0
	switch {
	case cmd.Bool("week"):
		span = 3
	case cmd.Bool("month"):
		span = 15
	}

	days, err := svc.Range(ctx, date.AddDate(0, 0, -span), date.AddDate(0, 0, span))
	if err != nil {
		return err
	}
	for _, d := range days {
		fmt.Print(d.Markdown(now, false))
		fmt.Println()
	}
	return nil
}

func editAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, closeDB, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	date := targetDay(cmd)
	return editDay(ctx, cfg, svc, date)
}

// editDay runs one editor round trip: render the day in editable form,
// open the editor, parse whatever came back, and reconcile every day
// block it contains.
func editDay(ctx context.Context, cfg *internal.Config, svc *dayservice.Service, date time.Time) error {
	now := time.Now().UTC()

	day, err := svc.Day(ctx, date)
	if err != nil {
		return err
	}

	editorCmd, err := editor.Resolve(cfg.Editor.Command)
	if err != nil {
		return err
	}
	edited, err := editor.Edit(editorCmd, day.Markdown(now, true))
	if err != nil {
		return err
	}

	docs, err := journal.ParseDocuments(edited, now)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		synced, err := svc.SyncDocument(ctx, doc)
		if err != nil {
			return err
		}
		fmt.Print(synced.Markdown(now, false))
		fmt.Println()
	}
	return nil
}

func newAction(ctx context.Context, cmd *cli.Command) error {
	body := cmd.Args().First()
	if body == "" {
		return fmt.Errorf("usage: dagaz new <body>")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, closeDB, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	note, err := svc.QuickAdd(ctx, body, cmd.Bool("done"))
	if err != nil {
		return err
	}
	fmt.Printf("added note %d\n", note.ID)
	return nil
}

// checkAction is the morning entry point: open today for editing when
// it is still empty, otherwise just show it.
func checkAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, closeDB, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	now := time.Now().UTC()
	today := journal.DateOf(now)

	day, err := svc.Day(ctx, today)
	if err != nil {
		return err
	}
	if day.NoteCount == 0 && day.DayText == "" {
		return editDay(ctx, cfg, svc, today)
	}
	fmt.Print(day.Markdown(now, false))
	return nil
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, closeDB, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	now := time.Now().UTC()
	end := journal.DateOf(now)
	start := end.AddDate(0, 0, -int(cmd.Int("days"))+1)
	if s := cmd.String("start"); s != "" {
		if start, err = time.ParseInLocation(journal.DateFormat, s, time.UTC); err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
	}
	if e := cmd.String("end"); e != "" {
		if end, err = time.ParseInLocation(journal.DateFormat, e, time.UTC); err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
	}

	days, err := svc.Range(ctx, start, end)
	if err != nil {
		return err
	}
	exp, err := export.New(cfg.Export.Dir)
	if err != nil {
		return err
	}
	if err := exp.WriteDays(days, now); err != nil {
		return err
	}
	fmt.Printf("exported %d days to %s\n", len(days), exp.Root())
	return nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, closeDB, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	return mcpserver.New(svc).ServeStdio()
}

func main() {
	dayFlag := &cli.IntFlag{
		Name:    "day",
		Aliases: []string{"d"},
		Usage:   "Day offset relative to today (-1 is yesterday, 1 is tomorrow)",
	}

	cmd := &cli.Command{
		Name:  "dagaz",
		Usage: "Personal daily notes: plain-text day documents reconciled into SQLite",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print one day, or a week/month window around it",
				Action: showAction,
				Flags: []cli.Flag{
					dayFlag,
					&cli.BoolFlag{Name: "week", Aliases: []string{"w"}, Usage: "Show a 7-day window around the day"},
					&cli.BoolFlag{Name: "month", Aliases: []string{"m"}, Usage: "Show a 31-day window around the day"},
				},
			},
			{
				Name:   "edit",
				Usage:  "Open a day document in your editor and reconcile the result",
				Action: editAction,
				Flags:  []cli.Flag{dayFlag},
			},
			{
				Name:   "new",
				Usage:  "Quick-add a note to today",
				Action: newAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "done", Usage: "Mark the note completed on creation"},
				},
			},
			{
				Name:   "check",
				Usage:  "Edit today if it is still empty, otherwise show it",
				Action: checkAction,
			},
			{
				Name:   "export",
				Usage:  "Write day documents as Markdown files",
				Action: exportAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Usage: "How many days back from today to export", Value: 7},
					&cli.StringFlag{Name: "start", Usage: "First day (YYYY-MM-DD), overrides --days"},
					&cli.StringFlag{Name: "end", Usage: "Last day (YYYY-MM-DD), defaults to today"},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with SSE events and the export watcher",
				Action: serveAction,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Action: mcpAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
