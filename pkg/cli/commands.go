// Package cli is the gardenctl command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"garden/config"
	"garden/database"
	"garden/entities"
	"garden/logging"
	"garden/pkg/calendar"
	"garden/pkg/catalog/seed"
	"garden/pkg/export"
	"garden/pkg/occupancy"
	"garden/pkg/plot/repository"
	"garden/pkg/plot/repositoryImp"
	"garden/pkg/plot/service"
	"garden/pkg/plot/serviceImp"
)

// Env carries what every command shares. Open is replaced in tests.
type Env struct {
	EnvFile string
	Now     func() time.Time
	Open    func(cfg config.AppConfig) (service.PlotService, func(), error)
}

func New() *cobra.Command {
	env := &Env{Now: time.Now, Open: openService}
	return NewWithEnv(env)
}

func NewWithEnv(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gardenctl",
		Short:         "Plan and inspect the vegetable garden from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&env.EnvFile, "env", "", "dotenv file to load (default .env)")

	addCalendar(cmd, env)
	addField(cmd, env)
	addPlots(cmd, env)
	addExport(cmd, env)
	addSeed(cmd, env)
	return cmd
}

func (env *Env) config() (config.AppConfig, error) {
	if env.EnvFile != "" {
		return config.Load(env.EnvFile)
	}
	return config.Load()
}

func (env *Env) service() (config.AppConfig, service.PlotService, func(), error) {
	cfg, err := env.config()
	if err != nil {
		return cfg, nil, nil, err
	}
	svc, closeFn, err := env.Open(cfg)
	return cfg, svc, closeFn, err
}

// openService wires the configured store the same way the server does.
func openService(cfg config.AppConfig) (service.PlotService, func(), error) {
	l, err := logging.New("warn", false)
	if err != nil {
		return nil, nil, err
	}
	var db *gorm.DB
	if cfg.StoreBackend == config.BackendSQLite {
		if db, err = database.OpenSQLite(cfg.DBPath, l); err != nil {
			return nil, nil, err
		}
	}
	repo, err := repositoryImp.FromConfig(cfg, db)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if db != nil {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		_ = l.Sync()
	}
	field := occupancy.NewField(cfg.Areas, cfg.RowsPerArea)
	return serviceImp.NewPlotService(repo, field, l), closeFn, nil
}

func (env *Env) dateFlag(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return calendar.Today(env.Now(), loc), nil
	}
	return calendar.ParseDate(value)
}

func addCalendar(topLevel *cobra.Command, env *Env) {
	var (
		date   string
		month  bool
		locale string
	)
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print the week or month around a date",
		Example: `
gardenctl calendar
gardenctl calendar --month --date 2024-02-29
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.config()
			if err != nil {
				return err
			}
			if locale == "" {
				locale = cfg.Locale
			}
			d, err := env.dateFlag(date, cfg.Location())
			if err != nil {
				return err
			}
			cur := calendar.NewCursor(d, calendar.WithClock(env.Now), calendar.WithLocation(cfg.Location()))
			if month {
				cur.ToggleViewMode()
			}
			PrintCalendar(cmd.OutOrStdout(), cur.Title(locale), calendar.WeekdayNames(locale), calendar.Weeks(cur.Grid()))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "selected date, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&month, "month", false, "show the whole month")
	cmd.Flags().StringVar(&locale, "locale", "", "title and weekday language (default LOCALE)")
	topLevel.AddCommand(cmd)
}

func addField(topLevel *cobra.Command, env *Env) {
	var date, area string
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Show which rows are planted on a date",
		Example: `
gardenctl field
gardenctl field --date 2024-06-15 --area エリアA
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, closeFn, err := env.service()
			if err != nil {
				return err
			}
			defer closeFn()
			d, err := env.dateFlag(date, cfg.Location())
			if err != nil {
				return err
			}
			field := occupancy.NewField(cfg.Areas, cfg.RowsPerArea)
			if area != "" {
				if !field.HasArea(area) {
					return fmt.Errorf("unknown area %q (have %v)", area, cfg.Areas)
				}
				field.Areas = []string{area}
			}
			plots, err := svc.List(cmd.Context(), repository.ListOptions{Area: area})
			if err != nil {
				return err
			}
			iso := calendar.FormatDate(d)
			PrintField(cmd.OutOrStdout(), iso, occupancy.Layout(field, occupancy.Compute(entities.Views(plots), iso), ""))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date to classify, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&area, "area", "", "limit to one area")
	topLevel.AddCommand(cmd)
}

func addPlots(topLevel *cobra.Command, env *Env) {
	var opts repository.ListOptions
	var status string
	cmd := &cobra.Command{
		Use:   "plots",
		Short: "List planting records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, closeFn, err := env.service()
			if err != nil {
				return err
			}
			defer closeFn()
			opts.Status = entities.PlotStatus(status)
			plots, err := svc.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			PrintPlots(cmd.OutOrStdout(), plots)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Area, "area", "", "filter by area")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (growing, harvested, discarded)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows")
	cmd.Flags().StringVar(&opts.Order, "order", "asc", "start date order, asc or desc")
	topLevel.AddCommand(cmd)
}

func addExport(topLevel *cobra.Command, env *Env) {
	var out, area, status string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write planting records to an XLSX file",
		Example: `
gardenctl export -o plots.xlsx --status growing
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, closeFn, err := env.service()
			if err != nil {
				return err
			}
			defer closeFn()
			plots, err := svc.List(cmd.Context(), repository.ListOptions{Area: area, Status: entities.PlotStatus(status)})
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.PlotsXLSX(f, plots); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d plots to %s\n", len(plots), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "plots.xlsx", "destination file")
	cmd.Flags().StringVar(&area, "area", "", "filter by area")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	topLevel.AddCommand(cmd)
}

func addSeed(topLevel *cobra.Command, env *Env) {
	cmd := &cobra.Command{
		Use:   "seed <file.csv|file.xlsx>",
		Short: "Insert or overwrite crop catalog rows from a seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			_, svc, closeFn, err := env.service()
			if err != nil {
				return err
			}
			defer closeFn()
			if err := svc.SeedCatalog(cmd.Context(), cat); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d groups, %d icons, %d crops\n", len(cat.Groups), len(cat.Icons), len(cat.Crops))
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

// Execute runs the tree with a background context.
func Execute(cmd *cobra.Command) error {
	return cmd.ExecuteContext(context.Background())
}
