package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ascend/internal/availability"
	"ascend/internal/storage"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every stored list to an Excel workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		path := exportOut
		if path == "" {
			path = storage.ExportFilename(time.Now())
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create export dir: %w", err)
			}
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()

		if err := storage.ExportWorkbook(cmd.Context(), a.svc.Slots, f); err != nil {
			return err
		}
		a.logger.Info().Str("path", path).Msg("export written")
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the database once and apply retention",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		db, err := storage.OpenSQLite(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := storage.NewBackupService(db, cfg.Backup, &logger)
		path, err := svc.PerformBackup(cmd.Context())
		if err != nil {
			return err
		}
		svc.CleanupOldBackups()
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Inspect and edit team availability",
}

var availabilityShowCmd = &cobra.Command{
	Use:   "show <user-id> [date]",
	Short: "Print a user's availability, or the resolved hours for one day",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if len(args) == 2 {
				day, err := a.svc.Availability.ForDate(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd, day)
			}
			rec, err := a.svc.Availability.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		})
	},
}

var (
	setUnavailable bool
	setStart       string
	setEnd         string
	bulkWeekdays   []string
)

var availabilitySetCmd = &cobra.Command{
	Use:   "set <user-id> <date>",
	Short: "Override availability for one day",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			rec, err := a.svc.Availability.SetDate(cmd.Context(), args[0], availability.DateInput{
				Date:      args[1],
				Available: !setUnavailable,
				StartTime: setStart,
				EndTime:   setEnd,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		})
	},
}

var availabilityBulkCmd = &cobra.Command{
	Use:   "bulk <user-id> <start-date> <end-date>",
	Short: "Apply availability to every selected weekday in a date range",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		mask, err := availability.ParseMask(bulkWeekdays)
		if err != nil {
			return err
		}
		flags := make(map[string]bool, 7)
		for _, name := range mask.Names() {
			flags[name] = true
		}
		return withApp(cmd, func(a *app) error {
			rec, err := a.svc.Availability.ApplyBulk(cmd.Context(), args[0], availability.BulkRequest{
				StartDate: args[1],
				EndDate:   args[2],
				Weekdays:  flags,
				Available: !setUnavailable,
				StartTime: setStart,
				EndTime:   setEnd,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: ascend_<timestamp>.xlsx)")

	for _, c := range []*cobra.Command{availabilitySetCmd, availabilityBulkCmd} {
		c.Flags().BoolVar(&setUnavailable, "off", false, "Mark the day(s) unavailable")
		c.Flags().StringVar(&setStart, "start", "", "Start time HH:mm (default: the user's default hours)")
		c.Flags().StringVar(&setEnd, "end", "", "End time HH:mm")
	}
	availabilityBulkCmd.Flags().StringSliceVar(&bulkWeekdays, "weekdays", nil, "Weekdays to apply, e.g. mon,wed (default: monday-friday)")

	availabilityCmd.AddCommand(availabilityShowCmd, availabilitySetCmd, availabilityBulkCmd)
}

func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
