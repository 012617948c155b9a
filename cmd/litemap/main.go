// Package main 提供 litemap 命令行，用于查看和调整 SQLite 数据库的 PRAGMA
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hatlonely/litemap/cfg"
	"github.com/hatlonely/litemap/rdb"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const envPrefix = "LITEMAP"

func main() {
	var configFile, driver, path string

	rootCmd := &cobra.Command{
		Use:           "litemap",
		Short:         "SQLite database maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml, toml, ini or json)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "driver, sqlite or sqlite3")
	rootCmd.PersistentFlags().StringVarP(&path, "path", "p", "", "database file, :memory: for an in-memory database")

	// withDatabase 按 默认值 < 配置文件 < 环境变量 < 命令行 的顺序加载配置
	withDatabase := func(fn func(ctx context.Context, db *rdb.Database, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			var options rdb.Options
			if err := cfg.LoadWithEnv(configFile, envPrefix, &options); err != nil {
				return err
			}
			if driver != "" {
				options.Driver = driver
			}
			if path != "" {
				options.Path = path
			}

			c, err := rdb.NewContextWithOptions(&options)
			if err != nil {
				return err
			}
			defer c.Close()
			return fn(cmd.Context(), c.Database(), args)
		}
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the SQLite library version",
			Args:  cobra.NoArgs,
			RunE: withDatabase(func(ctx context.Context, db *rdb.Database, args []string) error {
				version, err := db.SQLiteVersion(ctx)
				if err != nil {
					return err
				}
				fmt.Println(version)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "user-version [N]",
			Short: "Print or set PRAGMA user_version",
			Args:  cobra.MaximumNArgs(1),
			RunE: withDatabase(func(ctx context.Context, db *rdb.Database, args []string) error {
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return errors.Wrapf(err, "invalid user version %q", args[0])
					}
					if err := db.SetUserVersion(ctx, n); err != nil {
						return err
					}
				}
				version, err := db.UserVersion(ctx)
				if err != nil {
					return err
				}
				fmt.Println(version)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "vacuum",
			Short: "Rebuild the database file",
			Args:  cobra.NoArgs,
			RunE: withDatabase(func(ctx context.Context, db *rdb.Database, args []string) error {
				return db.Vacuum(ctx)
			}),
		},
		&cobra.Command{
			Use:       "wal on|off",
			Short:     "Switch the journal mode between WAL and DELETE",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{"on", "off"},
			RunE: withDatabase(func(ctx context.Context, db *rdb.Database, args []string) error {
				var mode string
				var err error
				if args[0] == "on" {
					mode, err = db.EnableWAL(ctx)
				} else {
					mode, err = db.DisableWAL(ctx)
				}
				if err != nil {
					return err
				}
				fmt.Println(mode)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "busy-timeout [duration]",
			Short: "Print or set PRAGMA busy_timeout for this connection",
			Args:  cobra.MaximumNArgs(1),
			RunE: withDatabase(func(ctx context.Context, db *rdb.Database, args []string) error {
				if len(args) == 1 {
					timeout, err := time.ParseDuration(args[0])
					if err != nil {
						return errors.Wrapf(err, "invalid duration %q", args[0])
					}
					if err := db.SetBusyTimeout(ctx, timeout); err != nil {
						return err
					}
				}
				timeout, err := db.BusyTimeout(ctx)
				if err != nil {
					return err
				}
				fmt.Println(timeout)
				return nil
			}),
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
