// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// voltstore is the storage operations tool: migrate between back-ends,
// distribute blob collections into dedicated tables, and probe
// connectivity.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/Enclicainteractive/volt/storage"
	"github.com/Enclicainteractive/volt/storage/migrate"
	"github.com/Enclicainteractive/volt/storage/router"
)

var (
	rootCmd = &cobra.Command{
		Use:   "voltstore",
		Short: "Volt storage operations",
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Migrate all collections to another back-end",
		RunE:  cmdMigrate,
	}
	distributeCmd = &cobra.Command{
		Use:   "distribute",
		Short: "Split blob collections into dedicated tables",
		RunE:  cmdDistribute,
	}
	testConnectionCmd = &cobra.Command{
		Use:   "test-connection <kind>",
		Short: "Probe connectivity of a back-end",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdTestConnection,
	}

	migrateFlags struct {
		target    string
		sourceDir string
		noBackup  bool
	}
)

func init() {
	migrateCmd.Flags().StringVar(&migrateFlags.target, "target", "", "target adapter kind")
	migrateCmd.Flags().StringVar(&migrateFlags.sourceDir, "source-dir", "", "extra JSON file tree merged into the export")
	migrateCmd.Flags().BoolVar(&migrateFlags.noBackup, "no-backup", false, "skip the backup step")
	_ = migrateCmd.MarkFlagRequired("target")

	rootCmd.PersistentFlags().String("config", "", "config file (default voltstore.yaml)")
	rootCmd.AddCommand(migrateCmd, distributeCmd, testConnectionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads voltstore.yaml (or the --config override) plus
// VOLT_* environment variables into a storage configuration.
func loadConfig(cmd *cobra.Command) (storage.Config, error) {
	vip := viper.New()
	vip.SetEnvPrefix("volt")
	vip.AutomaticEnv()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName("voltstore")
		vip.AddConfigPath(".")
	}
	if err := vip.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return storage.Config{}, errs.Wrap(err)
		}
	}

	config := storage.Config{Type: storage.FileTree}
	if err := vip.UnmarshalKey("storage", &config); err != nil {
		return storage.Config{}, errs.Wrap(err)
	}
	return config, nil
}

// targetOptions reads the options block configured for a kind, so a
// migration target can be fully described in the same file.
func targetOptions(cmd *cobra.Command, kind storage.Kind) (storage.Options, error) {
	vip := viper.New()
	vip.SetEnvPrefix("volt")
	vip.AutomaticEnv()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName("voltstore")
		vip.AddConfigPath(".")
	}
	if err := vip.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return storage.Options{}, errs.Wrap(err)
		}
	}

	var opts storage.Options
	if err := vip.UnmarshalKey("targets."+string(kind), &opts); err != nil {
		return storage.Options{}, errs.Wrap(err)
	}
	return opts, nil
}

func openRouter(ctx context.Context, cmd *cobra.Command, log *zap.Logger) (*router.Router, storage.Config, error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, storage.Config{}, err
	}
	rtr, err := router.New(ctx, log, config)
	if err != nil {
		return nil, storage.Config{}, err
	}
	return rtr, config, nil
}

func cmdMigrate(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	log, err := zap.NewProduction()
	if err != nil {
		return errs.Wrap(err)
	}
	defer func() { _ = log.Sync() }()

	kind := storage.Kind(migrateFlags.target)
	if !kind.Valid() {
		return storage.ErrConfig.New("unknown target kind %q", migrateFlags.target)
	}
	opts, err := targetOptions(cmd, kind)
	if err != nil {
		return err
	}

	rtr, _, err := openRouter(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, rtr.Close()) }()

	steps, err := migrate.Run(ctx, log, rtr, migrate.Options{
		TargetKind:    kind,
		TargetOptions: opts,
		SourceDir:     migrateFlags.sourceDir,
		DoBackup:      !migrateFlags.noBackup,
	})
	for _, step := range steps {
		fmt.Printf("%-18s %-10s %s\n", step.Name, step.Status, step.Detail)
	}
	return err
}

func cmdDistribute(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	log, err := zap.NewProduction()
	if err != nil {
		return errs.Wrap(err)
	}
	defer func() { _ = log.Sync() }()

	rtr, config, err := openRouter(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, rtr.Close()) }()

	if !config.Type.SQL() {
		fmt.Printf("nothing to distribute for %q\n", config.Type)
		return nil
	}
	report, err := rtr.Distribute(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("distributed: %d, deleted: %d\n", len(report.Distributed), len(report.Deleted))
	for _, detail := range report.Errors {
		fmt.Println("warning:", detail)
	}
	return nil
}

func cmdTestConnection(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log, err := zap.NewProduction()
	if err != nil {
		return errs.Wrap(err)
	}
	defer func() { _ = log.Sync() }()

	kind := storage.Kind(args[0])
	opts, err := targetOptions(cmd, kind)
	if err != nil {
		return err
	}

	result := migrate.TestConnection(ctx, log, kind, opts)
	switch {
	case result.Success:
		fmt.Printf("%s: ok\n", kind)
		return nil
	case !result.Tested:
		return errs.New("%s: %s", kind, result.Error)
	case result.DriverMissing:
		return errs.New("%s: driver missing: %s", kind, result.Error)
	default:
		return errs.New("%s: unreachable: %s", kind, result.Error)
	}
}
