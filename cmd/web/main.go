package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/perf-tools/report-lens/pkg/render"
	"github.com/perf-tools/report-lens/pkg/server"
	"github.com/perf-tools/report-lens/pkg/services/analytics"
	"github.com/perf-tools/report-lens/pkg/services/intake"
	"github.com/perf-tools/report-lens/pkg/services/location"
	"github.com/perf-tools/report-lens/pkg/store"
	"github.com/perf-tools/report-lens/pkg/store/registry"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the Report Lens viewer server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the viewer config file (YAML)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("addr", "localhost:8080")
	v.SetDefault("base_url", "http://localhost:8080/")
	v.SetDefault("gist_host", intake.DefaultGistHost)
	v.SetDefault("viewer_version", "")
	v.SetDefault("stores_path", "")
	v.SetDefault("store_profile", "gist")
	v.SetDefault("opener", "")

	v.SetEnvPrefix("REPORT_LENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var reportStore store.ReportStore
	if storesPath := cfg.GetString("stores_path"); storesPath != "" {
		reg, err := registry.NewRegistry(storesPath)
		if err != nil {
			return fmt.Errorf("failed to create store registry: %w", err)
		}
		profiles, _ := reg.GetProfiles(ctx)
		logger.Info().Strs("profiles", profiles).Msgf("Store profiles found at `%s` successfully loaded.", storesPath)

		reportStore, err = reg.GetStore(ctx, cfg.GetString("store_profile"))
		if err != nil {
			return fmt.Errorf("failed to configure store profile %q: %w", cfg.GetString("store_profile"), err)
		}
	} else {
		logger.Warn().Msg("no store profiles configured, remote loads and sharing are disabled")
	}

	container := render.NewContainer()
	renderer, err := render.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	loc, err := location.NewSync(cfg.GetString("base_url"), "")
	if err != nil {
		return fmt.Errorf("failed to create location sync: %w", err)
	}

	controller := intake.NewController(intake.Config{
		ViewerVersion: cfg.GetString("viewer_version"),
		GistHost:      cfg.GetString("gist_host"),
		Opener:        cfg.GetString("opener"),
	}, intake.Dependencies{
		Pipeline:  renderer,
		Container: container,
		Store:     reportStore,
		Location:  loc,
		Analytics: analytics.LogSink{},
	})

	if err := controller.OnStartup(ctx); err != nil {
		return err
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr: cfg.GetString("addr"),
		Dependencies: server.Dependencies{
			Viewer: controller,
			Opener: cfg.GetString("opener"),
		},
	})

	return api.Start()
}
