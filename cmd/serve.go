package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/btecbytes/bytesapi/internal/api"
	"github.com/btecbytes/bytesapi/internal/cache"
	"github.com/btecbytes/bytesapi/internal/gravatar"
	"github.com/btecbytes/bytesapi/internal/images"
	"github.com/btecbytes/bytesapi/internal/scheduler"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server together with the background job that expires old API keys.`,
	Example: `bytesapi serve --config config.yml
bytesapi serve -c /path/to/config.yml --log-level debug
`,
	RunE: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint: errcheck

	avatars, err := gravatar.New(cfg.Gravatar)
	if err != nil {
		return fmt.Errorf("failed to configure gravatar: %w", err)
	}
	imageCache := cache.NewImageCache(cfg.Cache)
	log.Debug("Image rendition cache ready", "type", imageCache.Type())
	renderer := images.NewRenderer(imageCache, cfg.Images.MaxWidth, cfg.Images.MaxHeight)

	server, err := api.New(cfg, db, renderer, avatars)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	sched, err := scheduler.New(ctx)
	if err != nil {
		return err
	}
	if cfg.APIKeys.TTL > 0 {
		if err := sched.AddCronJob(
			scheduler.JobIDAPIKeyExpiry,
			"Expire API keys",
			cfg.APIKeys.ExpirySchedule,
			scheduler.ExpireAPIKeysJob(db, cfg.APIKeys.TTL, time.Now),
		); err != nil {
			return fmt.Errorf("failed to schedule api key expiry: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})
	g.Go(func() error {
		sched.Start()
		<-ctx.Done()
		return sched.Stop()
	})

	log.Info("bytesapi started successfully")
	err = g.Wait()
	for _, stats := range imageCache.GetStats() {
		log.Info("Cache statistics", "cache", stats.CacheName, "hits", stats.Hits, "misses", stats.Miss)
	}
	if err != nil {
		return err
	}
	log.Info("bytesapi stopped")
	return nil
}
