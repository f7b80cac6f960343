package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	slackclient "weatherbot/clients/slack"
	"weatherbot/config"
	"weatherbot/db"
	"weatherbot/services/installations"
)

type Options struct {
	Window  time.Duration `long:"window" default:"1h" description:"Refresh tokens expiring within this duration"`
	Workers int           `long:"workers" default:"4" description:"Number of tokens refreshed concurrently"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run(opts Options) error {
	log.Printf("🔄 Starting Slack OAuth token refresh process...")

	cfg, err := config.LoadRefreshConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	dbConn, err := db.NewConnection(ctx, cfg.DatabaseConfig.URL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	installationsRepo := db.NewPostgresInstallationsRepository(dbConn, cfg.DatabaseConfig.Schema)
	installationsService := installations.NewInstallationsService(
		installationsRepo,
		slackclient.NewSlackOAuthClient(cfg.SlackAPIURL),
		cfg.SlackOAuthConfig.ClientID,
		cfg.SlackOAuthConfig.ClientSecret,
		cfg.SlackOAuthConfig.RedirectURL,
	)

	summary, err := installationsService.RefreshExpiringTokens(ctx, opts.Window, opts.Workers)
	if err != nil {
		return err
	}

	log.Printf("✅ Token refresh process completed!")
	log.Printf("📊 Summary:")
	log.Printf("   - Installations expiring within %s: %d", opts.Window, summary.Found)
	log.Printf("   - Tokens refreshed successfully: %d", summary.Refreshed)
	log.Printf("   - Errors encountered: %d", summary.Failed)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d tokens failed to refresh", summary.Failed, summary.Found)
	}
	return nil
}
