package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Landonswork/lando-backend-call-routing/internal/config"
	"github.com/Landonswork/lando-backend-call-routing/internal/engine"
	"github.com/Landonswork/lando-backend-call-routing/internal/gateway"
	"github.com/Landonswork/lando-backend-call-routing/internal/hours"
	"github.com/Landonswork/lando-backend-call-routing/internal/logging"
	"github.com/Landonswork/lando-backend-call-routing/internal/records"
	"github.com/Landonswork/lando-backend-call-routing/internal/recovery"
	"github.com/Landonswork/lando-backend-call-routing/internal/store"
	"github.com/Landonswork/lando-backend-call-routing/internal/telephony"
)

func newServeCmd() *cobra.Command {
	var (
		port      int
		publicURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the voice gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Gateway.Port = port
			}
			if publicURL != "" {
				cfg.Gateway.PublicURL = publicURL
			}
			if logLevel == "" && cfg.Logging.Level != "" {
				log = logging.New(nil, cfg.Logging.Level)
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Work-order records backend
			var recordsSvc records.Service
			if cfg.Records.SpreadsheetID != "" {
				recordsSvc, err = records.NewSheetsService(ctx, records.SheetsConfig{
					SpreadsheetID:   cfg.Records.SpreadsheetID,
					Sheet:           cfg.Records.Sheet,
					CredentialsFile: cfg.Records.CredentialsFile,
					UploadLinkBase:  cfg.Records.UploadLinkBase,
				}, log)
				if err != nil {
					return fmt.Errorf("opening records service: %w", err)
				}
				log.Info().Str("spreadsheet", cfg.Records.SpreadsheetID).Msg("using spreadsheet records service")
			} else {
				recordsSvc = records.NewMemoryService()
				log.Warn().Msg("no spreadsheet configured; work orders are held in memory only")
			}

			// Incomplete-record store (memory or SQLite)
			var incomplete store.IncompleteStore
			if cfg.Recovery.Store == "sqlite" {
				dbPath := cfg.Recovery.DBPath
				if dbPath == "" {
					dbPath = "callrouter.db"
				}
				db, err := store.Open(dbPath, log)
				if err != nil {
					return fmt.Errorf("opening database: %w", err)
				}
				defer db.Close()
				incomplete = store.NewSQLiteIncompleteStore(db)
				log.Info().Str("path", dbPath).Msg("using SQLite incomplete-record store")
			} else {
				incomplete = store.NewMemoryIncompleteStore()
				log.Info().Msg("using in-memory incomplete-record store")
			}

			twilio, err := telephony.NewClient(telephony.ClientConfig{
				AccountSID: cfg.Twilio.AccountSID,
				AuthToken:  cfg.Twilio.AuthToken,
			})
			if err != nil {
				return fmt.Errorf("telephony client: %w", err)
			}

			window, err := hours.New(cfg.Hours.Weekdays, cfg.Hours.StartHour, cfg.Hours.EndHour, cfg.Hours.Timezone)
			if err != nil {
				return fmt.Errorf("business hours: %w", err)
			}

			dialer := engine.NewDialer(engine.DialerConfig{
				APIKey:      cfg.Engine.APIKey,
				Model:       cfg.Engine.LiveModel,
				Voice:       cfg.Engine.Voice,
				EventBuffer: cfg.Session.EventBuffer,
			}, log)
			summarizer := engine.NewOneshotClient(cfg.Engine.APIKey, cfg.Engine.SummaryModel)

			callbacks := recovery.NewCallbackRegistry(time.Duration(cfg.Recovery.CallbackDelayMinutes) * time.Minute)
			caller := gateway.NewRecoveryCaller(twilio, cfg.Twilio.MainNumber, cfg.Gateway.PublicURL)
			coordinator := recovery.New(summarizer, incomplete, callbacks, caller, log)

			srv := gateway.New(cfg, gateway.Deps{
				Dialer:   dialer,
				Twilio:   twilio,
				Records:  recordsSvc,
				Recovery: coordinator,
				Hours:    window,
			}, log)

			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&publicURL, "public-url", "", "override externally reachable base URL")

	return cmd
}
