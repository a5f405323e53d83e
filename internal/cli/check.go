package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Landonswork/lando-backend-call-routing/internal/config"
	"github.com/Landonswork/lando-backend-call-routing/internal/hours"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			issues := config.Validate(&cfg)
			for _, issue := range issues {
				fmt.Printf("%s: %s\n", issue.Path, issue.Message)
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d issue(s) found", len(issues))
			}

			if _, err := hours.New(cfg.Hours.Weekdays, cfg.Hours.StartHour, cfg.Hours.EndHour, cfg.Hours.Timezone); err != nil {
				return fmt.Errorf("businessHours: %w", err)
			}

			fmt.Println("config ok")
			return nil
		},
	}
}
