package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Landonswork/lando-backend-call-routing/internal/config"
	"github.com/Landonswork/lando-backend-call-routing/internal/gateway"
)

func newStatusCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running gateway's health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				cfg, err := config.Load(cfgFile)
				if err != nil {
					return err
				}
				addr = fmt.Sprintf("http://127.0.0.1:%d", cfg.Gateway.Port)
			}

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(addr + "/health")
			if err != nil {
				return fmt.Errorf("gateway not reachable at %s: %w", addr, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("health check returned %s", resp.Status)
			}

			var health gateway.HealthResponse
			if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
				return fmt.Errorf("decode health response: %w", err)
			}

			fmt.Printf("status:       %s\n", health.Status)
			fmt.Printf("version:      %s\n", health.Version)
			fmt.Printf("active calls: %d\n", health.ActiveCalls)
			fmt.Printf("uptime:       %s\n", (time.Duration(health.UptimeSec) * time.Second).String())
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "gateway base URL (default derived from config port)")
	return cmd
}
