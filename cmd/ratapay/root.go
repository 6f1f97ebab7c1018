package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ghuser/ratapay/pkg/app"
	"github.com/ghuser/ratapay/pkg/config"
	"github.com/ghuser/ratapay/pkg/logger"
	"github.com/ghuser/ratapay/services/payment/infrastructure/ratapay"
)

var validFormats = []string{"text", "json"}

// rootOptions holds global flags and the client factory shared by all commands.
type rootOptions struct {
	Format string

	// newClient builds the API client; logs go to w.
	newClient func(w io.Writer) (*ratapay.Client, error)
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(&rootOptions{newClient: clientFromEnv})
}

func newRootCommandWith(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ratapay",
		Short:         "Ratapay merchant tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newSignCommand(opts))
	cmd.AddCommand(newInvoiceCommand(opts))
	cmd.AddCommand(newAccountsCommand(opts))

	return cmd
}

// clientFromEnv builds a client from RATAPAY_* settings. Tokens are cached in
// memory only; a CLI run never shares them.
func clientFromEnv(w io.Writer) (*ratapay.Client, error) {
	cfg, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	cfg.RatapayTokenStore = config.TokenStoreMemory
	return app.NewRatapayClient(cfg, nil, logger.NewWithWriter(cfg, w))
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
