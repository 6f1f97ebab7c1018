package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghuser/ratapay/pkg/payload"
	"github.com/ghuser/ratapay/pkg/signature"
)

type signOptions struct {
	Method      string
	Endpoint    string
	PayloadFile string
	Token       string
	Secret      string
	Timestamp   string
}

type signResult struct {
	Timestamp    string `json:"timestamp"`
	Canonical    string `json:"canonical"`
	PayloadHash  string `json:"payload_hash"`
	StringToSign string `json:"string_to_sign"`
	Signature    string `json:"signature"`
}

func newSignCommand(root *rootOptions) *cobra.Command {
	opts := &signOptions{}
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Compute the X-RATAPAY-SIGN header for a request",
		Long: `Compute the request signature and print every intermediate step:
the canonical payload, its SHA-256, the string to sign and the HMAC.

The payload file holds the JSON body as it will be sent, including merchant_id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Method, "method", "POST", "HTTP method")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "endpoint path, e.g. /transaction")
	cmd.Flags().StringVar(&opts.PayloadFile, "payload", "", "JSON payload file (omit for an empty payload)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "bearer token")
	cmd.Flags().StringVar(&opts.Secret, "secret", "", "API secret")
	cmd.Flags().StringVar(&opts.Timestamp, "timestamp", "", "request timestamp (default now)")
	_ = cmd.MarkFlagRequired("endpoint")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func runSign(cmd *cobra.Command, root *rootOptions, opts *signOptions) error {
	body := payload.NewObject()
	if opts.PayloadFile != "" {
		raw, err := os.ReadFile(opts.PayloadFile)
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}
		if err := body.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("parse payload %s: %w", opts.PayloadFile, err)
		}
	}

	ts := opts.Timestamp
	if ts == "" {
		ts = signature.FormatTimestamp(time.Now())
	}

	sig, err := signature.Sign(signature.Request{
		Method:   strings.ToUpper(opts.Method),
		Endpoint: opts.Endpoint,
		Payload:  body,
	}, signature.Credentials{Token: opts.Token, Secret: opts.Secret}, ts)
	if err != nil {
		return err
	}

	res := signResult{
		Timestamp:    ts,
		Canonical:    string(sig.Canonical),
		PayloadHash:  sig.PayloadHash,
		StringToSign: sig.StringToSign,
		Signature:    sig.Value,
	}
	if root.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "timestamp:      %s\n", res.Timestamp)
	fmt.Fprintf(w, "canonical:      %s\n", res.Canonical)
	fmt.Fprintf(w, "payload hash:   %s\n", res.PayloadHash)
	fmt.Fprintf(w, "string to sign: %s\n", res.StringToSign)
	fmt.Fprintf(w, "signature:      %s\n", res.Signature)
	return nil
}
