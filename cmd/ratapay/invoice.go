package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	appsvcs "github.com/ghuser/ratapay/services/payment/application/services"
	"github.com/ghuser/ratapay/services/payment/domain/models"
	domainsvcs "github.com/ghuser/ratapay/services/payment/domain/services"
)

var errInvalidInvoice = errors.New("invoice is invalid")

// invoiceFile is the on-disk invoice description. JSON files parse too since
// YAML is a superset.
type invoiceFile struct {
	Invoice       models.Input   `yaml:"invoice"`
	Items         []models.Input `yaml:"items"`
	Beneficiaries []models.Input `yaml:"beneficiaries"`
}

func loadInvoiceFile(path string) (appsvcs.CheckoutRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return appsvcs.CheckoutRequest{}, fmt.Errorf("read invoice: %w", err)
	}
	var f invoiceFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return appsvcs.CheckoutRequest{}, fmt.Errorf("parse invoice %s: %w", path, err)
	}
	if f.Invoice == nil {
		return appsvcs.CheckoutRequest{}, fmt.Errorf("parse invoice %s: missing invoice section", path)
	}
	return appsvcs.CheckoutRequest{
		Invoice:       f.Invoice,
		Items:         f.Items,
		Beneficiaries: f.Beneficiaries,
	}, nil
}

func newInvoiceCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Check, project and send invoice files",
	}
	cmd.AddCommand(newInvoiceValidateCommand(root))
	cmd.AddCommand(newInvoicePayloadCommand(root))
	cmd.AddCommand(newInvoiceCreateCommand(root))
	return cmd
}

func newInvoiceValidateCommand(root *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Build the invoice and run the reconciliation rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadInvoiceFile(file)
			if err != nil {
				return err
			}
			outcome := domainsvcs.Outcome{Valid: false}
			inv, err := appsvcs.BuildInvoice(req)
			if err != nil {
				outcome.Message = err.Error()
			} else {
				outcome = domainsvcs.CheckInvoice(inv)
			}
			if err := writeOutcome(cmd.OutOrStdout(), root.Format, outcome); err != nil {
				return err
			}
			if !outcome.Valid {
				return errInvalidInvoice
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "invoice file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func writeOutcome(w io.Writer, format string, o domainsvcs.Outcome) error {
	if format == "json" {
		return writeJSON(w, o)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close() //nolint:errcheck
	return enc.Encode(o)
}

func newInvoicePayloadCommand(root *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Print the request payload of an invoice",
		Long: `Print the payload that would be sent to POST /transaction, before the
client adds merchant_id. The invoice must pass the reconciliation rules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadInvoiceFile(file)
			if err != nil {
				return err
			}
			inv, err := appsvcs.BuildInvoice(req)
			if err != nil {
				return err
			}
			if err := domainsvcs.ReconcileInvoice(inv); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), inv.Payload())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "invoice file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newInvoiceCreateCommand(root *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Send the invoice to Ratapay and print the payment link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadInvoiceFile(file)
			if err != nil {
				return err
			}
			inv, err := appsvcs.BuildInvoice(req)
			if err != nil {
				return err
			}
			client, err := root.newClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res, err := client.CreateTransaction(cmd.Context(), inv)
			if err != nil {
				return err
			}
			if root.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "invoice:     %s\n", res.InvoiceID)
			fmt.Fprintf(w, "ref:         %s\n", res.Ref)
			fmt.Fprintf(w, "payment url: %s\n", res.PaymentURL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "invoice file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
