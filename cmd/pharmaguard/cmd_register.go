package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pharmaguard/internal/verification"
)

func newRegisterCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "register <batch-json | @file>",
		Short: "Register a manufacturer batch on the ledger",
		Long: `Register a batch on the ledger and print the transaction id.

The argument is either an inline JSON object or @path to a file holding one.
Required fields: batchId, drugName, manufacturer, ndcCode, manufacturingDate,
expiryDate. Registration needs a connected ledger.`,
		Example: `  pharmaguard register '{"batchId":"68180-518-01","drugName":"Aspirin","manufacturer":"Pfizer","ndcCode":"68180-518-01","manufacturingDate":"2025-01-15","expiryDate":"2027-01-15"}'
  pharmaguard register @batch.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := readBatchInfo(args[0])
			if err != nil {
				return err
			}
			return runRegister(cmd.Context(), flags, info, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runRegister(ctx context.Context, flags *globalFlags, info verification.BatchInfo, out, logOut io.Writer) error {
	a, err := flags.buildApp(ctx, logOut)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	a.Init(ctx)

	reg, err := a.Service.RegisterBatch(ctx, info)
	if err != nil {
		return fmt.Errorf("register batch %q: %w", info.BatchID, err)
	}

	fmt.Fprintf(out, "Batch %s registered\n", reg.BatchID)
	fmt.Fprintf(out, "Transaction: %s\n", reg.TransactionID)
	return nil
}

// readBatchInfo decodes arg, or the file it names when prefixed with @.
func readBatchInfo(arg string) (verification.BatchInfo, error) {
	var info verification.BatchInfo

	data := []byte(arg)
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return info, fmt.Errorf("read batch file: %w", err)
		}
		data = b
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&info); err != nil {
		return info, fmt.Errorf("invalid batch JSON: %w", err)
	}
	return info, nil
}
