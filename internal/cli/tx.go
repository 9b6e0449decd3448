package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/ftr/internal/canon"
	"github.com/roach88/ftr/internal/store"
)

// TxOptions holds flags for the tx command.
type TxOptions struct {
	*RootOptions
	ImportID string
	TxID     uint64
}

// TxResult is one stored transaction in JSON form.
type TxResult struct {
	Transaction canon.Object   `json:"transaction"`
	Attributes  []canon.Object `json:"attributes"`
	Relations   []canon.Object `json:"relations"`
}

// NewTxCommand creates the tx command.
func NewTxCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TxOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Show one stored transaction",
		Long: `Show a transaction of an import with its attribute events and the
relations that start or end at it.

Exit codes:
  0 - Transaction found
  1 - No such transaction in the import
  2 - Command error

Examples:
  ftr tx --db ./ftr.db --import 0190f3c2-... --tx 42`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTx(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&rootOpts.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&opts.ImportID, "import", "", "import id (required)")
	cmd.Flags().Uint64Var(&opts.TxID, "tx", 0, "transaction id (required)")
	_ = cmd.MarkFlagRequired("import")
	_ = cmd.MarkFlagRequired("tx")

	return cmd
}

func runTx(opts *TxOptions, cmd *cobra.Command) error {
	if err := opts.requireDatabase(); err != nil {
		return err
	}
	out := opts.formatter(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	tx, err := st.ReadTransaction(cmd.Context(), opts.ImportID, opts.TxID)
	if store.IsNotFound(err) {
		msg := fmt.Sprintf("transaction %d not found in import %s", opts.TxID, opts.ImportID)
		if opts.Format == "json" {
			if err := out.Error(ErrCodeNotFound, msg, nil); err != nil {
				return err
			}
		}
		return NewExitError(ExitFailure, msg)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read transaction", err)
	}

	result := TxResult{
		Transaction: recordObject(tx.Header),
		Attributes:  make([]canon.Object, 0, len(tx.Attributes)),
		Relations:   make([]canon.Object, 0, len(tx.Relations)),
	}
	for _, a := range tx.Attributes {
		result.Attributes = append(result.Attributes, recordObject(a))
	}
	for _, r := range tx.Relations {
		result.Relations = append(result.Relations, recordObject(r))
	}
	return out.Result(result, func(w io.Writer) {
		writeText(w, tx.Header)
		for _, a := range tx.Attributes {
			writeText(w, a)
		}
		for _, r := range tx.Relations {
			writeText(w, r)
		}
	})
}
