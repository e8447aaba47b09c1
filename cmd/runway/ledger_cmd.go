package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/runway/internal/domain/token"
	ledgeruc "github.com/kailas-cloud/runway/internal/usecase/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and edit the stored ledger",
	Long: `Operates directly on the configured store. Run against the same
store as a live server only while it is stopped: the server keeps the
ledger in memory and will overwrite changes on its next mutation.`,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print balance, transactions and completed steps as JSON",
	Args:  cobra.NoArgs,
	RunE: withLedger(func(cmd *cobra.Command, l *ledgeruc.Ledger, _ []string) error {
		return printState(cmd.OutOrStdout(), l.State())
	}),
}

var ledgerResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default state",
	Args:  cobra.NoArgs,
	RunE: withLedger(func(cmd *cobra.Command, l *ledgeruc.Ledger, _ []string) error {
		l.Reset(cmd.Context())
		return printState(cmd.OutOrStdout(), l.State())
	}),
}

var ledgerEarnCmd = &cobra.Command{
	Use:   "earn STEP",
	Short: "Reward a completed step (once per step)",
	Args:  cobra.ExactArgs(1),
	RunE: withLedger(func(cmd *cobra.Command, l *ledgeruc.Ledger, args []string) error {
		step, err := token.ParseStep(args[0])
		if err != nil {
			return err //nolint:wrapcheck
		}
		if !l.EarnTokensForStep(cmd.Context(), step) {
			fmt.Fprintf(cmd.OutOrStdout(), "step %s already rewarded, balance %d\n", step, l.Balance())
			return nil
		}
		reward, _ := token.Reward(step)
		fmt.Fprintf(cmd.OutOrStdout(), "+%d tokens (%s), balance %d\n", reward.Amount, reward.Reason, l.Balance())
		return nil
	}),
}

var ledgerSpendCmd = &cobra.Command{
	Use:   "spend FEATURE",
	Short: "Charge the cost of an AI feature",
	Args:  cobra.ExactArgs(1),
	RunE: withLedger(func(cmd *cobra.Command, l *ledgeruc.Ledger, args []string) error {
		f, err := token.ParseFeature(args[0])
		if err != nil {
			return err //nolint:wrapcheck
		}
		cost, _ := token.Cost(f)
		if !l.SpendTokensForAI(cmd.Context(), f) {
			return fmt.Errorf("insufficient tokens: %s costs %d, balance %d", f, cost.Amount, l.Balance())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "-%d tokens (%s), balance %d\n", cost.Amount, cost.Reason, l.Balance())
		return nil
	}),
}

func init() {
	ledgerCmd.AddCommand(ledgerShowCmd, ledgerResetCmd, ledgerEarnCmd, ledgerSpendCmd)
}

// withLedger opens the store and ledger around fn.
func withLedger(fn func(*cobra.Command, *ledgeruc.Ledger, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		return fn(cmd, openLedger(cmd.Context(), store, nil), args)
	}
}

type stateView struct {
	Balance        int64             `json:"balance"`
	Earned         int64             `json:"earned"`
	Spent          int64             `json:"spent"`
	Transactions   []transactionView `json:"transactions"`
	CompletedSteps []string          `json:"completedSteps"`
}

type transactionView struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

func printState(w io.Writer, s token.State) error {
	earned, spent := s.Totals()
	v := stateView{
		Balance:        s.Balance,
		Earned:         earned,
		Spent:          spent,
		Transactions:   make([]transactionView, len(s.Transactions)),
		CompletedSteps: s.Steps(),
	}
	for i, tx := range s.Transactions {
		v.Transactions[i] = transactionView{
			ID:        tx.ID(),
			Type:      string(tx.Kind()),
			Amount:    tx.Amount(),
			Reason:    tx.Reason(),
			Timestamp: tx.Timestamp().Format("2006-01-02T15:04:05.000Z07:00"),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return nil
}
