// Command payctl sends payments to the payments API and shows the local
// history of accepted ones.
//
//	payctl send -to alice@example.com -amount 50.00 -currency USD
//	payctl history
//	payctl watch
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/josh-kwaku/mobile-payments/internal/codec"
	"github.com/josh-kwaku/mobile-payments/internal/config"
	"github.com/josh-kwaku/mobile-payments/internal/domain"
	"github.com/josh-kwaku/mobile-payments/internal/logging"
	"github.com/josh-kwaku/mobile-payments/internal/repository"
	"github.com/josh-kwaku/mobile-payments/internal/service/submission"
	"github.com/josh-kwaku/mobile-payments/internal/validation"
)

const usage = `usage: payctl <command> [flags]

commands:
  send     submit one payment
  history  list accepted payments, newest first
  watch    print the history again on every change
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "payctl:", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, "payctl", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg, logger, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, "payctl:", err)
		return 1
	}
	defer store.Close()

	switch args[0] {
	case "send":
		return runSend(ctx, cfg, logger, store, args[1:], stdout, stderr)
	case "history":
		return runHistory(ctx, store, stdout, stderr)
	case "watch":
		return runWatch(ctx, store, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "payctl: unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

func runSend(ctx context.Context, cfg *config.Config, logger *slog.Logger, store repository.TransactionStore, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(stderr)
	to := fs.String("to", "", "recipient email")
	amountStr := fs.String("amount", "", "amount, e.g. 50.00")
	currency := fs.String("currency", string(domain.CurrencyUSD), "USD or EUR")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	amount, err := codec.ParseAmount(*amountStr)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid amount %q\n", *amountStr)
		return 1
	}

	svc := submission.NewService(submission.Config{
		BaseURL:       cfg.PaymentAPIURL,
		Timeout:       cfg.ClientTimeout,
		LocalPrecheck: cfg.LocalPrecheck,
	}, store, logger)

	rec, err := svc.Submit(ctx, *to, amount, domain.Currency(*currency))
	if err != nil {
		if verr, ok := validation.AsError(err); ok {
			fmt.Fprintln(stderr, verr.Message)
			return 1
		}
		if serr, ok := submission.AsError(err); ok {
			logger.Debug("submission failed", "error", serr.Message)
			fmt.Fprintln(stderr, serr.UserMessage())
			return 1
		}
		fmt.Fprintln(stderr, submission.GenericFailureMessage)
		return 1
	}

	fmt.Fprintf(stdout, "Payment sent: %s %s to %s (%s)\n",
		rec.Amount.StringFixed(2), rec.Currency, rec.RecipientEmail, rec.ID)
	return 0
}

func runHistory(ctx context.Context, store repository.TransactionStore, stdout, stderr io.Writer) int {
	records, err := store.ListAll(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "payctl:", err)
		return 1
	}
	printRecords(stdout, records)
	return 0
}

// runWatch prints every snapshot until interrupted.
func runWatch(ctx context.Context, store repository.TransactionStore, stdout, stderr io.Writer) int {
	updates, err := store.Subscribe(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "payctl:", err)
		return 1
	}
	for records := range updates {
		printRecords(stdout, records)
		fmt.Fprintln(stdout)
	}
	return 0
}

func printRecords(w io.Writer, records []domain.TransactionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No transactions yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECIPIENT\tAMOUNT\tCURRENCY\tSTATUS\tTIME")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.RecipientEmail, r.Amount.StringFixed(2), r.Currency, r.Status,
			r.CreatedAt().Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
}
