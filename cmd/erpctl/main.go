// Package main provides the millerp operations CLI.
// Usage: erpctl migrate
//
//	erpctl report -from 2026-01-01 -to 2026-01-31 -out report.xlsx
//	erpctl deliveries -supplier <id> -from 2026-01-01 -to 2026-01-31
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"millerp/internal/core/apperror"
	"millerp/internal/core/id"
	"millerp/internal/domain/production/inspectionlotcolor"
	"millerp/internal/domain/purchasing/deliveryorder"
	"millerp/internal/infrastructure/xlsx"
)

// dateLayout is the layout of date flags.
const dateLayout = "2006-01-02"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "migrate":
		err = runMigrate(ctx)
	case "report":
		err = runReport(ctx, os.Args[2:])
	case "deliveries":
		err = runDeliveries(ctx, os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError writes err to stderr, with field errors as indented JSON.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errs, ok := apperror.FieldErrorsOf(err); ok {
		out, _ := json.MarshalIndent(errs, "", "  ")
		fmt.Fprintln(os.Stderr, string(out))
	}
}

func printUsage() {
	fmt.Println(`millerp operations CLI

Usage:
  erpctl <command> [options]

Commands:
  migrate     Create document collections, sequences and the audit log
  report      Export the inspection lot color report to xlsx
  deliveries  Print delivery orders matching number, supplier or date range as JSON
  help        Show this help

Environment Variables:
  MILLERP_DATABASE_URL   PostgreSQL connection string (required)
  MILLERP_LOGGING_LEVEL  debug, info, warn, error

Examples:
  erpctl migrate
  erpctl report -from 2026-01-01 -to 2026-01-31 -kanban <uuid> -out report.xlsx
  erpctl deliveries -no DO-001 -supplier <uuid>
  erpctl deliveries -from 2026-01-01 -to 2026-01-31`)
}

func runMigrate(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	ctx = a.context(ctx)
	defer a.Close(ctx)

	if err := a.migrate(ctx); err != nil {
		return err
	}
	a.log.Infow("schema is up to date", "collections", len(collections))
	return nil
}

// reportFlags holds the parsed report command line.
type reportFlags struct {
	query inspectionlotcolor.ReportQuery
	out   string
}

func parseReportFlags(args []string, loc *time.Location) (reportFlags, error) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	from := fs.String("from", "", "first inspection date, YYYY-MM-DD")
	to := fs.String("to", "", "last inspection date, YYYY-MM-DD")
	kanbanID := fs.String("kanban", "", "kanban id")
	orderID := fs.String("production-order", "", "production order id")
	out := fs.String("out", "", "output file, defaults to the report name")
	if err := fs.Parse(args); err != nil {
		return reportFlags{}, err
	}

	var (
		rf  reportFlags
		err error
	)
	if rf.query.DateFrom, err = parseDate(*from, loc); err != nil {
		return reportFlags{}, fmt.Errorf("-from: %w", err)
	}
	if rf.query.DateTo, err = parseDate(*to, loc); err != nil {
		return reportFlags{}, fmt.Errorf("-to: %w", err)
	}
	if rf.query.KanbanID, err = parseID(*kanbanID); err != nil {
		return reportFlags{}, fmt.Errorf("-kanban: %w", err)
	}
	if rf.query.ProductionOrderID, err = parseID(*orderID); err != nil {
		return reportFlags{}, fmt.Errorf("-production-order: %w", err)
	}
	rf.out = *out
	return rf, nil
}

func runReport(ctx context.Context, args []string) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	ctx = a.context(ctx)
	defer a.Close(ctx)

	rf, err := parseReportFlags(args, a.reportLocation())
	if err != nil {
		return err
	}

	items, err := a.inspections.GetReport(ctx, rf.query)
	if err != nil {
		return err
	}
	report := a.inspections.GetXls(items, rf.query)

	out := rf.out
	if out == "" {
		out = report.Name
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := xlsx.NewWriter(xlsx.DefaultSheet).Write(ctx, f, report); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	a.log.Infow("report written", "file", out, "rows", len(report.Rows))
	return nil
}

func parseDeliveryFlags(args []string, loc *time.Location) (deliveryorder.DataQuery, error) {
	fs := flag.NewFlagSet("deliveries", flag.ContinueOnError)
	no := fs.String("no", "", "delivery order number")
	supplier := fs.String("supplier", "", "supplier id")
	from := fs.String("from", "", "first supplier DO date, YYYY-MM-DD")
	to := fs.String("to", "", "last supplier DO date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return deliveryorder.DataQuery{}, err
	}

	q := deliveryorder.DataQuery{No: *no}
	var err error
	if q.SupplierID, err = parseID(*supplier); err != nil {
		return deliveryorder.DataQuery{}, fmt.Errorf("-supplier: %w", err)
	}
	if q.DateFrom, err = parseDate(*from, loc); err != nil {
		return deliveryorder.DataQuery{}, fmt.Errorf("-from: %w", err)
	}
	if q.DateTo, err = parseDate(*to, loc); err != nil {
		return deliveryorder.DataQuery{}, fmt.Errorf("-to: %w", err)
	}
	return q, nil
}

func runDeliveries(ctx context.Context, args []string) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	ctx = a.context(ctx)
	defer a.Close(ctx)

	q, err := parseDeliveryFlags(args, a.reportLocation())
	if err != nil {
		return err
	}

	items, err := a.deliveries.GetDataDeliveryOrder(ctx, q)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// parseDate parses a YYYY-MM-DD flag in loc. Empty means unset.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, s, loc)
}

// parseID parses an id flag. Empty means unset.
func parseID(s string) (id.ID, error) {
	if s == "" {
		return id.Nil(), nil
	}
	return id.Parse(s)
}
