package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/carson-networks/property-server/internal/banking"
)

type vendorSummary struct {
	Name     string
	Count    int
	Total    decimal.Decimal
	Category banking.Category
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("vendor_discovery")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "vendor_discovery",
		Usage: "list the counterparties of bill-like payments in a bank statement export",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "statement export to scan",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "min-count",
				Value: 1,
				Usage: "only list vendors paid at least this many times",
			},
			&cli.BoolFlag{
				Name:  "dump",
				Usage: "also dump the transactions filtered out as non-bills",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	raw, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("read statement: %w", err)
	}
	content := string(raw)

	if err := banking.Validate(content); err != nil {
		return err
	}
	parsed := banking.Parse(content)
	for _, rowErr := range parsed.Errors {
		logrus.WithField("file", c.String("file")).Warn(rowErr)
	}

	filtered := banking.FilterNonBillTransactions(parsed.Transactions)
	vendors := discoverVendors(filtered.Potential, c.Int("min-count"))

	if err := printVendors(c.App.Writer, vendors); err != nil {
		return err
	}
	if c.Bool("dump") {
		spew.Fdump(c.App.Writer, filtered.Filtered)
	}
	return nil
}

// discoverVendors groups debits by counterparty, most frequent first.
func discoverVendors(txns []banking.ParsedTransaction, minCount int) []vendorSummary {
	byName := map[string]*vendorSummary{}
	for _, txn := range txns {
		name := txn.Description
		if txn.ExtractedVendorName != nil {
			name = *txn.ExtractedVendorName
		}
		key := strings.ToLower(strings.TrimSpace(name))

		summary, ok := byName[key]
		if !ok {
			summary = &vendorSummary{Name: name, Category: txn.Category}
			byName[key] = summary
		}
		summary.Count++
		summary.Total = summary.Total.Add(txn.Amount.Abs())
	}

	vendors := make([]vendorSummary, 0, len(byName))
	for _, summary := range byName {
		if summary.Count >= minCount {
			vendors = append(vendors, *summary)
		}
	}
	sort.Slice(vendors, func(i, j int) bool {
		if vendors[i].Count != vendors[j].Count {
			return vendors[i].Count > vendors[j].Count
		}
		if !vendors[i].Total.Equal(vendors[j].Total) {
			return vendors[i].Total.GreaterThan(vendors[j].Total)
		}
		return vendors[i].Name < vendors[j].Name
	})
	return vendors
}

func printVendors(out io.Writer, vendors []vendorSummary) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VENDOR\tPAYMENTS\tTOTAL\tCATEGORY")
	for _, v := range vendors {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", v.Name, v.Count, v.Total.StringFixed(2), v.Category)
	}
	return w.Flush()
}
