// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocationoverview implements the "allocation overview" command.
package allocationoverview

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/allocctlcmd"
	"github.com/bufdev/allocctl/internal/alloc/allocview"
	"github.com/bufdev/allocctl/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

const (
	// formatFlagName is the flag name for the output format.
	formatFlagName = "format"
	// cachedFlagName is the flag name for skipping the download and using cached data only.
	cachedFlagName = "cached"
)

// NewCommand returns a new allocation overview command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Display the allocation of each account, by tax treatment, and overall",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Format is the output format (table, csv, json).
	Format string
	// Cached skips downloading and uses only cached data.
	Cached bool
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Format, formatFlagName, "table", "Output format (table, csv, json)")
	flagSet.BoolVar(&f.Cached, cachedFlagName, false, "Skip downloading and use only cached data")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	portfolio, result, options, err := allocctlcmd.LoadResult(ctx, container, flags.Cached)
	if err != nil {
		return err
	}
	overview := allocview.NewOverview(portfolio, result, options)
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable:
		headers := allocview.BreakdownOverviewHeaders()
		totalsRow := allocview.BreakdownOverviewToRow(overview.Overall)
		accountRows := make([][]string, 0, len(overview.Accounts))
		for _, accountOverview := range overview.Accounts {
			accountRows = append(accountRows, allocview.BreakdownOverviewToRow(accountOverview.Breakdown))
		}
		sections := []cliio.Section{
			{
				Title:   sectionTitle("ACCOUNTS", overview),
				Headers: headers,
				Rows:    accountRows,
				Totals:  totalsRow,
			},
		}
		// Expanded accounts list their positions below the accounts table.
		for _, accountOverview := range overview.Accounts {
			if accountOverview.Positions == nil {
				continue
			}
			positionRows := make([][]string, 0, len(accountOverview.Positions))
			for _, positionOverview := range accountOverview.Positions {
				positionRows = append(positionRows, allocview.PositionOverviewToRow(positionOverview))
			}
			sections = append(sections, cliio.Section{
				Title:   accountOverview.Breakdown.Name,
				Headers: allocview.PositionOverviewHeaders(),
				Rows:    positionRows,
			})
		}
		sections = append(sections, cliio.Section{
			Title:   "TAX TREATMENT",
			Headers: headers,
			Rows: [][]string{
				allocview.BreakdownOverviewToRow(overview.RRSP),
				allocview.BreakdownOverviewToRow(overview.NonRRSP),
			},
			Totals: totalsRow,
		})
		if err := cliio.WriteSections(writer, sections...); err != nil {
			return err
		}
		if overview.LastUpdated != "" {
			if _, err := fmt.Fprintf(writer, "\nlast updated %s\n", overview.LastUpdated); err != nil {
				return err
			}
		}
		return nil
	case cliio.FormatCSV:
		records := [][]string{append([]string{"SECTION"}, allocview.BreakdownOverviewHeaders()...)}
		for _, accountOverview := range overview.Accounts {
			records = append(records, csvRecord("account", accountOverview.Breakdown))
		}
		records = append(
			records,
			csvRecord("tax_treatment", overview.RRSP),
			csvRecord("tax_treatment", overview.NonRRSP),
			csvRecord("overall", overview.Overall),
		)
		return cliio.WriteCSVRecords(writer, records)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, overview)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}

func sectionTitle(title string, overview *allocview.Overview) string {
	if overview.PostTax {
		return title + " (post-tax)"
	}
	return title
}

func csvRecord(section string, breakdownOverview *allocview.BreakdownOverview) []string {
	return append([]string{section}, allocview.BreakdownOverviewToRow(breakdownOverview)...)
}
