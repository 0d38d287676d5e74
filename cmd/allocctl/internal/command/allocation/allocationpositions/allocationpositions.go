// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocationpositions implements the "allocation positions" command.
package allocationpositions

import (
	"context"

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

// NewCommand returns a new allocation positions command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Display positions combined across accounts, largest first",
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
	positionOverviews := allocview.NewPositionOverviews(portfolio, result, options)
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable:
		headers := allocview.PositionOverviewHeaders()
		rows := make([][]string, 0, len(positionOverviews))
		for _, positionOverview := range positionOverviews {
			rows = append(rows, allocview.PositionOverviewToRow(positionOverview))
		}
		invested := result.Overall.Invested()
		totalsRow := make([]string, len(headers))
		totalsRow[0] = "TOTAL"
		totalsRow[3] = options.Money(invested)
		totalsRow[4] = allocview.FormatPercentOf(invested, invested)
		return cliio.WriteSections(writer, cliio.Section{Headers: headers, Rows: rows, Totals: totalsRow})
	case cliio.FormatCSV:
		records := make([][]string, 0, len(positionOverviews)+1)
		records = append(records, allocview.PositionOverviewHeaders())
		for _, positionOverview := range positionOverviews {
			records = append(records, allocview.PositionOverviewToRow(positionOverview))
		}
		return cliio.WriteCSVRecords(writer, records)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, positionOverviews...)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}
