// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package configvalidate implements the "config validate" command.
package configvalidate

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/internal/alloc/allocconfig"
)

// NewCommand returns a new config validate command that validates the configuration file.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Validate the configuration file",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(_ context.Context, container appext.Container) error {
	config, err := allocconfig.ReadConfig(container.ConfigDirPath())
	if err != nil {
		return err
	}
	container.Logger().Debug(
		"configuration file is valid",
		"asset_classes", config.AssetClassMap.Len(),
		"tax_rate_percent", config.TaxRatePercent.String(),
	)
	_, err = fmt.Fprintln(container.Stdout(), "ok")
	return err
}
