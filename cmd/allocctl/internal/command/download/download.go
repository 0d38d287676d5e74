// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package download implements the "download" command.
package download

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/allocctlcmd"
	"github.com/bufdev/allocctl/internal/alloc/allocconfig"
)

// NewCommand returns a new download command that fetches and caches the portfolio.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Download and cache accounts, balances, positions, symbols, and quotes",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(ctx context.Context, container appext.Container) error {
	config, err := allocconfig.ReadConfig(container.ConfigDirPath())
	if err != nil {
		return err
	}
	stateStore := allocctlcmd.NewStateStore(container)
	// Always fetch fresh data. Failures are returned rather than falling back.
	portfolio, err := allocctlcmd.Refresh(ctx, container, config, stateStore)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(container.Stdout(), "downloaded %d accounts to %s\n", len(portfolio.Accounts), stateStore.DirPath())
	return err
}
