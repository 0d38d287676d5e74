// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package toggleposttax implements the "toggle post-tax" command.
package toggleposttax

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/allocctlcmd"
	"github.com/bufdev/allocctl/internal/alloc/allocstate"
)

// NewCommand returns a new toggle post-tax command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Flip whether RRSP values are shown net of the configured tax rate",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(_ context.Context, container appext.Container) error {
	stateStore := allocctlcmd.NewStateStore(container)
	postTax := !allocstate.GetOr(stateStore, allocstate.KeyPostTax, false)
	stateStore.Set(allocstate.KeyPostTax, postTax)
	_, err := fmt.Fprintf(container.Stdout(), "post-tax: %s\n", allocctlcmd.OnOff(postTax))
	return err
}
