// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package toggleredact implements the "toggle redact" command.
package toggleredact

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/allocctlcmd"
	"github.com/bufdev/allocctl/internal/alloc/allocstate"
)

// NewCommand returns a new toggle redact command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Flip whether money amounts are hidden in output",
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
	redact := !allocstate.GetOr(stateStore, allocstate.KeyRedact, false)
	stateStore.Set(allocstate.KeyRedact, redact)
	_, err := fmt.Fprintf(container.Stdout(), "redact: %s\n", allocctlcmd.OnOff(redact))
	return err
}
