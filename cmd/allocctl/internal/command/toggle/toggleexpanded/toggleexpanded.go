// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package toggleexpanded implements the "toggle expanded" command.
package toggleexpanded

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/allocctlcmd"
	"github.com/bufdev/allocctl/internal/alloc/allocstate"
)

// NewCommand returns a new toggle expanded command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name + " <account-number>",
		Short: "Flip whether an account's positions are listed in the overview",
		Args:  appcmd.ExactArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(_ context.Context, container appext.Container) error {
	accountNumber := container.Arg(0)
	if accountNumber == "" {
		return appcmd.NewInvalidArgumentError("account number is required")
	}
	stateStore := allocctlcmd.NewStateStore(container)
	collapsed := allocstate.GetOr(stateStore, allocstate.KeyCollapsed, map[string]bool{})
	if collapsed == nil {
		collapsed = make(map[string]bool)
	}
	// Accounts are expanded unless collapsed.
	if collapsed[accountNumber] {
		delete(collapsed, accountNumber)
	} else {
		collapsed[accountNumber] = true
	}
	stateStore.Set(allocstate.KeyCollapsed, collapsed)
	_, err := fmt.Fprintf(container.Stdout(), "expanded %s: %s\n", accountNumber, allocctlcmd.OnOff(!collapsed[accountNumber]))
	return err
}
