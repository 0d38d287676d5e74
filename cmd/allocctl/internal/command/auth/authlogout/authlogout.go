// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package authlogout implements the "auth logout" command.
package authlogout

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/allocctlcmd"
)

// NewCommand returns a new auth logout command that forgets the stored access token.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Forget the stored access token",
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
	allocctlcmd.NewSessionStore(container, stateStore).Clear()
	return nil
}
