// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package authtoken implements the "auth token" command.
package authtoken

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/allocctlcmd"
)

// NewCommand returns a new auth token command that stores the access token
// from a redirect URL.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name + " <redirect-url>",
		Short: "Store the access token from the redirect URL or its fragment",
		Args:  appcmd.ExactArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(_ context.Context, container appext.Container) error {
	stateStore := allocctlcmd.NewStateStore(container)
	session := allocctlcmd.NewSessionStore(container, stateStore).Capture(container.Arg(0))
	if session == nil {
		return appcmd.NewInvalidArgumentError("no access_token found in the redirect URL fragment")
	}
	_, err := fmt.Fprintf(container.Stdout(), "authenticated with %s\n", session.APIServer)
	return err
}
