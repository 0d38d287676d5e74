// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package authstatus implements the "auth status" command.
package authstatus

import (
	"context"
	"fmt"
	"time"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/allocctlcmd"
	"github.com/bufdev/allocctl/internal/alloc/allocfetch"
)

// NewCommand returns a new auth status command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Print whether an access token is stored",
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
	session := allocctlcmd.NewSessionStore(container, stateStore).Load()
	if session == nil {
		_, err := fmt.Fprintln(container.Stdout(), "not authenticated, run \"allocctl auth login\"")
		return err
	}
	if _, err := fmt.Fprintf(container.Stdout(), "authenticated with %s\n", session.APIServer); err != nil {
		return err
	}
	if _, lastUpdated, ok := allocfetch.LoadCached(stateStore); ok {
		if _, err := fmt.Fprintf(container.Stdout(), "last updated %s\n", lastUpdated.Local().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}
