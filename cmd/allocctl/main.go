// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/allocation"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/auth"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/config"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/download"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/toggle"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("allocctl"))
}

// newRootCommand creates the root allocctl command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:                 name,
		Short:               "Analyze the stocks, bonds, and cash allocation of Questrade accounts",
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			allocation.NewCommand("allocation", builder),
			auth.NewCommand("auth", builder),
			config.NewCommand("config", builder),
			download.NewCommand("download", builder),
			toggle.NewCommand("toggle", builder),
		},
	}
}
