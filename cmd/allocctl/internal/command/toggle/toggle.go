// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package toggle implements the "toggle" command group.
package toggle

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/toggle/toggleexpanded"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/toggle/toggleposttax"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/toggle/toggleredact"
)

// NewCommand returns a new toggle command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Flip persisted display settings",
		SubCommands: []*appcmd.Command{
			toggleexpanded.NewCommand("expanded", builder),
			toggleposttax.NewCommand("post-tax", builder),
			toggleredact.NewCommand("redact", builder),
		},
	}
}
