// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocation implements the "allocation" command group.
package allocation

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/allocation/allocationoverview"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/allocation/allocationpositions"
)

// NewCommand returns a new allocation command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Display stocks, bonds, and cash allocation",
		SubCommands: []*appcmd.Command{
			allocationoverview.NewCommand("overview", builder),
			allocationpositions.NewCommand("positions", builder),
		},
	}
}
