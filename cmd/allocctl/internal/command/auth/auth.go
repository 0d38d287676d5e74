// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package auth implements the "auth" command group.
package auth

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/auth/authlogin"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/auth/authlogout"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/auth/authstatus"
	"github.com/bufdev/allocctl/cmd/allocctl/internal/command/auth/authtoken"
)

// NewCommand returns a new auth command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Manage the Questrade access token",
		SubCommands: []*appcmd.Command{
			authlogin.NewCommand("login", builder),
			authlogout.NewCommand("logout", builder),
			authstatus.NewCommand("status", builder),
			authtoken.NewCommand("token", builder),
		},
	}
}
