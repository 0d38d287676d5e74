// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package authlogin implements the "auth login" command.
package authlogin

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/allocctl/internal/alloc/allocconfig"
	"github.com/bufdev/allocctl/internal/alloc/allocsession"
)

// NewCommand returns a new auth login command that prints the authorize URL.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Print the URL to authorize allocctl with Questrade",
		Long: `Print the URL to authorize allocctl with Questrade.

Open the URL in a browser and log in. Questrade redirects to the configured
redirect URI with the access token in the URL fragment. Copy the full URL
from the address bar and pass it to "allocctl auth token".`,
		Args: appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(_ context.Context, container appext.Container) error {
	config, err := allocconfig.ReadConfig(container.ConfigDirPath())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(
		container.Stdout(),
		allocsession.AuthorizeURL(config.QuestradeClientID, config.QuestradeRedirectURI),
	)
	return err
}
