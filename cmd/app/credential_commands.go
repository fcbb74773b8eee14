package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/zkgate/cmd/app/commands"
	"github.com/allisson/zkgate/internal/app"
	"github.com/allisson/zkgate/internal/config"
)

func commitmentFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "commitment",
		Aliases:  []string{"c"},
		Required: required,
		Usage:    "Commitment as 0x-prefixed hex or decimal field element",
	}
}

func getCredentialCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-credential",
			Usage: "Bind a delegation record to the commitment of a secret",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "secret",
					Aliases: []string{"s"},
					Usage:   "Secret field element (omit to generate one)",
				},
				&cli.StringFlag{
					Name:    "action",
					Aliases: []string{"a"},
					Value:   "post_message",
					Usage:   "Permitted action",
				},
				&cli.StringFlag{
					Name:     "token-identifier",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Name of the downstream token the action uses (e.g., tokenA)",
				},
				&cli.StringFlag{
					Name:     "issuer",
					Required: true,
					Usage:    "Identity of the delegator",
				},
				&cli.StringFlag{
					Name:     "subject",
					Required: true,
					Usage:    "Identity of the delegatee",
				},
				&cli.StringFlag{
					Name:     "target",
					Required: true,
					Usage:    "Identity of the service acted upon",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				issuerUseCase, err := container.IssuerUseCase()
				if err != nil {
					return err
				}

				return commands.RunIssueCredential(
					ctx,
					issuerUseCase,
					container.Logger(),
					commands.IssueCredentialParams{
						Secret:          cmd.String("secret"),
						Action:          cmd.String("action"),
						TokenIdentifier: cmd.String("token-identifier"),
						IssuerIdentity:  cmd.String("issuer"),
						SubjectIdentity: cmd.String("subject"),
						TargetIdentity:  cmd.String("target"),
					},
					cmd.String("format"),
					commands.DefaultIO().Writer,
				)
			},
		},
		{
			Name:  "show-credential",
			Usage: "Show the delegation record stored for a commitment",
			Flags: []cli.Flag{commitmentFlag(true), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				issuerUseCase, err := container.IssuerUseCase()
				if err != nil {
					return err
				}

				return commands.RunShowCredential(
					ctx,
					issuerUseCase,
					container.Logger(),
					cmd.String("commitment"),
					cmd.String("format"),
					commands.DefaultIO().Writer,
				)
			},
		},
		{
			Name:  "prove",
			Usage: "Generate a proof for the secret held under a commitment",
			Flags: []cli.Flag{
				commitmentFlag(true),
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "Write the proof to this file instead of stdout",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				proveUseCase, err := container.ProveUseCase()
				if err != nil {
					return err
				}

				return commands.RunProve(
					ctx,
					proveUseCase,
					container.Logger(),
					cmd.String("commitment"),
					cmd.String("output"),
					commands.DefaultIO().Writer,
				)
			},
		},
	}
}
