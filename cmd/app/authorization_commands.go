package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/zkgate/cmd/app/commands"
	"github.com/allisson/zkgate/internal/app"
	"github.com/allisson/zkgate/internal/config"
)

func artifactFlags() []cli.Flag {
	return []cli.Flag{
		commitmentFlag(false),
		&cli.StringFlag{
			Name:    "proof",
			Aliases: []string{"p"},
			Usage:   "Path to proof.json (defaults to the artifact stored for --commitment)",
		},
		&cli.StringFlag{
			Name:    "verification-key",
			Aliases: []string{"k"},
			Usage:   "Path to verification.key (defaults to the artifact stored for --commitment)",
		},
		formatFlag(),
	}
}

func artifactSource(cmd *cli.Command) commands.ArtifactSource {
	return commands.ArtifactSource{
		ProofPath:           cmd.String("proof"),
		VerificationKeyPath: cmd.String("verification-key"),
		Commitment:          cmd.String("commitment"),
	}
}

func getAuthorizationCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "authorize",
			Usage: "Check a proof against the credential store without dispatching",
			Flags: artifactFlags(),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				gateUseCase, err := container.GateUseCase()
				if err != nil {
					return err
				}

				artifactStore, err := container.ArtifactStore()
				if err != nil {
					return err
				}

				return commands.RunAuthorize(
					ctx,
					gateUseCase,
					artifactStore,
					container.Logger(),
					artifactSource(cmd),
					cmd.String("format"),
					commands.DefaultIO().Writer,
				)
			},
		},
		{
			Name:  "execute",
			Usage: "Authorize a proof and post a message on the delegator's behalf",
			Flags: append(artifactFlags(),
				&cli.StringFlag{
					Name:     "channel",
					Required: true,
					Usage:    "Destination channel",
				},
				&cli.StringFlag{
					Name:     "message",
					Aliases:  []string{"m"},
					Required: true,
					Usage:    "Message text",
				},
			),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				executeUseCase, err := container.ExecuteUseCase()
				if err != nil {
					return err
				}

				artifactStore, err := container.ArtifactStore()
				if err != nil {
					return err
				}

				return commands.RunExecute(
					ctx,
					executeUseCase,
					artifactStore,
					container.Logger(),
					artifactSource(cmd),
					cmd.String("channel"),
					cmd.String("message"),
					cmd.String("format"),
					commands.DefaultIO().Writer,
				)
			},
		},
	}
}
