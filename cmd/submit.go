package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Exidekat/mechgen-ui/internal/client"
	"github.com/urfave/cli/v3"
)

func submitCmd() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "Submit a dataset for compression",
		ArgsUsage: "<namespace/name>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "MechGen API base URL",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("MG_SERVER_URL"),
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Poll job status until the job reaches a terminal state",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Poll interval when watching",
				Value: 2 * time.Second,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			externalID := cmd.Args().First()
			if externalID == "" {
				return fmt.Errorf("dataset id is required (e.g. mechgen submit acme/demo)")
			}

			c := client.New(cmd.String("server"))
			sub, err := c.SubmitDataset(ctx, externalID)
			if err != nil {
				return err
			}

			fmt.Printf("dataset %s  job %s\n", sub.Dataset.ExternalID, sub.Job.ID)

			if !cmd.Bool("watch") {
				return nil
			}

			job, err := c.PollUntilDone(ctx, sub.Job.ID, cmd.Duration("interval"), func(j client.Job) {
				fmt.Printf("  %-10s %3d%%  %s\n", j.Status, j.Progress, j.CurrentStep)
			})
			if err != nil {
				return err
			}

			if job.Status == "failed" {
				return fmt.Errorf("job failed: %s", job.ErrorMessage)
			}
			fmt.Printf("job %s completed\n", job.ID)
			return nil
		},
	}
}
