package client

import (
	"context"
	"time"
)

func terminal(status string) bool {
	return status == "completed" || status == "failed"
}

// PollUntilDone polls job status at a fixed interval until the job reaches
// a terminal state. onUpdate, if non-nil, is called whenever progress,
// status or step changes. Status reads are side-effect free on the server
// so short intervals are safe.
func (c *Client) PollUntilDone(ctx context.Context, jobID string, interval time.Duration, onUpdate func(Job)) (Job, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	var last Job
	seen := false

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := c.GetJob(ctx, jobID)
		if err != nil {
			return Job{}, err
		}

		if onUpdate != nil {
			changed := !seen || job.Status != last.Status ||
				job.Progress != last.Progress || job.CurrentStep != last.CurrentStep
			if changed {
				onUpdate(job)
			}
		}
		last, seen = job, true

		if terminal(job.Status) {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}
