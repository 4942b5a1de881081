package logging

import (
	"context"

	"github.com/google/uuid"
)

// StartRun tags ctx with a fresh run ID so every log line of one analysis
// pass can be correlated, including in watch mode where passes repeat.
func StartRun(ctx context.Context) (context.Context, string) {
	runID := GetRunID(ctx)
	if runID == "" {
		runID = uuid.New().String()
	}
	return WithRunID(ctx, runID), runID
}
