// Package main provides the advisor server entry point.
package main

import (
	"context"
	"time"

	"github.com/hivelab/hive-advisor-go/internal/logger"
	"github.com/hivelab/hive-advisor-go/internal/retrieval"
	"github.com/hivelab/hive-advisor-go/internal/storage"
	"github.com/hivelab/hive-advisor-go/internal/warmup"
)

const reindexInterval = 12 * time.Hour

// reindexPeriodically rebuilds the retrieval indexes from the catalog
// database, picking up any rows written since the last build.
func reindexPeriodically(ctx context.Context, db *storage.DB, structure, details *retrieval.KeywordStore, log *logger.Logger) {
	ticker := time.NewTicker(reindexInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := warmup.Run(ctx, db, structure, details, log); err != nil {
				log.WithError(err).Error("Periodic index rebuild failed")
			}
		}
	}
}
