package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cresol/hub-api/internal/config"
	"github.com/cresol/hub-api/internal/pkg/database"
	"github.com/cresol/hub-api/internal/pkg/retry"
	"github.com/cresol/hub-api/internal/pkg/storage"
)

func newSweepStorageCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-storage",
		Short: "Retry queued removals of orphaned storage objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			rdb, err := database.NewRedis(c.RedisURL)
			if err != nil {
				return err
			}
			defer database.CloseRedis(rdb)

			store, err := storage.Open(cmd.Context(), c.StorageDriver, c.S3(), c.StorageLocalPath)
			if err != nil {
				return err
			}
			queue := storage.NewRedisQueue(rdb)

			removed, err := storage.NewSweeper(store, queue, retry.Default).RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			left, err := queue.Len(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d object(s), %d still queued\n", removed, left)
			return nil
		},
	}
}
