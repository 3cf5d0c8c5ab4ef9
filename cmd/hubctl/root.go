package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/cresol/hub-api/internal/config"
	"github.com/cresol/hub-api/internal/pkg/logger"
)

// newRootCmd builds the command tree. Output goes to out so tests can
// capture it.
func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "hubctl",
		Short: "Operator CLI for the Cresol Hub API",
		Long: `hubctl runs maintenance tasks with the same configuration as the API server.

Environment Variables:
  DATABASE_URL       PostgreSQL connection string
  MIGRATIONS_PATH    golang-migrate source (default: file://migrations)
  REDIS_URL          Redis connection string (orphan queue)
  STORAGE_DRIVER     local or s3`,
		SilenceUsage: true,
	}
	root.SetOut(out)

	var cfg *config.Config
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, Output: cmd.ErrOrStderr()})
	}
	loadConfig := func() *config.Config { return cfg }

	root.AddCommand(
		newMigrateCmd(loadConfig),
		newProfileCmd(loadConfig),
		newSetRoleCmd(loadConfig),
		newSweepStorageCmd(loadConfig),
		newYouTubeIDCmd(),
	)
	return root
}
