package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khabargraph/backend/internal/util"
	"github.com/khabargraph/backend/pkg/logger"
	"github.com/khabargraph/backend/pkg/logger/console"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Khabargraph batch pipeline",
	Long:  "Runs the narrative, triples and export stages directly against the database, or submits them as worker jobs.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		util.LoadEnv()
		debug := util.GetEnvBool("DEBUG", false)
		consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
			Debug: debug,
		})
		logger.Init(consoleLogger)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openPool connects to Postgres and verifies the connection, retrying
// briefly so the binary survives a database that is still starting up.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = util.RetryErrWithContext(ctx, 5, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			time.Sleep(2 * time.Second)
			return err
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("database not reachable: %w", err)
	}

	return pool, nil
}

// readJSONFile decodes the JSON file at path into dst.
func readJSONFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
