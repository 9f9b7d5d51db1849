package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/khabargraph/backend/internal/queue"
	"github.com/khabargraph/backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var submitPayloadPath string

var submitCmd = &cobra.Command{
	Use:   "submit <queue>",
	Short: "Submit a job payload to a worker queue",
	Long:  "Publishes the JSON payload to the named queue. A run_id is generated when the payload has none.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		queueName := args[0]
		if !slices.Contains(queue.Queues, queueName) {
			return fmt.Errorf("unknown queue %q, expected one of %v", queueName, queue.Queues)
		}

		data, err := os.ReadFile(submitPayloadPath)
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}

		payload := map[string]json.RawMessage{}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("failed to decode payload: %w", err)
		}

		runID := ""
		if raw, ok := payload["run_id"]; ok {
			if err := json.Unmarshal(raw, &runID); err != nil {
				return fmt.Errorf("payload run_id is not a string: %w", err)
			}
		}
		if runID == "" {
			runID = uuid.NewString()
			payload["run_id"], _ = json.Marshal(runID)
			data, err = json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("failed to encode payload: %w", err)
			}
		}

		conn := queue.Init()
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("failed to open channel: %w", err)
		}
		defer ch.Close()

		if err := queue.Publish(ch, queueName, data); err != nil {
			return fmt.Errorf("failed to publish: %w", err)
		}

		logger.Info("Job submitted", "queue", queueName, "run_id", runID)
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitPayloadPath, "payload", "", "JSON payload file")
	submitCmd.MarkFlagRequired("payload")
	rootCmd.AddCommand(submitCmd)
}
