/*
Copyright 2025 Trove Market Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/trovemarket/settle"
	"github.com/trovemarket/settle/config"
	redis_db "github.com/trovemarket/settle/internal/redis-db"
)

// processPayoutRun executes one automated payout sweep received from the
// Redis queue. Per-seller failures are recorded inside the run summary and
// never fail the task; only infrastructure errors trigger an asynq retry.
func (b *settleInstance) processPayoutRun(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("settle.payouts.worker").Start(ctx, "Process Payout Run From Redis Queue")
	defer span.End()

	var payload settle.PayoutRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	summary, err := b.settle.ProcessAutomatedPayouts(ctx)
	if err != nil {
		logrus.Errorf("Payout run pushed back for retry due to error: %v", err)
		return err
	}

	log.Printf(" [*] Payout Run Processed: %d sellers, %d successful, %d failed",
		summary.TotalSellers, summary.Successful, summary.Failed)
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.PayoutRunQueue] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisOption.Addr,
			Password: redisOption.Password,
			DB:       redisOption.DB,
		},
		asynq.Config{
			// Payout runs must not overlap; the per-seller lock is a
			// second line of defense, not the first.
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(b *settleInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	mux.HandleFunc(cfg.Queue.PayoutRunQueue, b.processPayoutRun)
}

// workerCommands defines the "workers" command to start the payout-run
// worker process.
func workerCommands(b *settleInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start settle workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(b, mux)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
