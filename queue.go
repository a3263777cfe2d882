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

package settle

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/trovemarket/settle/config"
	redis_db "github.com/trovemarket/settle/internal/redis-db"
)

// Queue represents the task queue used to hand payout runs to the worker
// process.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// PayoutRunPayload is the body of a queued payout-run task.
type PayoutRunPayload struct {
	RequestedAt time.Time `json:"requested_at"`
	RequestedBy string    `json:"requested_by,omitempty"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// QueuePayoutRun enqueues one payout-run task for the worker process. The
// task ID keys on the requested minute so repeated triggers inside the same
// minute collapse into one run.
func (s *Settle) QueuePayoutRun(requestedBy string) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload := PayoutRunPayload{RequestedAt: time.Now(), RequestedBy: requestedBy}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	taskOptions := []asynq.Option{
		asynq.TaskID("payout_run:" + payload.RequestedAt.Format("200601021504")),
		asynq.Queue(cfg.Queue.PayoutRunQueue),
	}
	task := asynq.NewTask(cfg.Queue.PayoutRunQueue, body, taskOptions...)
	info, err := s.queue.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued payout run: %+v", info.ID)
	return nil
}
