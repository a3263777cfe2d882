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
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/trovemarket/settle/config"
	"github.com/trovemarket/settle/database"
	redis_db "github.com/trovemarket/settle/internal/redis-db"
	"github.com/trovemarket/settle/valuation"
)

// Settle represents the main struct for the settlement engine. It wires the
// datasource, the Redis client used for seller locks, the task queue and the
// buyback valuation engine.
type Settle struct {
	queue      *Queue
	redis      redis.UniversalClient
	datasource database.IDataSource
	valuation  *valuation.Engine
}

// NewSettle initializes a new instance of Settle with the provided database
// datasource. It fetches the configuration and initializes the Redis client,
// the queue and the valuation engine.
func NewSettle(db database.IDataSource) (*Settle, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)})
	if err != nil {
		return nil, err
	}
	newQueue := NewQueue(configuration)
	engine := valuation.NewEngine(configuration.Valuation)

	return &Settle{
		datasource: db,
		queue:      newQueue,
		redis:      redisClient.Client(),
		valuation:  engine,
	}, nil
}

// NewSettleWithDeps wires a Settle from pre-built dependencies. Used by
// tests and embedded deployments that manage their own connections. The
// valuation engine is always constructed; without a configured provider it
// serves rule-based fallback estimates.
func NewSettleWithDeps(db database.IDataSource, redisClient redis.UniversalClient) *Settle {
	var valuationConf config.ValuationConfig
	if cfg, err := config.Fetch(); err == nil {
		valuationConf = cfg.Valuation
	}
	return &Settle{
		datasource: db,
		redis:      redisClient,
		valuation:  valuation.NewEngine(valuationConf),
	}
}

// Valuation exposes the buyback valuation engine.
func (s *Settle) Valuation() *valuation.Engine {
	return s.valuation
}
