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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5401"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"SETTLE_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"SETTLE_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"SETTLE_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"SETTLE_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"SETTLE_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"SETTLE_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"SETTLE_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"SETTLE_REDIS_DNS"`
}

// ValuationConfig points at the external AI valuation provider. The timeout
// bounds the provider call; past it the fallback estimate is used.
type ValuationConfig struct {
	BaseURL    string `json:"base_url" envconfig:"SETTLE_VALUATION_BASE_URL"`
	APIKey     string `json:"api_key" envconfig:"SETTLE_VALUATION_API_KEY"`
	Model      string `json:"model" envconfig:"SETTLE_VALUATION_MODEL"`
	TimeoutSec int    `json:"timeout_sec" envconfig:"SETTLE_VALUATION_TIMEOUT_SEC"`
	MaxRetries int    `json:"max_retries" envconfig:"SETTLE_VALUATION_MAX_RETRIES"`
}

// PayoutConfig carries the settlement business rules. The processing fee
// rate lives here rather than in code so payment-provider pricing changes
// do not require a release.
type PayoutConfig struct {
	DefaultCommissionRate string `json:"default_commission_rate" envconfig:"SETTLE_PAYOUT_DEFAULT_COMMISSION_RATE"`
	ProcessingFeeRate     string `json:"processing_fee_rate" envconfig:"SETTLE_PAYOUT_PROCESSING_FEE_RATE"`
	MinimumPayoutAmount   string `json:"minimum_payout_amount" envconfig:"SETTLE_PAYOUT_MINIMUM_AMOUNT"`
	HoldingPeriodDays     int    `json:"holding_period_days" envconfig:"SETTLE_PAYOUT_HOLDING_PERIOD_DAYS"`
	DefaultPaymentMethod  string `json:"default_payment_method" envconfig:"SETTLE_PAYOUT_DEFAULT_PAYMENT_METHOD"`
}

type QueueConfig struct {
	PayoutRunQueue string `json:"payout_run_queue" envconfig:"SETTLE_QUEUE_PAYOUT_RUN"`
	NumberOfQueues int    `json:"number_of_queues" envconfig:"SETTLE_QUEUE_NUMBER_OF_QUEUES"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"SETTLE_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"SETTLE_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"SETTLE_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"SETTLE_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Valuation    ValuationConfig  `json:"valuation"`
	Payout       PayoutConfig     `json:"payout"`
	Queue        QueueConfig      `json:"queue"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("settle", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called settle.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Settle Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Payout.DefaultCommissionRate == "" {
		cnf.Payout.DefaultCommissionRate = "10.00"
	}
	if cnf.Payout.ProcessingFeeRate == "" {
		cnf.Payout.ProcessingFeeRate = "2.9"
	}
	if cnf.Payout.MinimumPayoutAmount == "" {
		cnf.Payout.MinimumPayoutAmount = "50.00"
	}
	if cnf.Payout.HoldingPeriodDays <= 0 {
		cnf.Payout.HoldingPeriodDays = 7
	}
	if cnf.Payout.DefaultPaymentMethod == "" {
		cnf.Payout.DefaultPaymentMethod = "stripe"
	}

	if cnf.Valuation.TimeoutSec <= 0 {
		cnf.Valuation.TimeoutSec = 15
	}
	if cnf.Valuation.MaxRetries <= 0 {
		cnf.Valuation.MaxRetries = 2
	}

	if cnf.Queue.PayoutRunQueue == "" {
		cnf.Queue.PayoutRunQueue = "payout_run"
	}
	if cnf.Queue.NumberOfQueues <= 0 {
		cnf.Queue.NumberOfQueues = 1
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if err := mockConfig.validateAndAddDefaults(); err != nil {
		log.Println(err)
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
