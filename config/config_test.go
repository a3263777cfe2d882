package config

import (
	"encoding/json"
	"os"
	"testing"
)

func TestValidateAndAddDefaults(t *testing.T) {
	cnf := Configuration{
		DataSource: DataSourceConfig{Dns: ""},
		Redis:      RedisConfig{Dns: "localhost:6379"},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "data source DNS is required" {
		t.Errorf("Expected data source DNS required error, got %v", err)
	}

	cnf = Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432"},
		Redis:      RedisConfig{Dns: ""},
	}

	err = cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "redis DNS is required" {
		t.Errorf("Expected redis DNS required error, got %v", err)
	}

	cnf = Configuration{
		ProjectName: "Test Project",
		DataSource:  DataSourceConfig{Dns: "some-dns"},
		Redis:       RedisConfig{Dns: "localhost:6379"},
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if cnf.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port %s, got %s", DEFAULT_PORT, cnf.Server.Port)
	}
	if cnf.Payout.ProcessingFeeRate != "2.9" {
		t.Errorf("Expected default processing fee rate 2.9, got %s", cnf.Payout.ProcessingFeeRate)
	}
	if cnf.Payout.DefaultCommissionRate != "10.00" {
		t.Errorf("Expected default commission rate 10.00, got %s", cnf.Payout.DefaultCommissionRate)
	}
	if cnf.Payout.MinimumPayoutAmount != "50.00" {
		t.Errorf("Expected default minimum payout 50.00, got %s", cnf.Payout.MinimumPayoutAmount)
	}
	if cnf.Payout.HoldingPeriodDays != 7 {
		t.Errorf("Expected default holding period 7, got %d", cnf.Payout.HoldingPeriodDays)
	}
	if cnf.Payout.DefaultPaymentMethod != "stripe" {
		t.Errorf("Expected default payment method stripe, got %s", cnf.Payout.DefaultPaymentMethod)
	}
	if cnf.Valuation.TimeoutSec != 15 {
		t.Errorf("Expected default valuation timeout 15, got %d", cnf.Valuation.TimeoutSec)
	}
	if cnf.Queue.PayoutRunQueue != "payout_run" {
		t.Errorf("Expected default payout run queue name, got %s", cnf.Queue.PayoutRunQueue)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "settle.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	sampleConfig := Configuration{
		ProjectName: "Temp Project",
		DataSource:  DataSourceConfig{Dns: "temp-dns"},
		Redis:       RedisConfig{Dns: "localhost:6379"},
		Payout: PayoutConfig{
			ProcessingFeeRate: "3.4",
		},
	}
	if err := json.NewEncoder(tmpFile).Encode(sampleConfig); err != nil {
		t.Fatalf("Unable to write to temporary file: %v", err)
	}
	tmpFile.Close()

	if err := loadConfigFromFile(tmpFile.Name()); err != nil {
		t.Fatalf("loadConfigFromFile returned error: %v", err)
	}

	loaded, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if loaded.ProjectName != "Temp Project" {
		t.Errorf("Expected project name from file, got %s", loaded.ProjectName)
	}
	if loaded.Payout.ProcessingFeeRate != "3.4" {
		t.Errorf("Configured fee rate should survive defaulting, got %s", loaded.Payout.ProcessingFeeRate)
	}
	if loaded.Payout.HoldingPeriodDays != 7 {
		t.Errorf("Unset holding period should default to 7, got %d", loaded.Payout.HoldingPeriodDays)
	}
}
