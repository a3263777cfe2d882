package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/trovemarket/settle/cache"
	"github.com/trovemarket/settle/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		newCache, errCache := cache.NewCache()
		if errCache != nil {
			log.Printf("cache initialization failed, continuing without cache: %v", errCache)
			newCache = nil
		}
		instance = &Datasource{Conn: con, Cache: newCache}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createSchema(db)
	if err != nil {
		return nil, err
	}
	err = createPayoutTable(db)
	if err != nil {
		return nil, err
	}
	err = createCommissionTable(db)
	if err != nil {
		return nil, err
	}
	err = createPayoutSettingsTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS settle`)
	return err
}

// createCommissionTable creates a PostgreSQL table for the Commission struct
func createCommissionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settle.commissions (
			id SERIAL PRIMARY KEY,
			commission_id TEXT NOT NULL UNIQUE,
			order_id TEXT NOT NULL,
			product_id TEXT,
			seller_id TEXT NOT NULL,
			sale_price NUMERIC(20,2) NOT NULL,
			commission_rate NUMERIC(8,2) NOT NULL,
			commission_amount NUMERIC(20,2) NOT NULL,
			seller_amount NUMERIC(20,2) NOT NULL,
			processing_fee NUMERIC(20,2) NOT NULL,
			net_seller_amount NUMERIC(20,2) NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'processing', 'paid')),
			payout_id TEXT REFERENCES settle.payouts(payout_id),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	if err != nil {
		log.Printf("Error creating commissions table: %v", err)
		return err
	}
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_commissions_seller_status
		ON settle.commissions (seller_id, status, created_at)
	`)
	log.Println(err)
	return err
}

// createPayoutTable creates a PostgreSQL table for the Payout struct
func createPayoutTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settle.payouts (
			id SERIAL PRIMARY KEY,
			payout_id TEXT NOT NULL UNIQUE,
			seller_id TEXT NOT NULL,
			total_amount NUMERIC(20,2) NOT NULL,
			total_commissions INTEGER NOT NULL,
			payment_method TEXT NOT NULL CHECK (payment_method IN ('stripe', 'paypal')),
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'processing', 'completed', 'failed')),
			scheduled_date TIMESTAMP NOT NULL,
			processed_date TIMESTAMP,
			payment_reference TEXT,
			failure_reason TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	log.Println(err)
	return err
}

// createPayoutSettingsTable creates a PostgreSQL table for the PayoutSettings singleton
func createPayoutSettingsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settle.payout_settings (
			id SERIAL PRIMARY KEY,
			settings_id TEXT NOT NULL UNIQUE,
			auto_payout_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			minimum_payout_amount NUMERIC(20,2) NOT NULL,
			holding_period_days INTEGER NOT NULL,
			default_payment_method TEXT NOT NULL CHECK (default_payment_method IN ('stripe', 'paypal')),
			updated_by TEXT,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	log.Println(err)
	return err
}
