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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trovemarket/settle"
	"github.com/trovemarket/settle/config"
	"github.com/trovemarket/settle/database"
	"github.com/trovemarket/settle/internal/notification"
)

// Settle represents the CLI application, encapsulating the root Cobra command.
type Settle struct {
	cmd *cobra.Command
}

// settleInstance holds the runtime Settle instance and its configuration,
// shared by every subcommand.
type settleInstance struct {
	settle *settle.Settle
	cnf    *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the Settle instance before
// running any command.
func preRun(app *settleInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("settle.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newSettle, err := setupSettle(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.settle = newSettle
		app.cnf = cnf

		return nil
	}
}

// setupSettle creates and initializes a new Settle instance backed by the
// configured data source.
func setupSettle(cfg *config.Configuration) (*settle.Settle, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newSettle, err := settle.NewSettle(db)
	if err != nil {
		return nil, fmt.Errorf("error creating settle: %v", err)
	}
	return newSettle, nil
}

// NewCLI creates the command-line interface for the settlement engine.
func NewCLI() *Settle {
	var configFile string
	b := &settleInstance{}

	var rootCmd = &cobra.Command{
		Use:   "settle",
		Short: "Marketplace commission and payout settlement engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./settle.json", "Configuration file for the settlement engine")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(configCommands())

	return &Settle{cmd: rootCmd}
}

func (w Settle) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
