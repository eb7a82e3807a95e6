// Package cli implements the learncorectl command-line interface: the
// admin/REST-style read projections and import/export commands named in
// spec §6, expressed as cobra verbs instead of HTTP routes (an explicit
// Non-goal; see SPEC_FULL.md §1). Grounded on the teacher's
// internal/cli/commands.go rootCmd/PersistentPreRun/Execute pattern.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tansive/learncore/internal/config"
	"github.com/tansive/learncore/internal/publishing"
	"github.com/tansive/learncore/internal/store"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/dbmanager"
	"github.com/tansive/learncore/internal/store/memstore"
	"github.com/tansive/learncore/internal/store/postgresql"
)

var (
	jsonOutput bool
	configFile string
	db         store.Database
	engine     *publishing.Engine
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

var rootCmd = &cobra.Command{
	Use:   "learncorectl [command] [flags]",
	Short: "learncorectl - manage learning packages, entities, and publishing",
	Long: `learncorectl is a command line interface for the content authoring and
publishing engine: learning packages, versioned entities, containers, and
the draft/publish lifecycle.

Examples:
  # Create a package
  learncorectl package create --key mypackage --title "My Package"

  # Publish every pending draft change
  learncorectl publish --package 1 --by alice

  # Show entities with unpublished changes
  learncorectl query unpublished --package 1`,
	PersistentPreRun: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPackageCmd())
	rootCmd.AddCommand(newEntityCmd())
	rootCmd.AddCommand(newContainerCmd())
	rootCmd.AddCommand(newPublishCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newQueryCmd())
}

// Execute adds all child commands to the root command and runs it. Called
// once by main.main.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(map[string]string{"error": err.Error()})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents wires up the storage backend before any
// subcommand runs: with --config pointing at a TOML file, it dials
// internal/store/postgresql against the configured DSN; otherwise it falls
// back to an in-process memstore, useful for quick local experimentation
// without a database (spec §6, SPEC_FULL.md ambient config section).
func preRunHandlePersistents(cmd *cobra.Command, args []string) {
	if cmd.Name() == "version" {
		return
	}
	if configFile != "" {
		if err := config.LoadConfig(configFile); err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		pool, err := dbmanager.New(config.Config().DSN())
		if err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		conn, err := pool.Conn(context.Background())
		if err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		db = postgresql.New(conn)
	} else {
		db = memstore.New()
	}
	engine = publishing.New(db)
	if err := engine.RegisterStandardKinds(context.Background()); err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the learncorectl version",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(map[string]string{"version": cliVersion})
			} else {
				cmd.Printf("learncorectl %s\n", cliVersion)
			}
		},
	}
}

const cliVersion = "v0.1.0-alpha.1"

func printJSON(data interface{}) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// retryOnConflict calls fn up to 3 times in total, retrying only on
// *Conflict* (spec §5:
// "collisions manifest as Conflict errors, which callers may retry after
// re-reading latest_version"), grounded on the teacher's keymanager
// retry.Do usage.
func retryOnConflict(fn func() error) error {
	return retry.Do(fn,
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool { return errors.Is(err, dberror.ErrConflict) }),
	)
}
