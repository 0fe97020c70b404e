// Command mpcsign generates test key shares, runs threshold ECDSA signing between
// local parties and verifies the resulting signatures.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	keyDir  string
	verbose bool

	log zerolog.Logger

	rootCmd = &cobra.Command{
		Use:   "mpcsign",
		Short: "Threshold ECDSA signing with the CMP protocol",
		PersistentPreRun: func(*cobra.Command, []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&keyDir, "dir", "d", "./mpcsign-keys", "directory holding one configuration file per party")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every round")

	rootCmd.AddCommand(fixtureCmd, signCmd, verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
