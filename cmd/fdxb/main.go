package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "fdxb",
	Short:         "Decode FDX-B animal identification telegrams",
	Long:          "fdxb demodulates and decodes ISO 11784/11785 FDX-B transponder captures, and can synthesize captures for testing.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("exited program")
	}
}
