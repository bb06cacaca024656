package main

import (
	"fmt"
	"io"
	"os"

	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/norasector/fdxb/pkg/fdxb/synth"
	"github.com/norasector/fdxb/pkg/reader/config"
	"github.com/norasector/fdxb/pkg/reader/source/file"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const simulateLeadIn = 1000

type simulateFlags struct {
	tag        synth.Telegram
	repeat     int
	sampleRate int
	format     string
	out        string
	channel    uint
}

var simulateOpts simulateFlags

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Write a synthetic capture of one tag",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulate(simulateOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := simulateCmd.Flags()
	f.Uint16Var(&simulateOpts.tag.CountryCode, "country", 999, "ISO 3166 country code, or 900-999 for manufacturer codes")
	f.Uint64Var(&simulateOpts.tag.NationalCode, "national", 0, "national identification code")
	f.BoolVar(&simulateOpts.tag.DataBlock, "data-block", false, "append the application data block")
	f.Uint32Var(&simulateOpts.tag.ApplicationData, "app-data", 0, "application data, sent when --data-block is set")
	f.BoolVar(&simulateOpts.tag.AnimalApplication, "animal", true, "set the animal application flag")
	f.IntVar(&simulateOpts.repeat, "repeat", 1, "number of telegrams to send")
	f.IntVar(&simulateOpts.sampleRate, "sample-rate", 1000000, "capture sample rate in Hz")
	f.StringVar(&simulateOpts.format, "format", config.SourceTypeEdges, "capture format: edges or logic")
	f.StringVarP(&simulateOpts.out, "out", "o", "-", "output file, - for stdout")
	f.UintVar(&simulateOpts.channel, "channel", 0, "logic channel to place the data line on")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(flags simulateFlags, stdout io.Writer) error {
	if flags.repeat < 1 {
		return fmt.Errorf("repeat must be at least 1: %d", flags.repeat)
	}
	if flags.sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive: %d", flags.sampleRate)
	}
	if flags.channel > 7 {
		return fmt.Errorf("logic channel %d out of range 0-7", flags.channel)
	}

	edges := synth.Edges(flags.tag.Repeat(flags.repeat), flags.sampleRate, simulateLeadIn)

	w := stdout
	if flags.out != "-" {
		f, err := os.Create(flags.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	var err error
	switch flags.format {
	case config.SourceTypeEdges:
		err = file.WriteEdges(w, flags.sampleRate, edges)
	case config.SourceTypeLogic:
		_, err = w.Write(synth.LogicSamples(edges, flags.channel, simulateLeadIn))
	default:
		return fmt.Errorf("unknown capture format %q", flags.format)
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("tag_id", fdxb.FormatTagID(flags.tag.CountryCode, flags.tag.NationalCode)).
		Str("crc", fdxb.HexString(flags.tag.Checksum())).
		Int("telegrams", flags.repeat).
		Int("edges", len(edges)).
		Msg("capture written")
	return nil
}
