// wiredump decodes a wirebuf payload against a field layout and prints each
// field with the offset it was decoded from.
//
//	wiredump --layout int32,string,vector payload.bin
//	wiredump --layout i32 --hex 39300000
package main

import (
	"encoding/hex"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/simworld/wirebuf/wiredump"
)

var (
	hexInput string
	layout   string
)

var rootCmd = &cobra.Command{
	Use:   "wiredump [file]",
	Short: "decode a wirebuf payload against a field layout",
	Long: `wiredump reads a binary payload from a file or a --hex string and decodes
it against the field layout given with --layout, printing every field with
the offset it was decoded from. The wire format is schemaless, so the layout
has to come from whoever defined the message.`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&hexInput, "hex", "", "payload as a hex string instead of a file")
	rootCmd.Flags().StringVarP(&layout, "layout", "l", "", "comma separated field kinds, e.g. int32,string,vector")
	rootCmd.MarkFlagRequired("layout")
}

func run(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	switch {
	case hexInput != "":
		data, err = hex.DecodeString(strings.TrimSpace(hexInput))
		if err != nil {
			return errors.Wrap(err, "decoding --hex payload")
		}
	case len(args) == 1:
		data, err = os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "reading payload file")
		}
	default:
		return errors.New("need a payload file or --hex")
	}

	types, err := wiredump.ParseLayout(layout)
	if err != nil {
		return err
	}

	report, err := wiredump.Dump(data, types)
	if err != nil {
		return err
	}

	return report.Write(os.Stdout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
