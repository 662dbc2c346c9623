package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.hostcheck.dev/tld"
)

var check = &cobra.Command{
	Use:   "check <name> [name...]",
	Short: "check domain names against the acceptance table",
	Args:  cobra.MinimumNArgs(1),
	RunE:  checkExec,
}

func init() {
	check.Flags().StringP(
		"intent",
		"i",
		"either",
		"acceptance category to test (host, mail, either)",
	)
	viper.BindPFlag("check.intent", check.Flags().Lookup("intent"))

	root.AddCommand(check)
}

func checkExec(cmd *cobra.Command, args []string) error {
	want, err := tld.ParseFlags(viper.GetString("check.intent"))
	if err != nil {
		return err
	}

	f, err := os.Open(viper.GetString("table"))
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := tld.Decode(f)
	if err != nil {
		return err
	}

	rejected := 0
	for _, name := range args {
		// Full names are reduced to their top-level label; a bare
		// label passes through unchanged.
		label := strings.TrimSuffix(name, ".")
		label = label[strings.LastIndexByte(label, '.')+1:]

		ok := table.Match(label, want)
		if !ok {
			rejected++
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %t\n", name, ok)
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d names rejected", rejected, len(args))
	}

	return nil
}
