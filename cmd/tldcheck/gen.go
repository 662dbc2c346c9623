package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.hostcheck.dev/tld"
)

var gen = &cobra.Command{
	Use:   "gen",
	Short: "build the acceptance table artifact from the configured sources",
	RunE:  genExec,
}

func init() {
	gen.Flags().String(
		"iana",
		"",
		"path or url of a tlds-alpha-by-domain.txt list",
	)
	viper.BindPFlag("gen.iana", gen.Flags().Lookup("iana"))

	gen.Flags().String(
		"overlay",
		"",
		"path of a local overlay list",
	)
	viper.BindPFlag("gen.overlay", gen.Flags().Lookup("overlay"))

	gen.Flags().Bool(
		"idn",
		false,
		"keep punycode (xn--) labels",
	)
	viper.BindPFlag("gen.idn", gen.Flags().Lookup("idn"))

	root.AddCommand(gen)
}

func genExec(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := tld.ConfigLogger().Sugar()

	var srcs tld.Sources
	err := viper.UnmarshalKey("sources", &srcs)
	if err != nil {
		return err
	}

	if path := viper.GetString("gen.iana"); path != "" {
		loc := tld.Location{Path: path, Type: tld.LOC}
		if strings.HasPrefix(path, "http") {
			loc.Type = tld.REM
		}

		srcs = append(srcs, tld.Source{
			Location: loc,
			Type:     tld.IANA,
			Accept:   "either",
			SkipIDN:  !viper.GetBool("gen.idn"),
		})
	}

	if path := viper.GetString("gen.overlay"); path != "" {
		srcs = append(srcs, tld.Source{
			Location: tld.Location{Path: path, Type: tld.LOC},
			Type:     tld.OVERLAY,
			Accept:   "host",
		})
	}

	reg, err := tld.ReadSources(ctx, logger, srcs...)
	if err != nil {
		return err
	}

	table, err := reg.Table()
	if err != nil {
		return err
	}

	out, err := os.Create(viper.GetString("table"))
	if err != nil {
		return err
	}
	defer out.Close()

	err = table.Encode(out)
	if err != nil {
		return err
	}

	logger.Infow(
		"table written",
		"path", viper.GetString("table"),
		"labels", reg.Len(),
		"states", table.States(),
		"tokens", table.Tokens(),
	)

	return nil
}
