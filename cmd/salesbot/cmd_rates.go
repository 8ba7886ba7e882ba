package main

import (
	"fmt"
	"sort"

	"github.com/6529-Collections/salesbot/internal/config"
	"github.com/6529-Collections/salesbot/pkg/sales"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func NewRatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Fetch and print the current fiat rates once",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := newRateSource(config.Get())
			if err != nil {
				return err
			}
			table, err := source.FetchRates(cmd.Context())
			if err != nil {
				return err
			}
			printRates(cmd, table)
			return nil
		},
	}
}

func printRates(cmd *cobra.Command, table models.RateTable) {
	currencies := lo.Keys(table)
	sort.Strings(currencies)
	for _, currency := range currencies {
		fmt.Fprintf(cmd.OutOrStdout(), "1 %s = %s\n", models.NativeSymbol, sales.FormatFiat(table[currency], currency))
	}
}
