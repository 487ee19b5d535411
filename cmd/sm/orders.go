package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/zulandar/stationmaster/internal/orders"
)

func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Car order commands",
	}

	cmd.AddCommand(newOrdersGenerateCmd())
	return cmd
}

func newOrdersGenerateCmd() *cobra.Command {
	var (
		configPath    string
		sessionNumber int
		industryIDs   []string
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate pending car orders from industry demand",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			summary, err := orders.Generate(gormDB, orders.Opts{
				SessionNumber: sessionNumber,
				IndustryIDs:   industryIDs,
				Force:         force,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d orders across %d industries\n",
				summary.TotalOrdersGenerated, summary.IndustriesProcessed)
			for _, ind := range sortedKeys(summary.OrdersByIndustry) {
				fmt.Fprintf(out, "  %s: %d\n", ind, summary.OrdersByIndustry[ind])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to Stationmaster config file")
	cmd.Flags().IntVarP(&sessionNumber, "session", "s", 0, "target session number (default: current session)")
	cmd.Flags().StringSliceVarP(&industryIDs, "industry", "i", nil, "restrict generation to these industry ids")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "generate even when matching open orders exist")
	return cmd
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
