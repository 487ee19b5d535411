package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/stationmaster/internal/switchlist"
)

func newSwitchListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "switchlist <train-id>",
		Short: "Generate the switch list for a planned train",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			t, stats, err := switchlist.Generate(gormDB, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Train %s (%s) is now %s\n", t.ID, t.Name, t.Status)
			fmt.Fprintf(out, "Stations served: %d, cars assigned: %d\n",
				stats.StationsServed, stats.CarsAssigned)

			list, err := t.SwitchList()
			if err != nil {
				return err
			}
			for _, visit := range list.Stops {
				if len(visit.Pickups) == 0 && len(visit.Setouts) == 0 {
					continue
				}
				fmt.Fprintf(out, "%s:\n", visit.StationName)
				for _, p := range visit.Pickups {
					fmt.Fprintf(out, "  pick up %s %s (%s) for %s\n",
						p.CarReportingMarks, p.CarReportingNumber, p.CarType, p.DestinationIndustryName)
				}
				for _, s := range visit.Setouts {
					fmt.Fprintf(out, "  set out %s at %s\n", s.CarID, s.DestinationIndustryName)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to Stationmaster config file")
	return cmd
}
