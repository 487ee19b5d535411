package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/stationmaster/internal/train"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train lifecycle commands",
	}

	cmd.AddCommand(newTrainCompleteCmd())
	cmd.AddCommand(newTrainCancelCmd())
	cmd.AddCommand(newTrainListCmd())
	return cmd
}

func newTrainCompleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "complete <train-id>",
		Short: "Complete an in-progress train, moving its cars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			t, stats, err := train.Complete(gormDB, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Train %s (%s) completed, %d cars moved\n",
				t.ID, t.Name, stats.CarsMoved)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to Stationmaster config file")
	return cmd
}

func newTrainCancelCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cancel <train-id>",
		Short: "Cancel a train, releasing its assigned orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			t, stats, err := train.Cancel(gormDB, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Train %s (%s) cancelled, %d orders reverted\n",
				t.ID, t.Name, stats.OrdersReverted)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to Stationmaster config file")
	return cmd
}

func newTrainListCmd() *cobra.Command {
	var (
		configPath string
		status     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trains",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			trains, err := train.List(gormDB, status, 0)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range trains {
				fmt.Fprintf(out, "%s  %-24s %-12s session %d\n", t.ID, t.Name, t.Status, t.SessionNumber)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to Stationmaster config file")
	cmd.Flags().StringVarP(&status, "status", "s", "", "filter by status")
	return cmd
}
