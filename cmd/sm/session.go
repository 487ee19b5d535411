package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/stationmaster/internal/session"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Operating session lifecycle commands",
	}

	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionAdvanceCmd())
	cmd.AddCommand(newSessionRollbackCmd())
	cmd.AddCommand(newSessionDescribeCmd())
	return cmd
}

func newSessionShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current operating session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			sess, err := session.Current(gormDB)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Operating Session %d\n", sess.CurrentSessionNumber)
			fmt.Fprintf(out, "Description: %s\n", sess.Description)
			fmt.Fprintf(out, "Date: %s\n", sess.SessionDate.Format("2006-01-02 15:04"))
			if sess.PreviousSnapshot != nil {
				fmt.Fprintln(out, "Rollback available")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to Stationmaster config file")
	return cmd
}

func newSessionAdvanceCmd() *cobra.Command {
	var (
		configPath  string
		description string
	)

	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Advance to the next operating session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			sess, stats, err := session.Advance(gormDB, description)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Advanced to Operating Session %d\n", sess.CurrentSessionNumber)
			fmt.Fprintf(out, "Completed trains deleted: %d, active trains reverted: %d, cars aged: %d\n",
				stats.TrainsDeleted, stats.ActiveTrainsReverted, stats.CarsUpdated)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to Stationmaster config file")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description for the new session")
	return cmd
}

func newSessionRollbackCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Undo the most recent session advance",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			sess, stats, err := session.Rollback(gormDB)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rolled back to Operating Session %d\n", sess.CurrentSessionNumber)
			fmt.Fprintf(out, "Restored %d cars, %d trains, %d car orders\n",
				stats.CarsRestored, stats.TrainsRestored, stats.CarOrdersRestored)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to Stationmaster config file")
	return cmd
}

func newSessionDescribeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "describe <text>",
		Short: "Update the current session description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			sess, err := session.UpdateDescription(gormDB, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %d description updated\n", sess.CurrentSessionNumber)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to Stationmaster config file")
	return cmd
}
