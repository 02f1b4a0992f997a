package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check server health",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := api.Health(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(status)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show realtime session statistics",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := api.Stats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(stats)
			return nil
		}

		fmt.Printf("Bus subscribers:   %d\n", stats.BusSubscribers)
		fmt.Printf("Active sessions:   %d\n", stats.ActiveSessions)
		fmt.Printf("Lifetime sessions: %d\n", stats.LifetimeSessions)
		fmt.Printf("Events sent:       %d\n", stats.TotalEventsSent)
		fmt.Printf("Events dropped:    %d\n", stats.TotalEventsDropped)
		if len(stats.Sessions) > 0 {
			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tKIND\tUPTIME\tSENT\tDROPPED")
			for _, s := range stats.Sessions {
				fmt.Fprintf(w, "%s\t%s\t%.0fs\t%d\t%d\n",
					s.SessionID, s.Kind, s.UptimeSecs, s.EventsSent, s.EventsDropped)
			}
			w.Flush()
		}
		return nil
	},
}
