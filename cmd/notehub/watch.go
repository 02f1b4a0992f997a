package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream note changes as they happen",
	GroupID: "notes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		events, cancel, err := api.Watch(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return fmt.Errorf("connection closed")
				}
				if jsonOutput {
					data, err := json.Marshal(ev)
					if err != nil {
						continue
					}
					fmt.Println(string(data))
				} else {
					printChangeEvent(ev)
				}
			}
		}
	},
}
