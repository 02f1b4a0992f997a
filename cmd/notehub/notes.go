package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func parseNoteID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", arg)
	}
	return id, nil
}

var createCmd = &cobra.Command{
	Use:     "create <title>",
	Short:   "Create a new note",
	GroupID: "notes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, _ := cmd.Flags().GetString("body")

		note, err := api.CreateNote(context.Background(), args[0], body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(note)
		} else {
			fmt.Printf("Created note %d (version %d)\n", note.ID, note.Version)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show details of a note",
	GroupID: "notes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}

		note, err := api.GetNote(context.Background(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(note)
		} else {
			printNote(note)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all notes",
	GroupID: "notes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := api.ListNotes(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(notes)
		} else {
			printNoteList(notes)
		}
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update a note's title or body",
	GroupID: "notes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}

		var title, body *string
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			title = &v
		}
		if cmd.Flags().Changed("body") {
			v, _ := cmd.Flags().GetString("body")
			body = &v
		}
		if title == nil && body == nil {
			return fmt.Errorf("nothing to update: pass --title or --body")
		}

		note, err := api.UpdateNote(context.Background(), id, title, body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(note)
		} else {
			fmt.Printf("Updated note %d (version %d)\n", note.ID, note.Version)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Short:   "Delete one or more notes",
	GroupID: "notes",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			id, err := parseNoteID(arg)
			if err != nil {
				return err
			}
			if err := api.DeleteNote(context.Background(), id); err != nil {
				fmt.Fprintf(os.Stderr, "Error deleting %d: %v\n", id, err)
				os.Exit(1)
			}
			fmt.Printf("Deleted note %d\n", id)
		}
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:     "events <id>",
	Short:   "Show the audit log for a note",
	GroupID: "notes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}

		events, err := api.GetNoteEvents(context.Background(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(events)
			return nil
		}
		for _, ev := range events {
			fmt.Printf("[%s] %s  %s\n", ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.Topic, ev.Payload)
		}
		fmt.Printf("\n%d events\n", len(events))
		return nil
	},
}

func init() {
	createCmd.Flags().String("body", "", "note body")
	updateCmd.Flags().String("title", "", "new title")
	updateCmd.Flags().String("body", "", "new body")
}
