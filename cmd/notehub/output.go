package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alderlake/notehub/internal/model"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// formatMillis renders a unix-millisecond timestamp in local time.
// Zero renders as an empty string.
func formatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}

func printNote(note *model.Note) {
	fmt.Printf("ID:       %d\n", note.ID)
	fmt.Printf("Title:    %s\n", note.Title)
	fmt.Printf("Version:  %d\n", note.Version)
	if note.Body != "" {
		fmt.Printf("Body:     %s\n", note.Body)
	}
	fmt.Printf("Created:  %s\n", formatMillis(note.CreatedAt))
	fmt.Printf("Updated:  %s\n", formatMillis(note.UpdatedAt))
}

func printNoteList(notes []*model.Note) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVERSION\tUPDATED\tTITLE")
	for _, n := range notes {
		title := n.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", n.ID, n.Version, formatMillis(n.UpdatedAt), title)
	}
	w.Flush()
	fmt.Printf("\n%d notes\n", len(notes))
}

func printChat(chat *model.Chat) {
	fmt.Printf("ID:       %d\n", chat.ID)
	fmt.Printf("Title:    %s\n", chat.Title)
	fmt.Printf("Created:  %s\n", formatMillis(chat.CreatedAt))
	fmt.Printf("Updated:  %s\n", formatMillis(chat.UpdatedAt))
}

func printChatList(chats []*model.Chat) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUPDATED\tTITLE")
	for _, c := range chats {
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, formatMillis(c.UpdatedAt), c.Title)
	}
	w.Flush()
	fmt.Printf("\n%d chats\n", len(chats))
}

func printMessage(msg *model.ChatMessage) {
	who := string(msg.Role)
	if msg.Integration != "" {
		who = fmt.Sprintf("%s (%s)", msg.Role, msg.Integration)
	}
	fmt.Printf("[%s] %s: %s\n", formatMillis(msg.CreatedAt), who, msg.Content)
}

// printChangeEvent renders one realtime change for the watch command.
func printChangeEvent(ev model.ChangeEvent) {
	switch ev.Kind {
	case model.ChangeCreated:
		fmt.Printf("created  note %d  v%d  %q\n", ev.NoteID, ev.Note.Version, ev.Note.Title)
	case model.ChangeUpdated:
		detail := ""
		if ev.Delta.Title != nil {
			detail += fmt.Sprintf("  title=%q", *ev.Delta.Title)
		}
		if ev.Delta.Body != nil {
			detail += "  body changed"
		}
		fmt.Printf("updated  note %d  v%d%s\n", ev.NoteID, ev.Delta.Version, detail)
	case model.ChangeDeleted:
		fmt.Printf("deleted  note %d\n", ev.NoteID)
	}
}
