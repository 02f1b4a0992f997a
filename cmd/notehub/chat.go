package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alderlake/notehub/internal/model"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Short:   "Work with chats",
	GroupID: "chats",
}

func parseChatID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid chat id %q", arg)
	}
	return id, nil
}

// parseIntegrations turns a comma-separated flag value into validated
// integration names.
func parseIntegrations(flag string) ([]model.Integration, error) {
	var out []model.Integration
	for _, part := range strings.Split(flag, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		in := model.Integration(name)
		if !in.IsValid() {
			return nil, fmt.Errorf("unknown integration %q (known: openai, anthropic, gemini, ollama)", name)
		}
		out = append(out, in)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one integration is required")
	}
	return out, nil
}

var chatCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chat, err := api.CreateChat(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(chat)
		} else {
			fmt.Printf("Created chat %d\n", chat.ID)
		}
		return nil
	},
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all chats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chats, err := api.ListChats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(chats)
		} else {
			printChatList(chats)
		}
		return nil
	},
}

var chatShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a chat and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseChatID(args[0])
		if err != nil {
			return err
		}

		chat, messages, err := api.GetChat(context.Background(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(map[string]any{"chat": chat, "messages": messages})
			return nil
		}
		printChat(chat)
		if len(messages) > 0 {
			fmt.Println()
			for _, msg := range messages {
				printMessage(msg)
			}
		}
		return nil
	},
}

var chatAskCmd = &cobra.Command{
	Use:   "ask <id> <prompt>",
	Short: "Send a prompt to a chat",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseChatID(args[0])
		if err != nil {
			return err
		}
		flag, _ := cmd.Flags().GetString("integrations")
		integrations, err := parseIntegrations(flag)
		if err != nil {
			return err
		}

		result, err := api.InteractChat(context.Background(), id, args[1], integrations)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(result)
			return nil
		}
		for _, msg := range result.Responses {
			printMessage(msg)
		}
		return nil
	},
}

func init() {
	chatAskCmd.Flags().String("integrations", "openai", "comma-separated synthesis backends")

	chatCmd.AddCommand(chatCreateCmd)
	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatShowCmd)
	chatCmd.AddCommand(chatAskCmd)
}
