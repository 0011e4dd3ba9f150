package commands

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"bunpro-assist/lib/serviceutil"
	"bunpro-assist/services/chat"
	"bunpro-assist/services/grammar"

	"github.com/spf13/cobra"
)

var (
	chatSnapshot *string
	chatModel    *string
)

func init() {
	chatSnapshot = chatCmd.Flags().String("snapshot", "", "The snapshot file to ground the tutor in.")
	chatModel = chatCmd.Flags().String("model", "", "The Gemini model to use.")
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat [--snapshot <path/to/snapshot.json>] [--model <name>]",
	Short: "Starts an interactive grammar tutor grounded in your study data.",
	Run: func(cmd *cobra.Command, args []string) {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			slog.Error("GEMINI_API_KEY is not set")
			os.Exit(1)
		}

		store := grammar.NewStore(*chatSnapshot)
		data, err := store.Load()
		if errors.Is(err, grammar.NoSnapshotErr) {
			slog.Warn("no snapshot found, the tutor will have no study data", "path", store.Path())
		} else if err != nil {
			serviceutil.Fatal("failed to read snapshot", err)
		}

		service, err := chat.NewService(cmd.Context(), chat.ServiceOptions{
			ApiKey: apiKey,
			Model:  *chatModel,
			Data:   data,
		})
		if err != nil {
			serviceutil.Fatal("failed to start chat service", err)
		}
		defer service.Close()

		fmt.Println("Ask about your Bunpro grammar, Ctrl+D to quit.")

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}

			answer, err := service.Ask(cmd.Context(), question)
			if err != nil {
				slog.Error("failed to get an answer", "err", err)
				continue
			}
			fmt.Println(answer)
		}
	},
}
