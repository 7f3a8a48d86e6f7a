/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/aoki-blog/apiserver/config"
	"github.com/aoki-blog/apiserver/internal/events"
	"github.com/aoki-blog/apiserver/internal/server"
	"github.com/spf13/cobra"
)

// eventsCmd groups event-stream utilities.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Content event stream utilities",
}

// eventsTailCmd subscribes to the content channels and prints every event,
// which is handy when checking broker wiring or watching moderation
// activity.
var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Subscribe to the content event channels and print events",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		backend, err := server.NewEventsBackend(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if backend == nil {
			return errors.New("no events backend configured (set EVENTS_BACKEND)")
		}
		defer func() {
			_ = backend.Close()
		}()

		print := func(ctx context.Context, msg events.Message) error {
			fmt.Printf("%s %s\n", msg.ID, msg.Data)
			return nil
		}

		errCh := make(chan error, 2)
		for _, channel := range []string{events.PostsChannel, events.CommentsChannel} {
			go func(channel string) {
				errCh <- backend.Subscribe(cmd.Context(), channel, print)
			}(channel)
		}
		return <-errCh
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
