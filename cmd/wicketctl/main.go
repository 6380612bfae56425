// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

// wicketctl is the operator CLI for a running wicketd. It speaks the
// CBOR control protocol over the daemon's Unix socket, so it works
// without a Telegram account or admin chat access.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/wicketlabs/wicket/cmd/wicketctl/cli"
	"github.com/wicketlabs/wicket/lib/ctl"
	"github.com/wicketlabs/wicket/lib/version"
)

// defaultSocketPath is used when neither --socket nor
// WICKET_SOCKET_PATH names the daemon socket.
const defaultSocketPath = "/run/wicket/wicketd.sock"

var socketPath string

func socketFlags(name string) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
		flags.StringVar(&socketPath, "socket", defaultSocket(), "path to the wicketd control socket")
		return flags
	}
}

func defaultSocket() string {
	if path := os.Getenv("WICKET_SOCKET_PATH"); path != "" {
		return path
	}
	return defaultSocketPath
}

func client() *ctl.Client {
	return ctl.NewClient(socketPath)
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func main() {
	root := &cli.Command{
		Name:    "wicketctl",
		Summary: "Control a running wicketd gatekeeper daemon",
		Subcommands: []*cli.Command{
			statusCommand(),
			usersCommand(),
			detailsCommand(),
			promotionCommand(),
			broadcastCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("wicketctl %s\n", version.Info())
					return nil
				},
			},
		},
	}

	if err := root.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:    "status",
		Summary: "Show daemon lifecycle state and store counts",
		Flags:   socketFlags("status"),
		Run: func(args []string) error {
			ctx, cancel := callContext()
			defer cancel()

			var status struct {
				State        string `cbor:"state"`
				UptimeSecs   int64  `cbor:"uptime_seconds"`
				Spaces       int    `cbor:"spaces"`
				Members      int    `cbor:"members"`
				PromotionSet bool   `cbor:"promotion_set"`
			}
			if err := client().Call(ctx, "status", nil, &status); err != nil {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(writer, "State:\t%s\n", status.State)
			fmt.Fprintf(writer, "Uptime:\t%s\n", (time.Duration(status.UptimeSecs) * time.Second).String())
			fmt.Fprintf(writer, "Spaces:\t%d\n", status.Spaces)
			fmt.Fprintf(writer, "Members:\t%d\n", status.Members)
			fmt.Fprintf(writer, "Promotion set:\t%t\n", status.PromotionSet)
			return writer.Flush()
		},
	}
}

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:    "users",
		Summary: "Show the total stored user count",
		Flags:   socketFlags("users"),
		Run: func(args []string) error {
			ctx, cancel := callContext()
			defer cancel()

			var users struct {
				Total int `cbor:"total"`
			}
			if err := client().Call(ctx, "users", nil, &users); err != nil {
				return err
			}
			fmt.Printf("Total stored users: %d\n", users.Total)
			return nil
		},
	}
}

func detailsCommand() *cli.Command {
	return &cli.Command{
		Name:    "details",
		Summary: "Show approval counts per space",
		Flags:   socketFlags("details"),
		Run: func(args []string) error {
			ctx, cancel := callContext()
			defer cancel()

			var details struct {
				Spaces []struct {
					ID      int64  `cbor:"id"`
					Title   string `cbor:"title"`
					Members int    `cbor:"members"`
				} `cbor:"spaces"`
			}
			if err := client().Call(ctx, "details", nil, &details); err != nil {
				return err
			}
			if len(details.Spaces) == 0 {
				fmt.Println("No data yet.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(writer, "SPACE\tID\tMEMBERS\n")
			for _, space := range details.Spaces {
				fmt.Fprintf(writer, "%s\t%d\t%d\n", space.Title, space.ID, space.Members)
			}
			return writer.Flush()
		},
	}
}

func promotionCommand() *cli.Command {
	var clear bool
	return &cli.Command{
		Name:    "promotion",
		Summary: "Show, set, or clear the post-approval promotion text",
		Usage:   "wicketctl promotion [--clear | <text...>]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("promotion", pflag.ContinueOnError)
			flags.StringVar(&socketPath, "socket", defaultSocket(), "path to the wicketd control socket")
			flags.BoolVar(&clear, "clear", false, "clear the promotion text")
			return flags
		},
		Run: func(args []string) error {
			ctx, cancel := callContext()
			defer cancel()

			fields := map[string]any{}
			switch {
			case clear:
				fields["text"] = ""
			case len(args) > 0:
				fields["text"] = strings.Join(args, " ")
			}

			var response struct {
				Text string `cbor:"text"`
			}
			if err := client().Call(ctx, "promotion", fields, &response); err != nil {
				return err
			}
			if response.Text == "" {
				fmt.Println("(no promotion set)")
				return nil
			}
			fmt.Println(response.Text)
			return nil
		},
	}
}

func broadcastCommand() *cli.Command {
	return &cli.Command{
		Name:    "broadcast",
		Summary: "Send a message to every stored user",
		Usage:   "wicketctl broadcast <text...>",
		Flags:   socketFlags("broadcast"),
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("broadcast text required")
			}

			ctx, cancel := callContext()
			defer cancel()

			var result struct {
				Sent   int `cbor:"sent"`
				Failed int `cbor:"failed"`
			}
			fields := map[string]any{"text": strings.Join(args, " ")}
			if err := client().Call(ctx, "broadcast", fields, &result); err != nil {
				return err
			}
			fmt.Printf("Broadcast complete. Sent: %d, Failed: %d\n", result.Sent, result.Failed)
			return nil
		},
	}
}
