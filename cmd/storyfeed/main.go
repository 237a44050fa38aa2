// Command storyfeed is a terminal story viewer against a running gigmarket
// API. It polls the feed, groups stories by author, and drives playback
// with single-key commands.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rasel39/gigmarket/backend/internal/playback"
	"github.com/rasel39/gigmarket/backend/pkg/storyclient"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080/api", "API base URL")
	token := flag.String("token", "", "JWT access token")
	userID := flag.String("user", "", "your marketplace user ID")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *token == "" || *userID == "" {
		fmt.Fprintln(os.Stderr, "storyfeed requires -token and -user")
		os.Exit(1)
	}

	client := storyclient.New(*baseURL, storyclient.Session{UserID: *userID, Token: *token}, nil)
	ctrl := playback.NewController(*userID, client, client, playback.Options{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := playback.NewPoller(client, playback.DefaultPollInterval, logger, func(groups []playback.Group) {
		ctrl.SetFeed(groups)
	})
	if err := poller.RunOnce(ctx); err != nil {
		logger.Error("initial feed fetch failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	go poller.Start(ctx)

	printFeed(ctrl, *userID)
	fmt.Println("commands: o <n> open group, n next, p prev, space pause, d delete, f feed, q quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		switch {
		case line == "q":
			return
		case line == "f":
			printFeed(ctrl, *userID)
		case line == "n":
			ctrl.Next()
			printCurrent(ctrl)
		case line == "p":
			ctrl.Prev()
			printCurrent(ctrl)
		case line == " " || line == "space":
			ctrl.TogglePause()
			fmt.Printf("paused: %v\n", ctrl.Paused())
		case line == "d":
			if err := ctrl.DeleteCurrent(ctx); err != nil {
				fmt.Printf("delete failed: %v\n", err)
				continue
			}
			printCurrent(ctrl)
		case len(line) > 2 && line[:2] == "o ":
			idx, err := strconv.Atoi(line[2:])
			if err != nil {
				fmt.Println("usage: o <group number>")
				continue
			}
			if err := ctrl.Open(idx); err != nil {
				fmt.Printf("open failed: %v\n", err)
				continue
			}
			printCurrent(ctrl)
		default:
			fmt.Println("unknown command")
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func printFeed(ctrl *playback.Controller, viewerID string) {
	groups := ctrl.Feed()
	if len(groups) == 0 {
		fmt.Println("no active stories")
		return
	}
	for i, g := range groups {
		marker := " "
		if g.AllViewed(viewerID) {
			marker = "*"
		}
		fmt.Printf("%s %d. %s (%d stories)\n", marker, i, g.Username, len(g.Stories))
	}
}

func printCurrent(ctrl *playback.Controller) {
	group, story, ok := ctrl.Current()
	if !ok {
		fmt.Println("viewer closed")
		return
	}
	fmt.Printf("%s [%d/%d] %s", group.Username, ctrl.Index()+1, len(group.Stories), story.ImageURL)
	if story.Text != "" {
		fmt.Printf(" %q", story.Text)
	}
	fmt.Println()
}
