// Package main is a terminal trip viewer: it opens a sync agent against a
// running API, joins the trip's live room over websocket, and logs every
// state change as it converges. Useful for watching two clients reconcile.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/roamline/backend/internal/domain"
	"github.com/roamline/backend/internal/sync"
)

func main() {
	var (
		apiURL   = flag.String("api", "http://localhost:8080", "base URL of the itinerary API")
		tripFlag = flag.String("trip", "", "trip ID to watch (required)")
		interval = flag.Duration("interval", sync.DefaultPollInterval, "reconciliation fetch interval")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	tripID, err := uuid.Parse(*tripFlag)
	if err != nil {
		logger.Error("invalid -trip", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	feed, err := sync.DialFeed(ctx, wsURL(*apiURL))
	cancel()
	if err != nil {
		logger.Error("websocket dial failed", "error", err)
		os.Exit(1)
	}
	defer feed.Close()

	agent := sync.New(sync.NewClient(*apiURL), feed, tripID, sync.Options{
		PollInterval: *interval,
		Logger:       logger,
		OnChange: func(snap sync.Snapshot) {
			logger.Info("state",
				"trip", snap.Trip.Name,
				"activities", len(snap.Activities),
				"notes", len(snap.Trip.HourlyNotes),
			)
		},
	})

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = agent.Open(ctx)
	cancel()
	if err != nil {
		logger.Error("open failed", "error", err)
		os.Exit(1)
	}
	defer agent.Close()

	go func() {
		if err := feed.Listen(func(evt domain.Event) { agent.Apply(evt) }); err != nil {
			logger.Warn("live feed ended; polling continues", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("closing viewer")
}

// wsURL derives the websocket endpoint from the API base URL.
func wsURL(api string) string {
	ws := strings.Replace(api, "http://", "ws://", 1)
	ws = strings.Replace(ws, "https://", "wss://", 1)
	return strings.TrimRight(ws, "/") + "/ws"
}
