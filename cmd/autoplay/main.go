// Command autoplay plays Jackaroo seats through the REST API with a greedy
// strategy. It can fill every seat to run a bot-only game, or only some seats
// so people at the table (or other agents) play the rest.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/jackaroo/game/engine"
	"github.com/wricardo/mcp-training/jackaroo/game/service"
	"github.com/wricardo/mcp-training/jackaroo/internal/logging"
)

// Options controls a run
type Options struct {
	Seats    map[engine.Colour]bool
	MaxPlays int
	Delay    time.Duration
	// Poll is how long to wait before checking again while a seat the bot
	// does not control is on turn
	Poll time.Duration
}

// Outcome summarises a finished run
type Outcome struct {
	Plays      int
	Passes     int
	Rejected   int
	GameOver   bool
	Winner     engine.Colour
	Eliminated engine.Colour
}

func parseSeats(s string) (map[engine.Colour]bool, error) {
	seats := make(map[engine.Colour]bool)
	if s == "" || s == "all" {
		for _, c := range engine.Colours {
			seats[c] = true
		}
		return seats, nil
	}
	for _, name := range strings.Split(s, ",") {
		c := engine.Colour(strings.ToLower(strings.TrimSpace(name)))
		found := false
		for _, known := range engine.Colours {
			if c == known {
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown seat %q", name)
		}
		seats[c] = true
	}
	return seats, nil
}

// run plays until the game ends, MaxPlays turns were taken or ctx is done
func run(ctx context.Context, client *Client, strategy GreedyStrategy, opts Options, logger *zap.Logger) (*Outcome, error) {
	out := &Outcome{}

	for out.Plays+out.Passes+out.Rejected < opts.MaxPlays {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		state, err := client.GetState(ctx)
		if err != nil {
			return out, err
		}
		if state.GameOver {
			out.GameOver, out.Winner, out.Eliminated = true, state.Winner, state.Eliminated
			return out, nil
		}

		colour := state.GetActivePlayerColour()
		if !opts.Seats[colour] {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(opts.Poll):
			}
			continue
		}

		plays, err := client.LegalPlays(ctx)
		if err != nil {
			return out, err
		}

		choice, ok := strategy.Choose(state, plays)
		if !ok {
			logger.Debug("no legal play, burning a card", zap.String("seat", string(colour)))
			if _, err := client.Pass(ctx, 0); err != nil {
				return out, fmt.Errorf("pass: %w", err)
			}
			out.Passes++
			continue
		}

		result, err := client.Play(ctx, service.PlayRequest{
			Card:    choice.Play.Card,
			Marbles: choice.Play.Marbles,
			Split:   choice.Split,
		})
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Status < 500 {
				// The table moved under us (another client played); look again
				logger.Warn("play rejected", zap.String("seat", string(colour)), zap.Error(err))
				out.Rejected++
				continue
			}
			return out, fmt.Errorf("play: %w", err)
		}
		out.Plays++

		logger.Debug("played",
			zap.String("seat", string(colour)),
			zap.String("card", result.Card),
			zap.Ints("marbles", result.Marbles),
			zap.Float64("score", choice.Score),
		)

		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}
	return out, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configName := flag.String("config", "", "Rule configuration for a new session (classic, quick, firepit)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	seats := flag.String("seats", "all", "Comma separated colours the bot plays")
	maxPlays := flag.Int("max-plays", 5000, "Maximum turns to take")
	reset := flag.Bool("reset", false, "Deal a new game before playing")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between plays in milliseconds (0 = no delay)")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	seatSet, err := parseSeats(*seats)
	if err != nil {
		logger.Fatal("invalid seats", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := NewClient(*serverURL)

	// Check for saved session ID
	sessionFile := ".session"
	savedSessionID := *continueSession
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		if _, err := client.GetState(ctx); err != nil {
			logger.Warn("failed to resume session, creating a new one", zap.String("session", savedSessionID), zap.Error(err))
			savedSessionID = ""
		} else {
			logger.Info("resumed session", zap.String("session", savedSessionID))
		}
	}

	if savedSessionID == "" {
		if _, err := client.CreateSession(ctx, *configName); err != nil {
			logger.Fatal("failed to create session", zap.Error(err))
		}
		logger.Info("session created", zap.String("session", client.sessionID))
		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			logger.Warn("failed to save session ID", zap.Error(err))
		}
	} else if *reset {
		if _, err := client.Reset(ctx); err != nil {
			logger.Fatal("failed to reset game", zap.Error(err))
		}
	}

	out, err := run(ctx, client, GreedyStrategy{}, Options{
		Seats:    seatSet,
		MaxPlays: *maxPlays,
		Delay:    time.Duration(*delayMs) * time.Millisecond,
		Poll:     500 * time.Millisecond,
	}, logger)

	fields := []zap.Field{
		zap.String("session", client.sessionID),
		zap.Int("plays", out.Plays),
		zap.Int("passes", out.Passes),
		zap.Int("rejected", out.Rejected),
	}
	if err != nil {
		logger.Error("autoplay stopped", append(fields, zap.Error(err))...)
		os.Exit(1)
	}

	switch {
	case out.GameOver && out.Eliminated != "":
		logger.Info("game over", append(fields, zap.String("eliminated", string(out.Eliminated)))...)
	case out.GameOver:
		logger.Info("game over", append(fields, zap.String("winner", string(out.Winner)))...)
	default:
		logger.Info("play limit reached", fields...)
		os.Exit(1)
	}
}
