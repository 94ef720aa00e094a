package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/minaorangina/seashooter/client"
	"github.com/minaorangina/seashooter/config"
	"github.com/minaorangina/seashooter/display"
	"github.com/minaorangina/seashooter/game"
	"go.uber.org/zap"
)

const (
	welcomeText   = "Welcome to Sea Shooter!\n\n"
	playAgainText = "\nType \"restart\" to play again or \"quit\" to leave.\n"
	goodbyeText   = "Bye!\n"
)

func main() {
	log.SetFlags(0)

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal(err.Error())
	}

	logger := zap.NewNop()
	if cfg.Debug {
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatal(err.Error())
		}
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := play(ctx, cfg, logger, readLines(os.Stdin), os.Stdout); err != nil {
		log.Fatal(err.Error())
	}
}

// readLines forwards stdin line by line until it runs out
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// play runs one session after another until the user quits
func play(ctx context.Context, cfg config.Client, logger *zap.Logger, lines <-chan string, out io.Writer) error {
	display.SendText(out, "%s%s", welcomeText, display.Usage())

	for {
		end, err := playSession(ctx, cfg, logger, lines, out)
		if err != nil {
			return err
		}

		switch end {
		case client.EndPlayerLeft, client.EndRestart:
			continue
		case client.EndGameOver:
			if !playAgain(ctx, lines, out) {
				display.SendText(out, goodbyeText)
				return nil
			}
		default:
			display.SendText(out, goodbyeText)
			return nil
		}
	}
}

func playSession(ctx context.Context, cfg config.Client, logger *zap.Logger, lines <-chan string, out io.Writer) (client.End, error) {
	transport, err := client.Dial(ctx, cfg.ServerURL, logger)
	if err != nil {
		return client.EndDisconnected, err
	}

	session := client.NewSession(transport, client.SessionOpts{
		AckTimeout: cfg.AckTimeout,
		Logger:     logger,
		Render: func(view game.View, err error) {
			display.Render(out, view)
			if err != nil {
				display.SendText(out, "%s\n", err)
			}
		},
	})

	type result struct {
		end client.End
		err error
	}
	done := make(chan result, 1)
	go func() {
		end, err := session.Run(ctx)
		done <- result{end, err}
	}()

	for {
		select {
		case r := <-done:
			if r.end == client.EndCancelled {
				return r.end, nil
			}
			return r.end, r.err

		case line, ok := <-lines:
			if !ok {
				line = "quit"
			}
			g, err := display.ParseCommand(line)
			if errors.Is(err, display.ErrEmptyCommand) {
				continue
			}
			if err != nil {
				display.SendText(out, "%s\n", err)
				continue
			}
			if err := session.Submit(ctx, g); err != nil && !errors.Is(err, client.ErrSessionEnded) {
				logger.Debug("gesture dropped", zap.Error(err))
			}
			if !ok {
				r := <-done
				return r.end, nil
			}
		}
	}
}

// playAgain waits for the user to choose between restart and quit
func playAgain(ctx context.Context, lines <-chan string, out io.Writer) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case line, ok := <-lines:
			if !ok {
				return false
			}
			g, err := display.ParseCommand(line)
			switch g.(type) {
			case client.Restart:
				return true
			case client.Quit:
				return false
			}
			if err != nil && !errors.Is(err, display.ErrEmptyCommand) {
				display.SendText(out, "%s\n", err)
			}
			display.SendText(out, playAgainText)
		}
	}
}
