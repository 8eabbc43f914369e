// Package cli implements the interactive terminal playthrough behind the
// 'run' command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	funnel "github.com/prodyssey/vibe-cto-dot-ai-sub000"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/logging"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/navigation"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/presentation/tui"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/adapters/file"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// PlayOptions configures an interactive playthrough.
type PlayOptions struct {
	ContentPath string
	SessionID   string
	PlayerName  string
	Fresh       bool
	Debug       bool
	Plain       bool
}

// Play runs the interactive loop until the visitor reaches a terminal
// scene, quits, or the context is cancelled.
func Play(ctx context.Context, opts PlayOptions) error {
	logger := createLogger(opts.Debug)

	engineOpts := []funnel.Option{funnel.WithLogger(logger)}
	if opts.SessionID != "" {
		store := file.NewStore("")
		if opts.Fresh {
			_ = store.Delete(ctx, opts.SessionID)
		}
		engineOpts = append(engineOpts, funnel.WithSnapshotStore(store))
	}

	engine, err := funnel.Open(ctx, opts.ContentPath, engineOpts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	if report := engine.Validate(); !report.OK() {
		for _, missing := range report.MissingTargets {
			logger.Warn("content defect: dangling reference", "ref", missing)
		}
		for _, orphan := range report.Unreachable {
			logger.Warn("content defect: unreachable scene", "scene", orphan)
		}
	}

	sess := engine.ResumeSession(ctx, opts.SessionID)
	if opts.PlayerName != "" {
		sess.SetPlayerIdentity(opts.PlayerName, false)
	}
	sess.StartSession()
	nav := navigation.New(sess, engine.Registry(), navigation.WithLogger(logger))

	interactive := !opts.Plain && term.IsTerminal(int(os.Stdout.Fd()))
	render := func(markdown string) (string, error) { return markdown, nil }
	if interactive {
		tui.PrintBanner()
		render = tui.NewRenderer()
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		if err := ctx.Err(); err != nil {
			printSystemMessage("Interrupted at '%s'.", nav.Current())
			return nil
		}

		scene, err := engine.Scene(nav.Current())
		if err != nil {
			return fmt.Errorf("session points at unknown scene %q: %w", nav.Current(), err)
		}

		out, rerr := render(tui.SceneMarkdown(scene))
		if rerr != nil {
			out = tui.SceneMarkdown(scene)
		}
		fmt.Print(out)

		if scene.Terminal() {
			path := sess.FinalizePath()
			printSystemMessage("Your path: %s", path)
			sess.CompleteGame(domain.OutcomeExplored)
			return nil
		}

		// Pass-through scenes advance without input.
		if len(scene.Choices) == 0 {
			if scene.NextScene == "" {
				printSystemMessage("Finished at '%s'.", scene.ID)
				return nil
			}
			if err := nav.PushScene(scene.NextScene); err != nil {
				printSystemMessage("Cannot continue: %v", err)
				return nil
			}
			continue
		}

		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		cmd := parseInput(line, len(scene.Choices))
		switch cmd.kind {
		case inputQuit:
			printSystemMessage("Bye!")
			return nil
		case inputBack:
			if target := nav.Back(); target == "" {
				printSystemMessage("Nothing to go back to.")
			}
		case inputChoice:
			choice := scene.Choices[cmd.index]
			if err := sess.RecordChoice(scene.ID, choice.ID, nil); err != nil {
				printSystemMessage("Choice rejected: %v", err)
				continue
			}
			if choice.NextScene != "" {
				if err := nav.PushScene(choice.NextScene); err != nil {
					printSystemMessage("This option leads nowhere yet, staying put.")
				}
			}
		default:
			printSystemMessage("Pick a number between 1 and %d, 'b' for back or 'q' to quit.", len(scene.Choices))
		}
	}
}

type inputKind int

const (
	inputInvalid inputKind = iota
	inputChoice
	inputBack
	inputQuit
)

type input struct {
	kind  inputKind
	index int
}

// parseInput maps a raw line to a command. Choice numbers are one-based.
func parseInput(line string, choiceCount int) input {
	text := strings.ToLower(strings.TrimSpace(line))
	switch text {
	case "q", "quit", "exit":
		return input{kind: inputQuit}
	case "b", "back":
		return input{kind: inputBack}
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > choiceCount {
		return input{kind: inputInvalid}
	}
	return input{kind: inputChoice, index: n - 1}
}

func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}
