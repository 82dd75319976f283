// Package main runs the games in a local terminal on stdin and stdout.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/calkeo/calkeo-terminal-sub000/internal/config"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game/chess"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game/connectfour"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game/hangman"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game/tictactoe"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game/wordchain"
	"github.com/calkeo/calkeo-terminal-sub000/internal/session"
	"github.com/calkeo/calkeo-terminal-sub000/internal/style"
	"github.com/calkeo/calkeo-terminal-sub000/internal/terminal"
	"github.com/calkeo/calkeo-terminal-sub000/internal/words"
)

const prompt = "guest@terminal:~$ "

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	dictionary := cfg.Words.Source
	if dictionary == "" {
		dictionary = words.EmbeddedSource
	}
	source := words.NewSource(words.FileLoader{}, cfg.Words.CacheTTL)

	registry := game.NewRegistry()
	for _, c := range []game.Command{
		chess.New(&chess.Config{SearchNodes: cfg.Games.SearchNodes}),
		connectfour.New(&connectfour.Config{SearchNodes: cfg.Games.SearchNodes}),
		tictactoe.New(&tictactoe.Config{SearchNodes: cfg.Games.SearchNodes}),
		hangman.New(&hangman.Config{Words: source, Dictionary: dictionary}),
		wordchain.New(&wordchain.Config{Words: source, Dictionary: dictionary}),
	} {
		if err := registry.Register(c); err != nil {
			log.Fatal().Err(err).Str("game", c.Name()).Msg("Failed to register game")
		}
	}

	term := terminal.New(registry, session.NewMemoryStore())
	id := uuid.NewString()
	styler := style.ANSI{}

	fmt.Println(styler.Style("Type help to list the games.", style.Info))
	fmt.Print(prompt)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		out, err := term.Handle(context.Background(), id, scanner.Text())
		if err != nil {
			fmt.Println(styler.Style(err.Error(), style.Error))
		} else if len(out.Lines) > 0 {
			fmt.Println(style.Render(styler, out.Lines))
		}
		if out.Interactive {
			fmt.Print("> ")
		} else {
			fmt.Print(prompt)
		}
	}
	fmt.Println()
}
