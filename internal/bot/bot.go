// Package bot exposes the terminal games over Telegram.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"github.com/calkeo/calkeo-terminal-sub000/internal/config"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
	"github.com/calkeo/calkeo-terminal-sub000/internal/terminal"
	"github.com/calkeo/calkeo-terminal-sub000/internal/words"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot     *tele.Bot
	cfg     *config.Config
	handler *Handler
	users   *privateUsers
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config   *config.Config
	Terminal *terminal.Terminal
	Registry *game.Registry
	Words    *words.Source
	// Sessions reports the number of stored sessions, if the store can.
	Sessions func() int
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	timeout := deps.Config.Bot.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:     teleBot,
		cfg:     deps.Config,
		handler: NewHandler(deps),
		users:   newPrivateUsers(),
	}

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg, b.users))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command handlers. Any other text, including
// unregistered /commands, is fed to the terminal.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.handler.HandleHelp)
	b.bot.Handle("/help", b.handler.HandleHelp)
	b.bot.Handle("/quit", b.handler.HandleQuit)

	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/stats", b.handler.HandleStats)

	b.bot.Handle(tele.OnText, b.handler.HandleText)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("bot", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
