package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
	"github.com/calkeo/calkeo-terminal-sub000/internal/style"
	"github.com/calkeo/calkeo-terminal-sub000/internal/terminal"
	"github.com/calkeo/calkeo-terminal-sub000/internal/words"
)

// handleTimeout bounds one update, including the AI move.
const handleTimeout = 30 * time.Second

// Handler turns Telegram messages into terminal input.
type Handler struct {
	term     *terminal.Terminal
	registry *game.Registry
	words    *words.Source
	sessions func() int
	styler   style.Styler
}

// NewHandler creates a Handler from deps.
func NewHandler(deps *Dependencies) *Handler {
	return &Handler{
		term:     deps.Terminal,
		registry: deps.Registry,
		words:    deps.Words,
		sessions: deps.Sessions,
		styler:   style.HTML{},
	}
}

// SessionID keys a session by chat and user, so group members play their
// own games.
func SessionID(chat *tele.Chat, sender *tele.User) string {
	return fmt.Sprintf("tg:%d:%d", chat.ID, sender.ID)
}

// Normalize strips the leading slash and any @botname suffix from a command.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	text = text[1:]
	head, rest, _ := strings.Cut(text, " ")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	if rest == "" {
		return head
	}
	return head + " " + rest
}

// HandleText feeds the message to the terminal and replies with its output.
func (h *Handler) HandleText(c tele.Context) error {
	return h.run(c, Normalize(c.Text()))
}

// HandleHelp lists the games.
func (h *Handler) HandleHelp(c tele.Context) error {
	return h.run(c, "help")
}

// HandleQuit ends the running game.
func (h *Handler) HandleQuit(c tele.Context) error {
	return h.run(c, "quit")
}

// HandleStats reports registry, cache and session counts.
func (h *Handler) HandleStats(c tele.Context) error {
	lines := []style.Line{
		game.Success("Stats"),
		game.Text(fmt.Sprintf("Games: %d", h.registry.Count())),
	}
	if h.words != nil {
		lines = append(lines, game.Text(fmt.Sprintf("Cached dictionaries: %d", h.words.Cached())))
	}
	if h.sessions != nil {
		lines = append(lines, game.Text(fmt.Sprintf("Sessions: %d", h.sessions())))
	}
	return c.Send(style.Render(h.styler, lines), tele.ModeHTML)
}

func (h *Handler) run(c tele.Context, line string) error {
	chat, sender := c.Chat(), c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	id := SessionID(chat, sender)
	out, err := h.term.Handle(ctx, id, line)
	if err != nil {
		log.Error().Err(err).Str("session_id", id).Msg("Terminal failed")
		return c.Send(h.styler.Style("Something went wrong, please try again.", style.Error), tele.ModeHTML)
	}
	if len(out.Lines) == 0 {
		return nil
	}
	return c.Send(style.Render(h.styler, out.Lines), tele.ModeHTML)
}
