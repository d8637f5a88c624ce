package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alert-strategist/internal/domain"
	"alert-strategist/pkg/logger"

	tele "gopkg.in/telebot.v3"
)

const commandTimeout = 10 * time.Second

type ScoreReader interface {
	Scores(ctx context.Context, ticker string) ([]domain.ScoreSnapshot, error)
}

type ActionLister interface {
	List(ctx context.Context, f domain.ActionFilter) ([]domain.Action, error)
}

// Sender is the part of *tele.Bot used to push notifications.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Config struct {
	Token  string
	ChatID int64
}

// Bot posts recorded actions to a Telegram chat and answers score queries.
type Bot struct {
	tb      *tele.Bot
	sender  Sender
	chat    tele.Recipient
	scores  ScoreReader
	actions ActionLister
	log     *logger.Logger
}

var newTeleBot = tele.NewBot

// StartTelegramBot returns nil when no token is configured.
func StartTelegramBot(cfg Config, scores ScoreReader, actions ActionLister, log *logger.Logger) (*Bot, error) {
	if log == nil {
		log = logger.L()
	}
	if cfg.Token == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	tb, err := newTeleBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b := newBot(tb, tele.ChatID(cfg.ChatID), scores, actions, log)
	b.tb = tb
	b.register(tb)
	if cfg.ChatID == 0 {
		log.Warn("TELEGRAM_CHAT_ID not set, action notifications disabled")
	}

	go tb.Start()
	log.Info("Telegram bot started")
	return b, nil
}

func newBot(sender Sender, chat tele.ChatID, scores ScoreReader, actions ActionLister, log *logger.Logger) *Bot {
	b := &Bot{
		sender:  sender,
		scores:  scores,
		actions: actions,
		log:     log.With(logger.String("component", "telegram")),
	}
	if chat != 0 {
		b.chat = chat
	}
	return b
}

func (b *Bot) register(tb *tele.Bot) {
	tb.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	tb.Handle("/score", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return c.Send(b.scoreReply(ctx, c.Args()))
	})
	tb.Handle("/actions", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return c.Send(b.actionsReply(ctx, c.Args()))
	})
}

func (b *Bot) Stop() {
	if b != nil && b.tb != nil {
		b.tb.Stop()
	}
}

func (b *Bot) Name() string { return "telegram" }

// Send implements the dispatcher notifier. Without a chat id it is a no-op.
func (b *Bot) Send(ctx context.Context, a domain.Action) error {
	if b.chat == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.sender.Send(b.chat, FormatAction(a)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func FormatAction(a domain.Action) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", a.Kind, a.Ticker)
	fmt.Fprintf(&sb, "Strategy: %s (#%d)\n", a.StrategyName, a.StrategyID)
	fmt.Fprintf(&sb, "Score: %s\n", a.Score.String())
	fmt.Fprintf(&sb, "Matched: %s\n", listOrDash(a.MatchedAlerts))
	fmt.Fprintf(&sb, "Missing: %s\n", listOrDash(a.MissingAlerts))
	fmt.Fprintf(&sb, "At: %s", a.Timestamp.UTC().Format(time.RFC3339))
	return sb.String()
}

func (b *Bot) scoreReply(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /score BTCUSDT"
	}
	if b.scores == nil {
		return "Scores are unavailable"
	}
	ticker := strings.ToUpper(strings.TrimSpace(args[0]))
	scores, err := b.scores.Scores(ctx, ticker)
	if err != nil {
		return fmt.Sprintf("Error fetching scores for %s: %v", ticker, err)
	}
	if len(scores) == 0 {
		return fmt.Sprintf("No strategies apply to %s", ticker)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s scores\n", ticker)
	for _, s := range scores {
		mark := "-"
		if s.Satisfied {
			mark = "+"
		}
		fmt.Fprintf(&sb, "%s %s: %s", mark, s.StrategyName, s.Score.String())
		if len(s.Missing) > 0 {
			fmt.Fprintf(&sb, " (missing: %s)", strings.Join(s.Missing, ", "))
		}
		if s.Error != "" {
			fmt.Fprintf(&sb, " [error: %s]", s.Error)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) actionsReply(ctx context.Context, args []string) string {
	if b.actions == nil {
		return "Actions are unavailable"
	}
	f := domain.ActionFilter{Limit: 5}
	if len(args) > 0 {
		f.Ticker = strings.ToUpper(strings.TrimSpace(args[0]))
	}
	actions, err := b.actions.List(ctx, f)
	if err != nil {
		return fmt.Sprintf("Error fetching actions: %v", err)
	}
	if len(actions) == 0 {
		return "No actions recorded"
	}

	lines := make([]string, 0, len(actions))
	for _, a := range actions {
		lines = append(lines, fmt.Sprintf("%s %s %s score %s (%s)",
			a.Timestamp.UTC().Format("2006-01-02 15:04"), a.Kind, a.Ticker, a.Score.String(), a.StrategyName))
	}
	return strings.Join(lines, "\n")
}

func listOrDash(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ", ")
}
