package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"alert-strategist/internal/domain"
	"alert-strategist/pkg/logger"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"
)

type senderStub struct {
	to   tele.Recipient
	what interface{}
	err  error
}

func (s *senderStub) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	s.to = to
	s.what = what
	return &tele.Message{}, s.err
}

type scoreStub struct {
	resp []domain.ScoreSnapshot
	err  error
}

func (s scoreStub) Scores(ctx context.Context, ticker string) ([]domain.ScoreSnapshot, error) {
	return s.resp, s.err
}

type actionStub struct {
	last domain.ActionFilter
	resp []domain.Action
}

func (s *actionStub) List(ctx context.Context, f domain.ActionFilter) ([]domain.Action, error) {
	s.last = f
	return s.resp, nil
}

func sampleAction() domain.Action {
	return domain.Action{
		StrategyID:    3,
		StrategyName:  "EZ confluence",
		Ticker:        "BTCUSDT",
		Kind:          domain.ActionBuy,
		Score:         decimal.RequireFromString("3.5"),
		Timestamp:     time.Date(2024, 1, 1, 0, 10, 0, 0, time.UTC),
		MatchedAlerts: []string{"Bullish Reversal", "Normal Bullish Divergence"},
	}
}

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	b, err := StartTelegramBot(Config{}, nil, nil, logger.Nop())
	if err != nil || b != nil {
		t.Fatalf("expected nil bot without token, got %v, %v", b, err)
	}
}

func TestStartTelegramBotCreateError(t *testing.T) {
	orig := newTeleBot
	t.Cleanup(func() { newTeleBot = orig })
	newTeleBot = func(tele.Settings) (*tele.Bot, error) { return nil, errors.New("unauthorized") }

	if _, err := StartTelegramBot(Config{Token: "x"}, nil, nil, logger.Nop()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSendPostsToChat(t *testing.T) {
	s := &senderStub{}
	b := newBot(s, tele.ChatID(42), nil, nil, logger.Nop())

	if err := b.Send(context.Background(), sampleAction()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.to.Recipient() != "42" {
		t.Fatalf("unexpected recipient %q", s.to.Recipient())
	}
	msg, _ := s.what.(string)
	for _, want := range []string{"BUY BTCUSDT", "Score: 3.5", "Missing: -", "Bullish Reversal, Normal Bullish Divergence"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSendWithoutChatIsNoop(t *testing.T) {
	s := &senderStub{}
	b := newBot(s, 0, nil, nil, logger.Nop())

	if err := b.Send(context.Background(), sampleAction()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.what != nil {
		t.Fatal("expected nothing sent")
	}
}

func TestSendErrors(t *testing.T) {
	s := &senderStub{err: errors.New("flood wait")}
	b := newBot(s, tele.ChatID(1), nil, nil, logger.Nop())

	if err := b.Send(context.Background(), sampleAction()); err == nil {
		t.Fatal("expected send error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Send(ctx, sampleAction()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestScoreReply(t *testing.T) {
	b := newBot(&senderStub{}, 0, scoreStub{resp: []domain.ScoreSnapshot{
		{StrategyName: "ez", Score: decimal.RequireFromString("3.5"), Satisfied: true},
		{StrategyName: "osc", Score: decimal.Zero, Missing: []string{"Normal Bullish Divergence"}},
	}}, nil, logger.Nop())

	if got := b.scoreReply(context.Background(), nil); !strings.HasPrefix(got, "Usage") {
		t.Fatalf("expected usage, got %q", got)
	}
	got := b.scoreReply(context.Background(), []string{"btcusdt"})
	if !strings.Contains(got, "BTCUSDT scores") || !strings.Contains(got, "+ ez: 3.5") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if !strings.Contains(got, "- osc: 0 (missing: Normal Bullish Divergence)") {
		t.Fatalf("unexpected reply: %q", got)
	}

	empty := newBot(&senderStub{}, 0, scoreStub{}, nil, logger.Nop())
	if got := empty.scoreReply(context.Background(), []string{"ETH"}); got != "No strategies apply to ETH" {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestActionsReply(t *testing.T) {
	actions := &actionStub{resp: []domain.Action{sampleAction()}}
	b := newBot(&senderStub{}, 0, nil, actions, logger.Nop())

	got := b.actionsReply(context.Background(), []string{"btcusdt"})
	if actions.last.Ticker != "BTCUSDT" || actions.last.Limit != 5 {
		t.Fatalf("unexpected filter: %+v", actions.last)
	}
	if got != "2024-01-01 00:10 BUY BTCUSDT score 3.5 (EZ confluence)" {
		t.Fatalf("unexpected reply: %q", got)
	}

	actions.resp = nil
	if got := b.actionsReply(context.Background(), nil); got != "No actions recorded" {
		t.Fatalf("unexpected reply: %q", got)
	}
}
