package notify

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/RCDNC/swipedeck/internal/domain/model"
)

type TextSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// TelegramNotifier tells a user about a new match through the bot chat. Only
// users whose id is a Telegram chat id are notified.
type TelegramNotifier struct {
	sender TextSender
	logger *zap.Logger
}

func NewTelegramNotifier(sender TextSender, logger *zap.Logger) *TelegramNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramNotifier{sender: sender, logger: logger}
}

func (n *TelegramNotifier) NotifyMatch(ctx context.Context, userID string, outcome model.SwipeOutcome) error {
	if n == nil || n.sender == nil || !outcome.Matched {
		return nil
	}

	chatID, err := strconv.ParseInt(strings.TrimSpace(userID), 10, 64)
	if err != nil || chatID == 0 {
		n.logger.Debug("skip match notification for non telegram user", zap.String("user_id", userID))
		return nil
	}

	if err := n.sender.SendText(ctx, chatID, MatchText(outcome)); err != nil {
		return fmt.Errorf("notify match: %w", err)
	}
	return nil
}

func MatchText(outcome model.SwipeOutcome) string {
	name := strings.TrimSpace(outcome.Candidate.DisplayName)
	if name == "" {
		name = "alguém"
	}

	var b strings.Builder
	b.WriteString("<b>Novo match com ")
	b.WriteString(html.EscapeString(name))
	b.WriteString("!</b>")
	if outcome.Match != nil && strings.TrimSpace(outcome.Match.Message) != "" {
		b.WriteString("\n")
		b.WriteString(html.EscapeString(outcome.Match.Message))
	}
	return b.String()
}
