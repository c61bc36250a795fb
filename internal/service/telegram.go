package service

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotVerifier checks chat membership through the bot API. The bot must be an
// admin of the target chats or getChatMember comes back empty.
type BotVerifier struct {
	bot *tgbotapi.BotAPI
}

func NewBotVerifier(botToken string, debug bool) (*BotVerifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	bot.Debug = debug

	return &BotVerifier{bot: bot}, nil
}

func (v *BotVerifier) IsChatMember(_ context.Context, chatID int64, telegramUserID int64) (bool, error) {
	member, err := v.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: telegramUserID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to get chat member: %w", err)
	}

	switch member.Status {
	case "creator", "administrator", "member":
		return true, nil
	case "restricted":
		return member.IsMember, nil
	default:
		return false, nil
	}
}
