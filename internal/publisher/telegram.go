package publisher

import (
	"bytes"
	"context"
	"strconv"
	"unicode/utf8"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/cockroachdb/errors"
	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// Telegram rejects photo captions longer than this.
const maxCaptionLength = 1024

type telegramSender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*tgmodels.Message, error)
	SendPhoto(ctx context.Context, params *tgbot.SendPhotoParams) (*tgmodels.Message, error)
}

type TelegramPublisher struct {
	sender telegramSender
	chatID any
}

func NewTelegramPublisher(token, chatID string) (*TelegramPublisher, error) {
	if token == "" || chatID == "" {
		return nil, errors.New("telegram publisher needs a bot token and a chat id")
	}
	b, err := tgbot.New(token, tgbot.WithSkipGetMe())
	if err != nil {
		return nil, errors.Wrap(err, "creating telegram bot")
	}
	return newTelegramPublisher(b, chatID), nil
}

func newTelegramPublisher(sender telegramSender, chatID string) *TelegramPublisher {
	return &TelegramPublisher{sender: sender, chatID: parseChatID(chatID)}
}

// parseChatID accepts numeric ids as well as @channel usernames.
func parseChatID(chatID string) any {
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return id
	}
	return chatID
}

func (p *TelegramPublisher) Publish(ctx context.Context, announcement models.Announcement) error {
	var err error
	if announcement.HasImage() && utf8.RuneCountInString(announcement.Text) <= maxCaptionLength {
		_, err = p.sender.SendPhoto(ctx, &tgbot.SendPhotoParams{
			ChatID:  p.chatID,
			Photo:   &tgmodels.InputFileUpload{Filename: "token.png", Data: bytes.NewReader(announcement.Image)},
			Caption: announcement.Text,
		})
	} else {
		_, err = p.sender.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: p.chatID,
			Text:   announcement.Text,
		})
	}
	if err != nil {
		return errors.Mark(errors.Wrap(err, "telegram send"), models.ErrPublish)
	}
	return nil
}

func (p *TelegramPublisher) Close() error {
	return nil
}
