package telegram

import (
	"io"

	"gopkg.in/telebot.v3"
)

// Client defines an interface for sending messages via a Telegram bot.
// This keeps the application services free of the bot library's transport details.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
	SendDocument(recipientChatID int64, fileName string, content io.Reader, caption string) error
}
