package service

import (
	"context"
	"io"

	"github.com/Rodhackgang/KaboreTech-sub000/internal/models"
)

// Notifier is the one-way user notification channel (WhatsApp). Sends are
// best-effort: callers log failures and continue.
type Notifier interface {
	Send(phone, text string) error
}

// ApprovalConsole receives approval requests for the administrator
// (Telegram). Implemented by the bot package.
type ApprovalConsole interface {
	NotifyRegistration(user *models.User) error
	NotifyPayment(user *models.User, payment *models.Payment) error
}

// BlobStore is the opaque media store behind video/image uploads.
type BlobStore interface {
	Put(ctx context.Context, folder, filename string, body io.Reader, contentType string) (key, url string, err error)
	Delete(ctx context.Context, key string) error
}
