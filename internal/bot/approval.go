package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rodhackgang/KaboreTech-sub000/internal/entitlement"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/models"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/repository"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/whatsapp"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// NotifyRegistration posts the composite approval request for a fresh
// account: identity plus the full entitlement keyboard (everything off, so
// every button is a validate action).
func (b *Bot) NotifyRegistration(user *models.User) error {
	text := fmt.Sprintf(`🆕 Nouvelle inscription

👤 %s
📱 %s

Activez les accès VIP après vérification du paiement :`, user.Name, user.Phone)

	return b.broadcast(text, entitlementKeyboard(user))
}

// NotifyPayment posts the payment-review request: the deposit details for
// manual cross-checking plus the Approve/Cancel pair for the referenced key.
func (b *Bot) NotifyPayment(user *models.User, payment *models.Payment) error {
	key, err := entitlement.Lookup(payment.Domain, payment.Part)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(`💰 Paiement à vérifier

👤 %s
📱 %s
🎓 Formation : %s %s
🧾 N° dépôt : %s
💳 Mode : %s
💵 Montant : %s

Vérifiez le dépôt avant de valider :`,
		user.Name, user.Phone, key.Domain, key.Part,
		payment.NumDepot, payment.Mode, payment.Price)

	userID := user.ID.Hex()
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ Valider %s %s", key.Domain, key.Part),
				entitlement.CallbackData(entitlement.ActionValidate, key, userID),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"🚫 Refuser",
				entitlement.CallbackData(entitlement.ActionCancel, key, userID),
			),
		),
	)

	return b.broadcast(text, keyboard)
}

func (b *Bot) broadcast(text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	if len(b.config.AdminChatIDs) == 0 {
		return errors.New("no admin chat configured")
	}

	var lastErr error
	for _, chatID := range b.config.AdminChatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = keyboard
		if _, err := b.api.Send(msg); err != nil {
			b.log.Error("failed to post approval request",
				zap.Int64("chat_id", chatID), zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// handleCallbackQuery runs one approval event to completion: parse,
// validate, apply the transition, then execute its effects (store write,
// operator ack, keyboard re-render, user notification). Every failure is
// scoped to this event and reported through the callback answer.
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if !b.isAdmin(query.From.ID) {
		b.answerCallbackQuery(query.ID, "Vous n'êtes pas autorisé à valider des accès.")
		return
	}

	ev, err := entitlement.ParseCallback(query.Data)
	if err != nil {
		b.log.Warn("rejected callback", zap.String("data", query.Data), zap.Error(err))
		if errors.Is(err, entitlement.ErrInvalidKey) {
			b.answerCallbackQuery(query.ID, "Formation inconnue.")
		} else {
			b.answerCallbackQuery(query.ID, "Donnée de validation invalide.")
		}
		return
	}

	ctx := context.Background()
	user, err := b.userRepo.GetByID(ctx, ev.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			b.answerCallbackQuery(query.ID, "Utilisateur introuvable.")
		} else {
			b.log.Error("failed to load user", zap.String("user_id", ev.UserID), zap.Error(err))
			b.answerCallbackQuery(query.ID, "Erreur de base de données.")
		}
		return
	}

	decision := entitlement.Apply(user, ev)

	if decision.Write != nil {
		updated, err := b.userRepo.SetEntitlement(ctx, ev.UserID, decision.Write.Flag, decision.Write.Value)
		switch {
		case errors.Is(err, repository.ErrAlreadyInState):
			// lost a concurrent click on the same key: the other event
			// already wrote and notified
			state := "désactivée"
			if decision.Write.Value {
				state = "activée"
			}
			b.answerCallbackQuery(query.ID, fmt.Sprintf("VIP %s %s déjà %s",
				ev.Key.Domain, ev.Key.Part, state))
			if fresh, gerr := b.userRepo.GetByID(ctx, ev.UserID); gerr == nil {
				user = fresh
			}
			b.refreshKeyboard(query, user)
			return
		case errors.Is(err, repository.ErrNotFound):
			b.answerCallbackQuery(query.ID, "Utilisateur introuvable.")
			return
		case err != nil:
			b.log.Error("failed to write entitlement",
				zap.String("user_id", ev.UserID),
				zap.String("flag", decision.Write.Flag), zap.Error(err))
			b.answerCallbackQuery(query.ID, "Erreur de base de données, réessayez.")
			return
		}
		user = updated
	}

	b.answerCallbackQuery(query.ID, decision.Ack)
	b.refreshKeyboard(query, user)

	if decision.Notification != "" {
		if err := b.notifier.Send(user.Phone, decision.Notification); err != nil {
			// the store write stands; the channel is best-effort
			if errors.Is(err, whatsapp.ErrUnavailable) {
				b.log.Warn("notification channel unavailable",
					zap.String("phone", user.Phone))
			} else {
				b.log.Error("failed to notify user",
					zap.String("phone", user.Phone), zap.Error(err))
			}
		}
	}

	b.log.Info("entitlement event processed",
		zap.String("user_id", ev.UserID),
		zap.String("domain", ev.Key.Domain),
		zap.String("part", ev.Key.Part),
		zap.String("action", string(ev.Action)))
}

// refreshKeyboard recomputes the inline keyboard of the triggering message
// from the user's current flags and edits the markup in place.
func (b *Bot) refreshKeyboard(query *tgbotapi.CallbackQuery, user *models.User) {
	if query.Message == nil {
		return
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(
		query.Message.Chat.ID,
		query.Message.MessageID,
		entitlementKeyboard(user),
	)
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error("failed to refresh keyboard", zap.Error(err))
	}
}
