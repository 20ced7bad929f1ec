package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rodhackgang/KaboreTech-sub000/internal/config"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/entitlement"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/models"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/repository"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot is the administrator approval console. It renders per-user
// entitlement keyboards and executes the decisions computed by the
// entitlement package.
type Bot struct {
	api      *tgbotapi.BotAPI
	config   *config.Config
	userRepo repository.UserRepository
	notifier service.Notifier
	log      *zap.Logger
}

func New(cfg *config.Config, userRepo repository.UserRepository, notifier service.Notifier, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	api.Debug = false
	log.Info("telegram bot authorized", zap.String("username", api.Self.UserName))

	return &Bot{
		api:      api,
		config:   cfg,
		userRepo: userRepo,
		notifier: notifier,
		log:      log,
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			b.handleMessage(update.Message)
		} else if update.CallbackQuery != nil {
			b.handleCallbackQuery(update.CallbackQuery)
		}
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if !message.IsCommand() {
		return
	}

	switch message.Command() {
	case "start", "help":
		b.handleHelpCommand(message)
	case "etat":
		if b.isAdmin(message.From.ID) {
			b.handleEtatCommand(message)
		} else {
			b.sendMessage(message.Chat.ID, "Vous n'avez pas les droits pour cette commande.")
		}
	default:
		b.sendMessage(message.Chat.ID, "Commande inconnue. Utilisez /help.")
	}
}

func (b *Bot) handleHelpCommand(message *tgbotapi.Message) {
	helpText := `🤖 Console d'administration KaboreTech

Les demandes d'inscription et de paiement arrivent ici automatiquement.
Chaque bouton bascule l'accès VIP correspondant.`

	if b.isAdmin(message.From.ID) {
		helpText += `

👨‍💼 Commandes :
/etat <téléphone> - Afficher les accès VIP d'un utilisateur`
	}

	b.sendMessage(message.Chat.ID, helpText)
}

// handleEtatCommand re-displays the entitlement keyboard for any user on
// demand, so the operator never depends on finding an old message.
func (b *Bot) handleEtatCommand(message *tgbotapi.Message) {
	phone := message.CommandArguments()
	if phone == "" {
		b.sendMessage(message.Chat.ID, "Utilisation : /etat <téléphone>")
		return
	}

	user, err := b.userRepo.GetByPhone(context.Background(), phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			b.sendMessage(message.Chat.ID, "Utilisateur introuvable : "+phone)
		} else {
			b.log.Error("failed to load user", zap.String("phone", phone), zap.Error(err))
			b.sendMessage(message.Chat.ID, "Erreur lors de la recherche de l'utilisateur.")
		}
		return
	}

	text := fmt.Sprintf("👤 %s\n📱 %s\n\nGérez les accès VIP :", user.Name, user.Phone)
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = entitlementKeyboard(user)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("failed to send etat message", zap.Error(err))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) answerCallbackQuery(queryID, text string) {
	callback := tgbotapi.NewCallback(queryID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.log.Error("failed to answer callback", zap.Error(err))
	}
}

func (b *Bot) isAdmin(chatID int64) bool {
	for _, adminID := range b.config.AdminChatIDs {
		if adminID == chatID {
			return true
		}
	}
	return false
}

// entitlementKeyboard converts the recomputed catalog buttons into the
// Telegram markup, one button per row.
func entitlementKeyboard(user *models.User) tgbotapi.InlineKeyboardMarkup {
	buttons := entitlement.Keyboard(user)
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, btn := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.CallbackData),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
