package entitlement

import (
	"fmt"

	"github.com/Rodhackgang/KaboreTech-sub000/internal/models"
)

type Outcome int

const (
	// OutcomeGranted means the flag flips to true.
	OutcomeGranted Outcome = iota
	// OutcomeRevoked means the flag flips to false.
	OutcomeRevoked
	// OutcomeAlreadyInState means the flag already holds the target value:
	// acknowledge only, no write, no user notification.
	OutcomeAlreadyInState
)

// Write is the single store mutation a decision may require.
type Write struct {
	Flag  string
	Value bool
}

// Decision is the pure output of the transition function: at most one store
// write plus the operator acknowledgment and the optional user notification.
// The caller executes the effects; this type never touches a channel.
type Decision struct {
	Outcome      Outcome
	Write        *Write
	Ack          string
	Notification string
}

// Apply computes the transition for one approval-console event against the
// user's current entitlement state. Approving an already granted key (or
// cancelling an already revoked one) short-circuits: the operator gets an
// informational ack and the user is not notified again.
func Apply(user *models.User, ev Event) Decision {
	label := fmt.Sprintf("%s %s", ev.Key.Domain, ev.Key.Part)
	current := user.HasEntitlement(ev.Key.Flag)
	target := ev.Action == ActionValidate

	if current == target {
		if target {
			return Decision{
				Outcome: OutcomeAlreadyInState,
				Ack:     fmt.Sprintf("VIP %s déjà activée", label),
			}
		}
		return Decision{
			Outcome: OutcomeAlreadyInState,
			Ack:     fmt.Sprintf("VIP %s déjà désactivée", label),
		}
	}

	if target {
		return Decision{
			Outcome: OutcomeGranted,
			Write:   &Write{Flag: ev.Key.Flag, Value: true},
			Ack:     fmt.Sprintf("✅ VIP %s activé", label),
			Notification: fmt.Sprintf(
				"🎉 Félicitations %s ! Votre accès VIP %s est maintenant actif sur KaboreTech. Bonne formation !",
				user.Name, label),
		}
	}

	return Decision{
		Outcome: OutcomeRevoked,
		Write:   &Write{Flag: ev.Key.Flag, Value: false},
		Ack:     fmt.Sprintf("🚫 VIP %s désactivé", label),
		Notification: fmt.Sprintf(
			"Votre accès VIP %s sur KaboreTech a été désactivé. Contactez le support si vous pensez qu'il s'agit d'une erreur.",
			label),
	}
}

// Button is one keyboard entry: the label shows the current state, the
// callback carries the action toggling to the opposite state.
type Button struct {
	Label        string
	CallbackData string
}

// Keyboard recomputes the full entitlement keyboard for a user from store
// state, one button per catalog key. Never an incremental patch.
func Keyboard(user *models.User) []Button {
	userID := user.ID.Hex()
	buttons := make([]Button, 0, len(Catalog))
	for _, key := range Catalog {
		label := fmt.Sprintf("%s %s", key.Domain, key.Part)
		if user.HasEntitlement(key.Flag) {
			buttons = append(buttons, Button{
				Label:        fmt.Sprintf("✅ %s activé", label),
				CallbackData: CallbackData(ActionCancel, key, userID),
			})
		} else {
			buttons = append(buttons, Button{
				Label:        fmt.Sprintf("❌ %s désactivé", label),
				CallbackData: CallbackData(ActionValidate, key, userID),
			})
		}
	}
	return buttons
}
