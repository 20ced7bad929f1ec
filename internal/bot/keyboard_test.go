package bot

import (
	"testing"

	"github.com/Rodhackgang/KaboreTech-sub000/internal/entitlement"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEntitlementKeyboard(t *testing.T) {
	user := &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Awa",
		Phone: "+22670000000",
		VIP:   map[string]bool{"isInformatiqueHardware": true},
	}

	markup := entitlementKeyboard(user)
	require.Len(t, markup.InlineKeyboard, len(entitlement.Catalog), "one row per catalog key")

	for i, row := range markup.InlineKeyboard {
		require.Len(t, row, 1)
		btn := row[0]
		require.NotNil(t, btn.CallbackData)

		// every callback must parse back into a valid event for this user
		ev, err := entitlement.ParseCallback(*btn.CallbackData)
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), ev.UserID)
		assert.Equal(t, entitlement.Catalog[i], ev.Key)

		if ev.Key.Flag == "isInformatiqueHardware" {
			assert.Equal(t, entitlement.ActionCancel, ev.Action, "granted key toggles off")
			assert.Contains(t, btn.Text, "✅")
		} else {
			assert.Equal(t, entitlement.ActionValidate, ev.Action, "revoked key toggles on")
			assert.Contains(t, btn.Text, "❌")
		}
	}
}
