package entitlement

import (
	"errors"
	"fmt"
	"regexp"
)

type Action string

const (
	ActionValidate Action = "validate"
	ActionCancel   Action = "cancel"
)

var ErrBadCallback = errors.New("malformed callback data")

// Callback data layout: action_domain_part_userId with userId being a
// 24-char hex ObjectID.
var callbackPattern = regexp.MustCompile(`^(validate|cancel)_([A-Za-z]+)_([A-Za-z]+)_([0-9a-fA-F]{24})$`)

// Event is one approval-console action, fully validated against the catalog.
type Event struct {
	Action Action
	Key    Key
	UserID string
}

// ParseCallback validates raw callback data and resolves it against the
// catalog. Anything that does not match exactly is ErrBadCallback; an
// unknown (domain, part) pair is ErrInvalidKey. Neither touches the store.
func ParseCallback(data string) (Event, error) {
	m := callbackPattern.FindStringSubmatch(data)
	if m == nil {
		return Event{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}

	key, err := Lookup(m[2], m[3])
	if err != nil {
		return Event{}, fmt.Errorf("%w: %s/%s", err, m[2], m[3])
	}

	return Event{
		Action: Action(m[1]),
		Key:    key,
		UserID: m[4],
	}, nil
}

// CallbackData renders the inverse of ParseCallback.
func CallbackData(action Action, key Key, userID string) string {
	return fmt.Sprintf("%s_%s_%s_%s", action, key.Domain, key.Part, userID)
}
