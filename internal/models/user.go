package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Phone        string             `json:"phone" bson:"phone"`
	PasswordHash string             `json:"-" bson:"passwordHash"`
	// VIP maps a catalog flag key (e.g. "isInformatiqueHardware") to its
	// granted state. Absent key means not granted.
	VIP          map[string]bool `json:"vip" bson:"vip"`
	OTP          string          `json:"-" bson:"otp,omitempty"`
	OTPExpiresAt *time.Time      `json:"-" bson:"otpExpiresAt,omitempty"`
	CreatedAt    time.Time       `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time       `json:"updated_at" bson:"updatedAt"`
}

// HasEntitlement reports whether the flag identified by key is granted.
func (u *User) HasEntitlement(key string) bool {
	return u.VIP[key]
}

// NormalizePhone enforces the canonical storage form: a leading + followed
// by the digits as submitted. Lookups by phone always use this form.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return phone
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return phone
}
