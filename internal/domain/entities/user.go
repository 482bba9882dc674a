package entities

import (
	"encoding/json"
	"time"
)

// User represents a bot user linked to an exam-prep account.
type User struct {
	ID                int64  // Telegram user ID
	ChatID            int64  // private chat with the bot
	AccountID         string // user identifier on the exam-prep API
	Token             string // bearer token, empty until login
	Name              string
	IsProfileComplete bool
	IsActive          bool
	LastRemindedAt    *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewUser creates an active user without credentials.
func NewUser(id, chatID int64) *User {
	now := time.Now()
	return &User{
		ID:        id,
		ChatID:    chatID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Authenticated reports whether the user can call endpoints that require an account.
func (u *User) Authenticated() bool {
	return u.Token != "" && u.AccountID != ""
}

// Account is the identity returned by the exam-prep API after a login.
type Account struct {
	ID                string `json:"-"`
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	TargetExam        string `json:"targetExam,omitempty"`
	IsProfileComplete bool   `json:"isProfileComplete"`
}

// UnmarshalJSON accepts the account id as either "_id" or "id".
func (a *Account) UnmarshalJSON(data []byte) error {
	type plain Account
	var raw struct {
		plain
		MongoID string `json:"_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Account(raw.plain)
	a.ID = raw.MongoID
	if a.ID == "" {
		a.ID = raw.ID
	}
	return nil
}
