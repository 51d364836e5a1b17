package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Decided reports whether s is a terminal reviewer decision.
func (s Status) Decided() bool {
	return s == StatusApproved || s == StatusRejected
}

// NormalizeStatus lower-cases and trims a status typed by a reviewer.
func NormalizeStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

type JoinRequest struct {
	TelegramID  string    `bson:"telegramId" gorm:"column:telegram_id;primaryKey;type:varchar(64)"`
	Username    string    `bson:"username,omitempty" gorm:"column:username"`
	XLink       string    `bson:"xLink" gorm:"column:x_link;not null"`
	Status      Status    `bson:"status" gorm:"column:status;type:varchar(16);not null;default:pending"`
	SubmittedAt time.Time `bson:"submittedAt" gorm:"column:submitted_at;autoCreateTime"`
}

func (JoinRequest) TableName() string {
	return "join_requests"
}

func (r JoinRequest) Validate() error {
	if strings.TrimSpace(r.TelegramID) == "" {
		return fmt.Errorf("join request: telegramId is empty")
	}
	if strings.TrimSpace(r.XLink) == "" {
		return fmt.Errorf("join request %s: xLink is empty", r.TelegramID)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("join request %s: invalid status %q", r.TelegramID, r.Status)
	}
	return nil
}

var (
	ErrRecipientUnreachable = errors.New("recipient unreachable")
	ErrUnknownColumn        = errors.New("unknown column")
)
