package models

import (
	"fmt"
	"strings"
)

const (
	ColTelegramID  = "telegramId"
	ColUsername    = "username"
	ColXLink       = "xLink"
	ColStatus      = "status"
	ColSubmittedAt = "submittedAt"
	ColProcessed   = "processed"
)

// Columns is the header written to an empty tab, in order.
var Columns = []string{ColTelegramID, ColUsername, ColXLink, ColStatus, ColSubmittedAt, ColProcessed}

// SheetRow mirrors one JoinRequest in the review tab.
// Number is the 1-based sheet row; zero for rows not written yet.
type SheetRow struct {
	Number      int
	TelegramID  string
	Username    string
	XLink       string
	Status      string
	SubmittedAt string
	Processed   string
}

func (r *SheetRow) Get(column string) (string, error) {
	switch column {
	case ColTelegramID:
		return r.TelegramID, nil
	case ColUsername:
		return r.Username, nil
	case ColXLink:
		return r.XLink, nil
	case ColStatus:
		return r.Status, nil
	case ColSubmittedAt:
		return r.SubmittedAt, nil
	case ColProcessed:
		return r.Processed, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownColumn, column)
}

func (r *SheetRow) Set(column, value string) error {
	switch column {
	case ColTelegramID:
		r.TelegramID = value
	case ColUsername:
		r.Username = value
	case ColXLink:
		r.XLink = value
	case ColStatus:
		r.Status = value
	case ColSubmittedAt:
		r.SubmittedAt = value
	case ColProcessed:
		r.Processed = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	return nil
}

// Values returns the row cells in Columns order.
func (r *SheetRow) Values() []string {
	return []string{r.TelegramID, r.Username, r.XLink, r.Status, r.SubmittedAt, r.Processed}
}

// ID is the telegramId cell without surrounding whitespace.
func (r *SheetRow) ID() string {
	return strings.TrimSpace(r.TelegramID)
}

// AwaitingSync reports whether a reviewer decided on the row and it
// has not been reconciled back yet.
func (r *SheetRow) AwaitingSync() bool {
	return NormalizeStatus(r.Status).Decided() && r.Processed == ""
}
