package domain

import (
	"strings"
	"time"
)

// AccountStatus represents the approval state of a worker registration.
type AccountStatus string

const (
	AccountStatusPending  AccountStatus = "PENDING"
	AccountStatusApproved AccountStatus = "APPROVED"
	AccountStatusRejected AccountStatus = "REJECTED"
)

// Account is one field worker registration awaiting or holding admin approval.
type Account struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Region         string
	Username       string
	PasswordHash   string
	IDCardNumber   string
	IDCardImageURL string
	Status         AccountStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var accountTransitions = map[AccountStatus][]AccountStatus{
	AccountStatusPending:  {AccountStatusApproved, AccountStatusRejected},
	AccountStatusApproved: {},
	AccountStatusRejected: {},
}

// IsValidAccountTransition reports whether the approval state machine allows current -> next.
func IsValidAccountTransition(current, next AccountStatus) bool {
	for _, candidate := range accountTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseApprovalAction normalizes an admin decision. Only APPROVED and REJECTED are legal.
func ParseApprovalAction(raw string) (AccountStatus, bool) {
	action := AccountStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch action {
	case AccountStatusApproved, AccountStatusRejected:
		return action, true
	default:
		return "", false
	}
}
