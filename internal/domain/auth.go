package domain

// SubjectType identifies who a session token was issued to.
type SubjectType string

const (
	SubjectTypeAdmin SubjectType = "ADMIN"
)

// Login outcome statuses reported for matched accounts that may not sign in.
const (
	LoginStatusPending  = "pending"
	LoginStatusRejected = "rejected"
	LoginStatusUnknown  = "unknown"
)

// AuthResult is the outcome of a worker credential check. Status is only set
// when the identifier and password matched but the account is not approved.
type AuthResult struct {
	Valid    bool
	Status   string
	Username string
	Region   string
}
