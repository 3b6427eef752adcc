// Package account holds the Account and RegistrationCode records (§3) and
// the password KDF used to produce and verify Account.PasswordHash.
package account

import "github.com/google/uuid"

// Type is the account kind, serialized as the capitalized strings the
// original aqaSend Rust implementation used ("Admin" / "User") so a
// snapshot written by either implementation round-trips the same way.
type Type string

const (
	Admin Type = "Admin"
	User  Type = "User"
)

// Valid reports whether t is one of the two recognized account kinds.
func (t Type) Valid() bool {
	return t == Admin || t == User
}

// Account is the authoritative record for one registered user (§3). Never
// mutated after creation in this spec.
type Account struct {
	UUID         uuid.UUID `json:"uuid"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	AccType      Type      `json:"acc_type"`
}

// RegistrationCode authorizes self-service account creation at a
// predetermined account kind (§3). Current behavior (§9 Open Questions):
// redemption does not remove the code, so it may be reused.
type RegistrationCode struct {
	Code        uuid.UUID `json:"code"`
	AccountKind Type      `json:"account_kind"`
}
