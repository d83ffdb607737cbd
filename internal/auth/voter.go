package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VoterIdentityDeriver turns a voter's email into the opaque stable
// identity recorded by the vote ledger. Keyed hashing keeps the raw email
// out of the ledger while staying deterministic per voter. The key never
// rotates without invalidating past votes, so treat it as long-lived.
type VoterIdentityDeriver struct {
	secret []byte
}

// NewVoterIdentityDeriver builds a deriver with the given secret.
func NewVoterIdentityDeriver(secret string) *VoterIdentityDeriver {
	return &VoterIdentityDeriver{secret: []byte(secret)}
}

// Derive returns the opaque identity for the email, empty for blank input.
func (d *VoterIdentityDeriver) Derive(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	mac := hmac.New(sha256.New, d.secret)
	mac.Write([]byte(email))
	return hex.EncodeToString(mac.Sum(nil))
}
