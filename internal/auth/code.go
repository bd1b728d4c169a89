// Package auth provides the confirmation-code generator and the JWT
// access-token issuer used by the signup/token exchange flow.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PaulSssar/yamdb-final/internal/model"
)

// codeHashLen is the number of hex characters kept from the HMAC digest.
const codeHashLen = 32

// CodeGenerator mints and checks confirmation codes. Codes are not stored:
// a code is an HMAC over the user's mutable fields plus a timestamp, so any
// change to the user (including the last-login bump on a successful
// exchange) invalidates previously issued codes.
type CodeGenerator struct {
	secret []byte
	ttl    time.Duration

	// now is overridable in tests.
	now func() time.Time
}

// NewCodeGenerator creates a generator with the given signing secret and
// code lifetime.
func NewCodeGenerator(secret string, ttl time.Duration) *CodeGenerator {
	return &CodeGenerator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Make returns a confirmation code for the user, valid until the TTL
// expires or the user record changes.
func (g *CodeGenerator) Make(user *model.User) string {
	ts := g.now().Unix()
	return strconv.FormatInt(ts, 36) + "-" + g.sign(user, ts)
}

// Check reports whether code is a currently valid confirmation code for
// the user. Comparison is constant-time.
func (g *CodeGenerator) Check(user *model.User, code string) bool {
	tsPart, hashPart, ok := strings.Cut(code, "-")
	if !ok {
		return false
	}

	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}

	now := g.now()
	issued := time.Unix(ts, 0)
	if issued.After(now) || now.Sub(issued) > g.ttl {
		return false
	}

	want := g.sign(user, ts)
	return subtle.ConstantTimeCompare([]byte(want), []byte(hashPart)) == 1
}

// sign binds the code to all mutable identity fields of the user.
func (g *CodeGenerator) sign(user *model.User, ts int64) string {
	var lastLogin int64
	if user.LastLoginAt.Valid {
		lastLogin = user.LastLoginAt.Time.Unix()
	}

	state := fmt.Sprintf("%d|%s|%s|%s|%d|%d",
		user.ID, user.Username, user.Email, user.Role, lastLogin, ts)

	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(state))
	return hex.EncodeToString(mac.Sum(nil))[:codeHashLen]
}
