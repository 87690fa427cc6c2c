package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Entity kinds. Each kind is stored under its own directory, collection or key prefix.
const (
	KindUsers    = "users"
	KindMessages = "messages"
	KindLogins   = "logins"
)

// Credential length bounds, counted in characters.
const (
	LoginMinLen    = 4
	LoginMaxLen    = 16
	PasswordMinLen = 4
	PasswordMaxLen = 32
)

// User models a registered account.
// Password holds the encrypted credential token, never the plaintext.
type User struct {
	ID                  string    `json:"id"`
	Login               string    `json:"login"`
	Password            string    `json:"password"`
	Nickname            string    `json:"nickname"`
	AccountCreationDate time.Time `json:"accountCreationDate"`
	IsAdmin             bool      `json:"isAdmin"`
}

// UnmarshalJSON accepts the creation date as an RFC 3339 string, as a zoneless
// ISO local date-time, or as a [year, month, day, hour, minute, second, nanos]
// array with optional trailing fields. Zoneless dates are read as UTC.
func (u *User) UnmarshalJSON(data []byte) error {
	type userAlias User
	aux := struct {
		*userAlias
		AccountCreationDate json.RawMessage `json:"accountCreationDate"`
	}{userAlias: (*userAlias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t, err := parseCreationDate(aux.AccountCreationDate)
	if err != nil {
		return fmt.Errorf("accountCreationDate: %w", err)
	}
	u.AccountCreationDate = t
	return nil
}

const localDateTimeLayout = "2006-01-02T15:04:05.999999999"

func parseCreationDate(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, nil
		}
		return time.ParseInLocation(localDateTimeLayout, s, time.UTC)
	case '[':
		var parts []int
		if err := json.Unmarshal(raw, &parts); err != nil {
			return time.Time{}, err
		}
		if len(parts) < 3 || len(parts) > 7 {
			return time.Time{}, fmt.Errorf("date array has %d fields", len(parts))
		}
		var f [7]int
		copy(f[:], parts)
		return time.Date(f[0], time.Month(f[1]), f[2], f[3], f[4], f[5], f[6], time.UTC), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %s", raw)
	}
}

// LoginClaim reserves a login for exactly one user. It is written with
// exclusive-create semantics before the user record itself.
type LoginClaim struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	UserID    string    `json:"userId"`
	ClaimedAt time.Time `json:"claimedAt"`
}
