package launch

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/okian/ladder/internal/domain/profile"
)

const webAppDataKey = "WebAppData"

// handshakeUser is the identity object inside the init data.
type handshakeUser struct {
	ID        json.Number `json:"id"`
	FirstName string      `json:"first_name"`
	Username  string      `json:"username"`
}

// Handshake parses the host platform's init data. Only identity fields are
// taken from it.
type Handshake struct {
	botToken string
}

// HandshakeOption configures a Handshake.
type HandshakeOption func(*Handshake)

// WithBotToken enables signature verification of the init data.
func WithBotToken(token string) HandshakeOption {
	return func(h *Handshake) {
		h.botToken = token
	}
}

// NewHandshake creates a Handshake parser.
func NewHandshake(opts ...HandshakeOption) *Handshake {
	h := &Handshake{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Parse returns the identity carried by initData. Empty init data is an
// absent source; anything unreadable or unsigned is an ErrHandshake.
func (h *Handshake) Parse(initData string) (profile.Source, error) {
	absent := profile.Absent(profile.KindHandshake)
	if initData == "" {
		return absent, nil
	}

	q, err := url.ParseQuery(initData)
	if err != nil {
		return absent, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	if h.botToken != "" {
		if err := verify(q, h.botToken); err != nil {
			return absent, err
		}
	}

	raw := q.Get("user")
	if raw == "" {
		return absent, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var u handshakeUser
	if err := dec.Decode(&u); err != nil {
		return absent, fmt.Errorf("%w: user: %w", ErrHandshake, err)
	}

	s := profile.Partial(profile.KindHandshake)
	if id := u.ID.String(); id != "" {
		s.UserID = profile.Some(id)
	}
	if u.FirstName != "" {
		s.FirstName = profile.Some(u.FirstName)
	}
	if u.Username != "" {
		s.Username = profile.Some(u.Username)
	}
	return s, nil
}

// verify checks the init data hash against the bot token.
func verify(q url.Values, botToken string) error {
	got := q.Get("hash")
	if got == "" {
		return fmt.Errorf("%w: missing hash", ErrHandshake)
	}
	if !hmac.Equal([]byte(got), []byte(Sign(q, botToken))) {
		return fmt.Errorf("%w: hash mismatch", ErrHandshake)
	}
	return nil
}

// Sign computes the init data hash for q (the hash field itself is ignored).
func Sign(q url.Values, botToken string) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+q.Get(k))
	}

	secret := hmac.New(sha256.New, []byte(webAppDataKey))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}
