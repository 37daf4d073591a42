// Package launch turns the raw launch inputs of a session (URL fragment,
// query parameters and host init data) into profile sources.
package launch

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/ladder/internal/domain/profile"
)

// DefaultMarker precedes the payload in the URL fragment.
const DefaultMarker = "sync="

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Decoder extracts the cross-session payload from a URL fragment.
type Decoder struct {
	marker string
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMarker sets the fragment marker.
func WithMarker(marker string) DecoderOption {
	return func(d *Decoder) {
		if marker != "" {
			d.marker = marker
		}
	}
}

// NewDecoder creates a Decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{marker: DefaultMarker}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode returns an absent source when the marker is missing and an absent
// source with an ErrDecode error when the payload is malformed.
func (d *Decoder) Decode(fragment string) (profile.Source, error) {
	absent := profile.Absent(profile.KindPayload)

	i := strings.Index(fragment, d.marker)
	if i < 0 {
		return absent, nil
	}
	encoded := fragment[i+len(d.marker):]
	if j := strings.IndexByte(encoded, '&'); j >= 0 {
		encoded = encoded[:j]
	}
	if encoded == "" {
		return absent, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	unescaped, err := url.PathUnescape(encoded)
	if err != nil {
		return absent, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	raw, err := decodeBase64(unescaped)
	if err != nil {
		return absent, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec map[string]any
	if err := dec.Decode(&rec); err != nil {
		return absent, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if rec == nil {
		return absent, fmt.Errorf("%w: payload is not an object", ErrDecode)
	}
	return profile.FromRecord(profile.KindPayload, rec), nil
}

func decodeBase64(s string) ([]byte, error) {
	var firstErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
