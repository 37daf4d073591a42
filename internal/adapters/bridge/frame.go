package bridge

import "encoding/json"

// Frame kinds written to the host.
const (
	KindHaptic       = "haptic"
	KindNotification = "notification"
	KindAlert        = "alert"
	KindSend         = "send"
)

// Frame is one message on the host websocket. The page relays it to the
// platform API named by Kind.
type Frame struct {
	Kind    string          `json:"kind"`
	Style   string          `json:"style,omitempty"`
	Type    string          `json:"type,omitempty"`
	Text    string          `json:"text,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
