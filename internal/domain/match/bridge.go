package match

import (
	"context"

	"github.com/okian/ladder/internal/domain/model"
)

// Bridge is the host side the machine talks to. Haptics, notifications and
// alerts are best effort; Send reports delivery failures.
type Bridge interface {
	Haptic(ctx context.Context, style string)
	Notify(ctx context.Context, kind string)
	Alert(ctx context.Context, text string)
	Send(ctx context.Context, msg model.Message) error
}

type nopBridge struct{}

func (nopBridge) Haptic(context.Context, string)            {}
func (nopBridge) Notify(context.Context, string)            {}
func (nopBridge) Alert(context.Context, string)             {}
func (nopBridge) Send(context.Context, model.Message) error { return nil }
