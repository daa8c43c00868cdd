package prompt

import (
	"context"

	"imgbuild/internal/runtime"
)

// Preset fixes any decision the caller already knows, typically from flags,
// and defers the rest to Fallback. With a nil Fallback unanswered questions
// get the defaults: local profile, push.
type Preset struct {
	ProfileChoice *runtime.Profile
	PushChoice    *bool
	Fallback      Decider
}

// Profile returns the preset profile or asks Fallback.
func (p *Preset) Profile(ctx context.Context) (runtime.Profile, error) {
	if p.ProfileChoice != nil {
		return *p.ProfileChoice, nil
	}
	if p.Fallback != nil {
		return p.Fallback.Profile(ctx)
	}
	return runtime.ProfileLocal, nil
}

// ConfirmPush returns the preset decision or asks Fallback.
func (p *Preset) ConfirmPush(ctx context.Context, ref string) (bool, error) {
	if p.PushChoice != nil {
		return *p.PushChoice, nil
	}
	if p.Fallback != nil {
		return p.Fallback.ConfirmPush(ctx, ref)
	}
	return true, nil
}
