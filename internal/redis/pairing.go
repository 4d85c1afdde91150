package redis

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PairingTTL bounds how long a code shown on a TV stays redeemable.
const PairingTTL = 15 * time.Minute

var ErrUnknownCode = errors.New("unknown or expired pairing code")

// Pairings maps short-lived codes displayed on a TV to the device that showed them.
type Pairings struct {
	kv KV
}

func NewPairings(kv KV) *Pairings {
	return &Pairings{kv: kv}
}

func pairingKey(code string) string { return "pairing:" + code }

func (p *Pairings) Register(ctx context.Context, code, deviceID string) error {
	if err := p.kv.Set(ctx, pairingKey(code), deviceID, PairingTTL); err != nil {
		return fmt.Errorf("register pairing code: %w", err)
	}
	return nil
}

// Lookup returns the device behind code without consuming it.
func (p *Pairings) Lookup(ctx context.Context, code string) (string, error) {
	deviceID, err := p.kv.Get(ctx, pairingKey(code))
	if errors.Is(err, ErrMiss) {
		return "", ErrUnknownCode
	}
	if err != nil {
		return "", fmt.Errorf("lookup pairing code: %w", err)
	}
	return deviceID, nil
}

// Redeem returns the device behind code and forgets the code. Of two
// concurrent redeems only one gets the device.
func (p *Pairings) Redeem(ctx context.Context, code string) (string, error) {
	deviceID, err := p.kv.GetDel(ctx, pairingKey(code))
	if errors.Is(err, ErrMiss) {
		return "", ErrUnknownCode
	}
	if err != nil {
		return "", fmt.Errorf("redeem pairing code: %w", err)
	}
	return deviceID, nil
}
