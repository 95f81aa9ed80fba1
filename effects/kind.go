// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownEffect = errors.New("unknown effect")

// Kind names one filter of the chain.
type Kind int

const (
	LowPass Kind = iota + 1
	HighPass
	Echo
	Reverb
	Distortion
)

// Kinds lists every filter kind in declaration order.
var Kinds = []Kind{LowPass, HighPass, Echo, Reverb, Distortion}

var kindNames = map[Kind]string{
	LowPass:    "lowpass",
	HighPass:   "highpass",
	Echo:       "echo",
	Reverb:     "reverb",
	Distortion: "distortion",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind accepts names case-insensitively, with or without a '-' or '_'
// separator ("low-pass", "Low_Pass" and "lowpass" are the same).
func ParseKind(s string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)

	for k, name := range kindNames {
		if name == key {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEffect, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEffect, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so effect lists can be
// written by name in configuration files.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
