package platform

import (
	"fmt"
	"strings"
)

// Key identifies a keyboard key the scene reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyLeftShift
	KeyEscape
	KeyP
	KeyN
	KeyQ
	KeyE
	KeyF1
	keyCount
)

var keyNames = [keyCount]string{
	KeyUnknown:   "unknown",
	KeyW:         "w",
	KeyA:         "a",
	KeyS:         "s",
	KeyD:         "d",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeySpace:     "space",
	KeyLeftShift: "left_shift",
	KeyEscape:    "escape",
	KeyP:         "p",
	KeyN:         "n",
	KeyQ:         "q",
	KeyE:         "e",
	KeyF1:        "f1",
}

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return fmt.Sprintf("key(%d)", int(k))
	}
	return keyNames[k]
}

// ParseKey maps a key name ("w", "left_shift", "ESCAPE") to a Key.
func ParseKey(name string) (Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k := KeyW; k < keyCount; k++ {
		if keyNames[k] == name {
			return k, nil
		}
	}
	return KeyUnknown, fmt.Errorf("unknown key %q", name)
}

// UnmarshalText lets input scripts name keys directly.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// KeyState is the per-frame state of one key.
type KeyState int

const (
	StateUp KeyState = iota
	StateJustPressed
	StateDown
	StateJustReleased
)

func (s KeyState) String() string {
	switch s {
	case StateJustPressed:
		return "just_pressed"
	case StateDown:
		return "down"
	case StateJustReleased:
		return "just_released"
	default:
		return "up"
	}
}

// IsDown reports whether the key is held this frame.
func (s KeyState) IsDown() bool {
	return s == StateJustPressed || s == StateDown
}

// settle moves edge states to their steady counterparts at frame start.
func (s KeyState) settle() KeyState {
	switch s {
	case StateJustPressed:
		return StateDown
	case StateJustReleased:
		return StateUp
	default:
		return s
	}
}
