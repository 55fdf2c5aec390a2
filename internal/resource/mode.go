package resource

import "encoding/json"

// Mode is the in action's transfer mode.
type Mode int

const (
	// ModeNone means params.mode was absent; in transfers nothing.
	ModeNone Mode = iota
	// ModeSingle downloads exactly the supplied version key.
	ModeSingle
	// ModeAll downloads every selected object not yet on disk.
	ModeAll
	// ModeUnknown is any other value; treated like ModeNone.
	ModeUnknown
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return ""
	case ModeSingle:
		return "single"
	case ModeAll:
		return "all"
	default:
		return "unknown"
	}
}

// UnmarshalText accepts the mode strings of the request document.
// Unrecognised values decode to ModeUnknown rather than failing.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*m = ModeNone
	case "single":
		*m = ModeSingle
	case "all":
		*m = ModeAll
	default:
		*m = ModeUnknown
	}
	return nil
}

// UnmarshalJSON decodes JSON strings through UnmarshalText. Any other JSON
// value is ModeUnknown; null leaves m unchanged.
func (m *Mode) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*m = ModeUnknown
		return nil
	}
	return m.UnmarshalText([]byte(s))
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
