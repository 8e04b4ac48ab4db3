package keycode

import "sort"

// NamedKey pairs a symbolic name with its code.
type NamedKey struct {
	Name string
	Code KeyCode
}

// Named lists every symbolic key in declaration order. Names are unique;
// codes are not (KEY_HASH and KEY_BACKSLASH share 185), and the first name
// declared for a code is the one String reports.
var Named = []NamedKey{
	{"KEY_NONE", None},

	{"KEY_LEFT_CTRL", LeftCtrl},
	{"KEY_LEFT_SHIFT", LeftShift},
	{"KEY_LEFT_ALT", LeftAlt},
	{"KEY_LEFT_GUI", LeftGUI},
	{"KEY_RIGHT_CTRL", RightCtrl},
	{"KEY_RIGHT_SHIFT", RightShift},
	{"KEY_RIGHT_ALT", RightAlt},
	{"KEY_RIGHT_GUI", RightGUI},

	{"KEYPAD_0", Keypad0},
	{"KEYPAD_1", Keypad1},
	{"KEYPAD_2", Keypad2},
	{"KEYPAD_3", Keypad3},
	{"KEYPAD_4", Keypad4},
	{"KEYPAD_5", Keypad5},
	{"KEYPAD_6", Keypad6},
	{"KEYPAD_7", Keypad7},
	{"KEYPAD_8", Keypad8},
	{"KEYPAD_9", Keypad9},
	{"KEYPAD_ASTERIX", KeypadAsterisk},
	{"KEYPAD_ENTER", KeypadEnter},
	{"KEYPAD_MINUS", KeypadMinus},
	{"KEYPAD_PERIOD", KeypadPeriod},
	{"KEYPAD_PLUS", KeypadPlus},
	{"KEYPAD_SLASH", KeypadSlash},

	{"KEY_HASH", Hash},
	{"KEY_BACKSLASH", Backslash},
	{"KEY_BACKSPACE", Backspace},
	{"KEY_CAPS_LOCK", CapsLock},
	{"KEY_COMMA", Comma},
	{"KEY_DELETE", Delete},
	{"KEY_DOWN", Down},
	{"KEY_END", End},
	{"KEY_ENTER", Enter},
	{"KEY_EQUAL", Equal},
	{"KEY_ESC", Esc},

	{"KEY_F1", F1},
	{"KEY_F2", F2},
	{"KEY_F3", F3},
	{"KEY_F4", F4},
	{"KEY_F5", F5},
	{"KEY_F6", F6},
	{"KEY_F7", F7},
	{"KEY_F8", F8},
	{"KEY_F9", F9},
	{"KEY_F10", F10},
	{"KEY_F11", F11},
	{"KEY_F12", F12},
	{"KEY_F13", F13},
	{"KEY_F14", F14},
	{"KEY_F15", F15},
	{"KEY_F16", F16},
	{"KEY_F17", F17},
	{"KEY_F18", F18},
	{"KEY_F19", F19},
	{"KEY_F20", F20},
	{"KEY_F21", F21},
	{"KEY_F22", F22},
	{"KEY_F23", F23},
	{"KEY_F24", F24},

	{"KEY_HOME", Home},
	{"KEY_INSERT", Insert},
	{"KEY_LEFT", Left},
	{"KEY_LEFT_BRACE", LeftBrace},
	{"KEY_MENU", Menu},
	{"KEY_MINUS", Minus},
	{"KEY_NON_US_NUM", NonUSNum},
	{"KEY_NUM_LOCK", NumLock},
	{"KEY_PAGE_DOWN", PageDown},
	{"KEY_PAGE_UP", PageUp},
	{"KEY_PAUSE", Pause},
	{"KEY_PERIOD", Period},
	{"KEY_PRINTSCREEN", PrintScreen},
	{"KEY_QUOTE", Quote},
	{"KEY_RIGHT", Right},
	{"KEY_RIGHT_BRACE", RightBrace},
	{"KEY_SCROLL_LOCK", ScrollLock},
	{"KEY_SEMICOLON", Semicolon},
	{"KEY_SLASH", Slash},
	{"KEY_SPACE", Space},
	{"KEY_TAB", Tab},
	{"KEY_TILDE", Tilde},
	{"KEY_UP", Up},
}

var (
	byName    = make(map[string]KeyCode, len(Named))
	canonical = make(map[KeyCode]string, len(Named))
)

func init() {
	for _, n := range Named {
		byName[n.Name] = n.Code
		if n.Code == None {
			continue
		}
		if _, ok := canonical[n.Code]; !ok {
			canonical[n.Code] = n.Name
		}
	}
}

// Names returns every symbolic name, sorted.
func Names() []string {
	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
