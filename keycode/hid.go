package keycode

// HID modifier bits, byte 0 of a boot keyboard report.
const (
	ModLeftCtrl   uint8 = 0x01
	ModLeftShift  uint8 = 0x02
	ModLeftAlt    uint8 = 0x04
	ModLeftGUI    uint8 = 0x08
	ModRightCtrl  uint8 = 0x10
	ModRightShift uint8 = 0x20
	ModRightAlt   uint8 = 0x40
	ModRightGUI   uint8 = 0x80
)

// nonPrintingOffset is the distance between a non-ASCII code and its HID
// usage on the keyboard page.
const nonPrintingOffset = 136

// HID converts k to a usage on the HID keyboard page (0x07) and the modifier
// bits that must be held with it. Modifier keys return usage 0 and their own
// bit. ASCII characters use the US layout; shifted characters add
// ModLeftShift. ok is false for the sentinel and for codes with no mapping.
func (k KeyCode) HID() (usage uint8, modifiers uint8, ok bool) {
	switch {
	case k == None:
		return 0, 0, false
	case k.IsModifier():
		return 0, 1 << (k - LeftCtrl), true
	case k < 0x80:
		m, found := asciiUsage[byte(k)]
		if !found {
			return 0, 0, false
		}
		if m.shift {
			modifiers = ModLeftShift
		}
		return m.usage, modifiers, true
	case k >= nonPrintingOffset:
		return uint8(k - nonPrintingOffset), 0, true
	default:
		return 0, 0, false
	}
}

type asciiKey struct {
	usage uint8
	shift bool
}

// asciiUsage maps US layout characters to HID usages.
var asciiUsage = map[byte]asciiKey{
	'\b': {0x2A, false},
	'\t': {0x2B, false},
	'\n': {0x28, false},
	'\r': {0x28, false},
	0x1B: {0x29, false},
	' ':  {0x2C, false},

	'1': {0x1E, false}, '2': {0x1F, false}, '3': {0x20, false}, '4': {0x21, false}, '5': {0x22, false},
	'6': {0x23, false}, '7': {0x24, false}, '8': {0x25, false}, '9': {0x26, false}, '0': {0x27, false},

	'!': {0x1E, true}, '@': {0x1F, true}, '#': {0x20, true}, '$': {0x21, true}, '%': {0x22, true},
	'^': {0x23, true}, '&': {0x24, true}, '*': {0x25, true}, '(': {0x26, true}, ')': {0x27, true},

	'-':  {0x2D, false},
	'=':  {0x2E, false},
	'[':  {0x2F, false},
	']':  {0x30, false},
	'\\': {0x31, false},
	';':  {0x33, false},
	'\'': {0x34, false},
	'`':  {0x35, false},
	',':  {0x36, false},
	'.':  {0x37, false},
	'/':  {0x38, false},

	'_': {0x2D, true},
	'+': {0x2E, true},
	'{': {0x2F, true},
	'}': {0x30, true},
	'|': {0x31, true},
	':': {0x33, true},
	'"': {0x34, true},
	'~': {0x35, true},
	'<': {0x36, true},
	'>': {0x37, true},
	'?': {0x38, true},
}

func init() {
	for c := byte('a'); c <= 'z'; c++ {
		asciiUsage[c] = asciiKey{usage: 0x04 + (c - 'a')}
		asciiUsage[c-'a'+'A'] = asciiKey{usage: 0x04 + (c - 'a'), shift: true}
	}
}
