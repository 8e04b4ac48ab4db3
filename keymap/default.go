package keymap

import (
	k "github.com/Alia5/macropad/keycode"
)

// Default returns the configuration the pad ships with.
//
// Buttons G and H are both ctrl+u, and 'i' is bound to both C and Q. Whether
// those are deliberate remaps is unknown, so they are kept as shipped;
// Table.Duplicates reports them.
func Default() Config {
	return Config{
		Settings: Settings{
			Debug:               false,
			LEDIdleBrightness:   1,
			LEDActiveBrightness: 80,
		},
		Bindings: Table{
			// Top row of toggle switches
			Keys(Hold, k.Char('r')).WithLabel("Button A"),
			Keys(Hold, k.Char('u')).WithLabel("Button B"),
			Keys(Hold, k.Char('i')).WithLabel("Button C"),
			Keys(Hold, k.Char('o')).WithLabel("Button D"),
			Keys(Hold, k.Char('p')).WithLabel("Button E"),
			Keys(Hold, k.Char('[')).WithLabel("Button F"),

			// Bottom row of toggle switches
			Keys(Hold, k.LeftCtrl, k.Char('u')).WithLabel("Button G"),
			Keys(Hold, k.LeftCtrl, k.Char('u')).WithLabel("Button H"),
			Keys(Hold, k.LeftCtrl, k.Char('i')).WithLabel("Button I"),
			Keys(Hold, k.LeftCtrl, k.Char('o')).WithLabel("Button J"),
			Keys(Hold, k.LeftCtrl, k.Char('p')).WithLabel("Button K"),
			Keys(Hold, k.Char(']')).WithLabel("Button L"),

			// Top row of square buttons
			Keys(Hold, k.Hash).WithLabel("Button M"),
			Keys(Hold, k.F11).WithLabel("Button N"),
			Keys(Hold, k.F1).WithLabel("Button O"),
			Keys(Hold, k.F2).WithLabel("Button P"),
			Keys(Hold, k.Char('i')).WithLabel("Button Q"),
			Keys(Hold, k.Char('y')).WithLabel("Button R"),

			// Bottom row of square buttons
			Keys(Hold, k.Char('n')).WithLabel("Button S"),
			Keys(Hold, k.Char('m')).WithLabel("Button T"),
			Keys(Hold, k.Char('l')).WithLabel("Button U"),
			Keys(Hold, k.Semicolon).WithLabel("Button V"),
			Keys(Hold, k.Quote).WithLabel("Button W"),
			Keys(Hold, k.Char('k')).WithLabel("Button X"),

			// Everything below must be TapOnRelease for the D-pad centre
			// pushes (buttons 5 and 10) to work.

			// Left D-pad directions
			Keys(TapOnRelease, k.Char('7')).WithLabel("Button 1"),
			Keys(TapOnRelease, k.LeftCtrl, k.Char('7')).WithLabel("Button 2"),
			Keys(TapOnRelease, k.LeftCtrl, k.Char('6')).WithLabel("Button 3"),
			Keys(TapOnRelease, k.Char('6')).WithLabel("Button 4"),

			// Right D-pad directions
			Keys(TapOnRelease, k.Keypad8).WithLabel("Button 6"),
			Keys(TapOnRelease, k.Keypad2).WithLabel("Button 7"),
			Keys(TapOnRelease, k.Keypad4).WithLabel("Button 8"),
			Keys(TapOnRelease, k.Keypad6).WithLabel("Button 9"),

			// Left and right D-pad centre push
			Keys(TapOnRelease).WithLabel("Button 5"),
			Keys(TapOnRelease, k.Keypad5).WithLabel("Button 10"),
		},
	}
}
