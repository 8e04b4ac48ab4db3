package keyboard

// LED bitmasks of the host's output report.
const (
	LEDNumLock    = 0x01
	LEDCapsLock   = 0x02
	LEDScrollLock = 0x04
	LEDCompose    = 0x08
	LEDKana       = 0x10
)

// DeviceType is the VIIPER device type for a keyboard.
const DeviceType = "keyboard"

// ReportSize is the size of the device's input report: modifier byte,
// reserved byte and a 256-bit key bitmap.
const ReportSize = 34
