package memory

import (
	"strings"
	"unicode/utf8"
)

// HighBytePlaceholder stands in for bytes 128-255 when a value is not UTF-8.
const HighBytePlaceholder = "."

var controlNames = [...]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL", "BS", "TAB", "LF", "VT", "FF",
	"CR", "SO", "SI", "DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB", "CAN", "EM",
	"SUB", "ESC", "FS", "GS", "RS", "US", "SPACE",
}

// Display renders bytes for humans. Valid UTF-8 is returned unchanged;
// anything else is spelled out byte by byte. The result is for display only
// and must never be turned back into bytes for a write.
func Display(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	for _, c := range b {
		sb.WriteString(byteName(c))
	}
	return sb.String()
}

func byteName(c byte) string {
	switch {
	case int(c) < len(controlNames):
		return controlNames[c]
	case c < 127:
		return string(rune(c))
	case c == 127:
		return "DEL"
	default:
		return HighBytePlaceholder
	}
}
