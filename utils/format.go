package utils

import (
	"fmt"
	"time"
)

// MessageType selects the color a CLI message is printed with.
type MessageType int

// Message types known by DecorateText.
const (
	DefaultMessage MessageType = iota
	SuccessMessage
	ErrorMessage
	StatusMessage
)

// ANSI escape sequences for the terminal colors.
const (
	DefaultColor = "\x1b[0m"
	StatusColor  = "\x1b[36m"
	SuccessColor = "\x1b[32m"
	ErrorColor   = "\x1b[31m"
)

var messageColors = map[MessageType]string{
	DefaultMessage: DefaultColor,
	StatusMessage:  StatusColor,
	SuccessMessage: SuccessColor,
	ErrorMessage:   ErrorColor,
}

// DecorateText wraps s in the color of its message type and resets the
// terminal color afterwards. Unknown types return s unchanged.
func DecorateText(s string, msgType MessageType) string {
	c, ok := messageColors[msgType]
	if !ok {
		return s
	}
	return c + s + DefaultColor
}

// FormatTime prints a duration as days, hours, minutes and seconds,
// omitting the leading units which are zero.
func FormatTime(d time.Duration) string {
	const day = 24 * time.Hour

	secs := (d % time.Minute).Seconds()
	mins := int64(d%time.Hour) / int64(time.Minute)
	hours := int64(d%day) / int64(time.Hour)

	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %.2fs", mins, secs)
	case d < day:
		return fmt.Sprintf("%dh %dm %.2fs", hours, mins, secs)
	}
	return fmt.Sprintf("%dd %dh %dm %.2fs", int64(d/day), hours, mins, secs)
}

// FormatSize prints a width x height pair the way the CLI reports image dimensions.
func FormatSize(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}
