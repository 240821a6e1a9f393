package interaction

import "unicode/utf8"

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyCtrlC
)

// parseInput turns one read from the terminal into key events. A read may hold several
// keystrokes when text is pasted.
func parseInput(buf []byte) []KeyEvent {
	var events []KeyEvent
	for len(buf) > 0 {
		b := buf[0]
		switch {
		case b == 3:
			events = append(events, KeyEvent{Key: 3, Type: KeyCtrlC})
			buf = buf[1:]
		case b == 27:
			if len(buf) >= 3 && buf[1] == '[' {
				switch buf[2] {
				case 'A':
					events = append(events, KeyEvent{Type: KeyUp})
				case 'B':
					events = append(events, KeyEvent{Type: KeyDown})
				}
				buf = buf[3:]
				continue
			}
			events = append(events, KeyEvent{Key: 27, Type: KeyEscape})
			buf = buf[1:]
		case b == '\r' || b == '\n':
			events = append(events, KeyEvent{Key: '\n', Type: KeyEnter})
			buf = buf[1:]
		case b == 127 || b == 8:
			events = append(events, KeyEvent{Key: rune(b), Type: KeyBackspace})
			buf = buf[1:]
		case b == '\t':
			events = append(events, KeyEvent{Key: '\t', Type: KeyTab})
			buf = buf[1:]
		case b < 32:
			buf = buf[1:]
		default:
			r, size := utf8.DecodeRune(buf)
			if r != utf8.RuneError {
				events = append(events, KeyEvent{Key: r, Type: KeyChar})
			}
			buf = buf[size:]
		}
	}
	return events
}
