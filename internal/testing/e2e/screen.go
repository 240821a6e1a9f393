package e2e

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// StripANSI removes CSI escape sequences.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// Screen is a minimal virtual terminal: enough CSI handling to replay what the
// timeline renderer writes (cursor home/position, erase line, erase display).
type Screen struct {
	rows, cols int
	cells      [][]rune
	x, y       int
}

func NewScreen(rows, cols int) *Screen {
	s := &Screen{rows: rows, cols: cols, cells: make([][]rune, rows)}
	for i := range s.cells {
		s.cells[i] = blankRow(cols)
	}
	return s
}

func blankRow(cols int) []rune {
	row := make([]rune, cols)
	for i := range row {
		row[i] = ' '
	}
	return row
}

// Replay feeds raw terminal output into a fresh rows x cols screen.
func Replay(output string, rows, cols int) *Screen {
	s := NewScreen(rows, cols)
	s.Write(output)
	return s
}

func (s *Screen) Write(output string) {
	runes := []rune(output)
	for i := 0; i < len(runes); {
		switch r := runes[i]; {
		case r == '\x1b' && i+1 < len(runes) && runes[i+1] == '[':
			i = s.csi(runes, i+2)
		case r == '\x1b':
			i += 2
		case r == '\r':
			s.x = 0
			i++
		case r == '\n':
			s.lineFeed()
			i++
		case r == '\b':
			if s.x > 0 {
				s.x--
			}
			i++
		default:
			s.put(r)
			i++
		}
	}
}

// csi parses one control sequence starting after "ESC [" and returns the next index.
func (s *Screen) csi(runes []rune, i int) int {
	private := false
	var params []int
	current := 0
	for ; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '?':
			private = true
		case r >= '0' && r <= '9':
			current = current*10 + int(r-'0')
		case r == ';':
			params = append(params, current)
			current = 0
		default:
			params = append(params, current)
			if !private {
				s.command(r, params)
			}
			return i + 1
		}
	}
	return i
}

func (s *Screen) command(cmd rune, params []int) {
	arg := func(i, def int) int {
		if i < len(params) && params[i] > 0 {
			return params[i]
		}
		return def
	}

	switch cmd {
	case 'H', 'f':
		s.y = clamp(arg(0, 1)-1, 0, s.rows-1)
		s.x = clamp(arg(1, 1)-1, 0, s.cols-1)
	case 'A':
		s.y = clamp(s.y-arg(0, 1), 0, s.rows-1)
	case 'B':
		s.y = clamp(s.y+arg(0, 1), 0, s.rows-1)
	case 'C':
		s.x = clamp(s.x+arg(0, 1), 0, s.cols-1)
	case 'D':
		s.x = clamp(s.x-arg(0, 1), 0, s.cols-1)
	case 'K':
		switch arg(0, 0) {
		case 0:
			s.erase(s.y, s.x, s.cols)
		case 1:
			s.erase(s.y, 0, s.x+1)
		case 2:
			s.erase(s.y, 0, s.cols)
		}
	case 'J':
		switch arg(0, 0) {
		case 0:
			s.erase(s.y, s.x, s.cols)
			for row := s.y + 1; row < s.rows; row++ {
				s.cells[row] = blankRow(s.cols)
			}
		case 2:
			for row := range s.cells {
				s.cells[row] = blankRow(s.cols)
			}
		}
	}
}

func (s *Screen) erase(row, from, to int) {
	if row < 0 || row >= s.rows {
		return
	}
	for x := from; x < to && x < s.cols; x++ {
		s.cells[row][x] = ' '
	}
}

// put writes r at the cursor. Wide runes take two cells; the second holds 0.
func (s *Screen) put(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return
	}
	if s.x+w > s.cols {
		s.x = 0
		s.lineFeed()
	}
	s.cells[s.y][s.x] = r
	if w == 2 {
		s.cells[s.y][s.x+1] = 0
	}
	s.x += w
}

func (s *Screen) lineFeed() {
	s.x = 0
	if s.y < s.rows-1 {
		s.y++
		return
	}
	copy(s.cells, s.cells[1:])
	s.cells[s.rows-1] = blankRow(s.cols)
}

// Line returns row i without trailing blanks.
func (s *Screen) Line(i int) string {
	if i < 0 || i >= s.rows {
		return ""
	}
	var b strings.Builder
	for _, r := range s.cells[i] {
		if r != 0 {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func (s *Screen) String() string {
	lines := make([]string, s.rows)
	for i := range lines {
		lines[i] = s.Line(i)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func (s *Screen) Contains(text string) bool {
	return strings.Contains(s.String(), text)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
