package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\033[K"

// Console keeps a single status line on a terminal up to date.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	styles map[Style]lipgloss.Style
	last   string
}

// NewConsole writes to out. Colors degrade to plain text when out is not a
// terminal.
func NewConsole(out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		out: out,
		styles: map[Style]lipgloss.Style{
			StyleInactive:  r.NewStyle().Faint(true),
			StyleActive:    r.NewStyle().Foreground(lipgloss.Color("10")),
			StyleProminent: r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
			StyleError:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		},
	}
}

func (c *Console) Update(f Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := c.styles[f.Style].Render(f.Text)
	if line == c.last {
		return
	}
	c.last = line
	fmt.Fprint(c.out, clearLine+line)
}

func (c *Console) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = ""
	fmt.Fprint(c.out, clearLine)
}
