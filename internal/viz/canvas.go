package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille pixel grid. Each cell also carries a foreground
// color; the last colored write into a cell wins.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]string
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]string, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]string, w)
	}
	c.Clear()
	return c
}

// SubSize returns the canvas size in sub-pixels.
func (c *Canvas) SubSize() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set sets a pixel at (x, y) in sub-pixel coordinates.
func (c *Canvas) Set(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// SetColor sets a pixel and tints its cell. An empty hex leaves the tint.
func (c *Canvas) SetColor(x, y int, hex string) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if hex != "" {
		c.Colors[row][col] = hex
	}
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

// IsSet reports whether the pixel at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, ok := c.cell(x, y)
	if !ok {
		return false
	}
	return c.Grid[row][col]&rune(pixelMap[y%4][x%2]) != 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = ""
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle draws a circle outline with the midpoint algorithm.
func (c *Canvas) DrawCircle(cx, cy, r int, hex string) {
	if r <= 0 {
		c.SetColor(cx, cy, hex)
		return
	}
	x, y := r, 0
	err := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			c.SetColor(cx+p[0], cy+p[1], hex)
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// FillCircle lights every pixel within r of (cx, cy).
func (c *Canvas) FillCircle(cx, cy, r int, hex string) {
	if r <= 0 {
		c.SetColor(cx, cy, hex)
		return
	}
	r2 := r * r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r2 {
				c.SetColor(cx+dx, cy+dy, hex)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render returns the grid with cell tints applied. Runs of equal color
// share one style.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Colors[i][j] == c.Colors[i][start] {
				continue
			}
			b.WriteString(tint(c.Colors[i][start], string(row[start:j])))
			start = j
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func tint(hex, s string) string {
	if hex == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(s)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
