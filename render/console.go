package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gleb-gusev/bvg-board/dlog"
	"github.com/gleb-gusev/bvg-board/model"
)

const defaultWidth = 16

// ConsoleRenderer is the fallback render sink used when no physical
// display is attached. The default mode prints each departure on one
// truncated line; frame mode reproduces the fixed-size display layout,
// wrapping line and destination over a few rows followed by a minutes row.
type ConsoleRenderer struct {
	Logger *dlog.Logger

	out        io.Writer
	width      int
	frameLines int
}

type ConsoleRendererOption struct {
	f func(*ConsoleRenderer)
}

func ConsoleRendererOutput(w io.Writer) ConsoleRendererOption {
	return ConsoleRendererOption{func(c *ConsoleRenderer) {
		c.out = w
	}}
}

func ConsoleRendererWidth(n int) ConsoleRendererOption {
	return ConsoleRendererOption{func(c *ConsoleRenderer) {
		c.width = n
	}}
}

func ConsoleRendererFrameLines(n int) ConsoleRendererOption {
	return ConsoleRendererOption{func(c *ConsoleRenderer) {
		c.frameLines = n
	}}
}

func NewConsoleRenderer(logger *dlog.Logger, options ...ConsoleRendererOption) *ConsoleRenderer {
	c := &ConsoleRenderer{
		Logger: logger,
		out:    os.Stdout,
		width:  defaultWidth,
	}

	for _, option := range options {
		option.f(c)
	}

	return c
}

func (c *ConsoleRenderer) Render(departure model.Departure) {
	c.Logger.Debugf("render %s", departure.Format())

	if c.frameLines > 0 {
		c.renderFrame(departure)
		return
	}

	if _, err := fmt.Fprintln(c.out, departure.FormatTruncated(c.width)); err != nil {
		c.Logger.Printf("cannot write to console: %s", err.Error())
	}
}

func (c *ConsoleRenderer) renderFrame(departure model.Departure) {
	frame := strings.Builder{}

	for _, row := range Wrap(departure.Line+" "+departure.Destination, c.width, c.frameLines) {
		if row == "" {
			continue
		}
		frame.WriteString(row)
		frame.WriteByte('\n')
	}

	timeRow := strconv.Itoa(departure.MinutesUntil) + " min"
	if departure.Platform != nil {
		timeRow += "  Gl. " + *departure.Platform
	}
	frame.WriteString(timeRow)
	frame.WriteString("\n\n")

	if _, err := fmt.Fprint(c.out, frame.String()); err != nil {
		c.Logger.Printf("cannot write to console: %s", err.Error())
	}
}
