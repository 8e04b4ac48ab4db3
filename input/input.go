// Package input provides the button sources that feed a macro.Engine: a
// text line protocol over stdin or TCP, WebSocket clients and a physical
// HID button box. Every source is a suture service.
package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/Alia5/macropad/macro"
)

// ErrInputClosed is returned by sources whose input ended for good, such as
// stdin reaching EOF.
var ErrInputClosed = errors.New("input closed")

// ParseLine parses one line of the line protocol:
//
//	down <button>
//	up <button>
//	tap <button>    # down then up
//
// Blank lines and anything after '#' are ignored.
func ParseLine(line string) ([]macro.Event, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields) != 2 {
		return nil, fmt.Errorf("expected \"<down|up|tap> <button>\", got %q", strings.Join(fields, " "))
	}
	btn, err := strconv.Atoi(fields[1])
	if err != nil || btn < 0 {
		return nil, fmt.Errorf("invalid button %q", fields[1])
	}
	switch strings.ToLower(fields[0]) {
	case "down", "press":
		return []macro.Event{{Button: btn, Pressed: true}}, nil
	case "up", "release":
		return []macro.Event{{Button: btn, Pressed: false}}, nil
	case "tap":
		return []macro.Event{{Button: btn, Pressed: true}, {Button: btn, Pressed: false}}, nil
	}
	return nil, fmt.Errorf("unknown command %q", fields[0])
}

func send(ctx context.Context, out chan<- macro.Event, evs ...macro.Event) error {
	for _, ev := range evs {
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// pressed tracks the buttons one client holds, so they can be released
// when the client goes away.
type pressed map[int]struct{}

func (p pressed) track(evs []macro.Event) {
	for _, ev := range evs {
		if ev.Pressed {
			p[ev.Button] = struct{}{}
		} else {
			delete(p, ev.Button)
		}
	}
}

func (p pressed) releases() []macro.Event {
	buttons := make([]int, 0, len(p))
	for b := range p {
		buttons = append(buttons, b)
	}
	slices.Sort(buttons)
	out := make([]macro.Event, 0, len(buttons))
	for _, b := range buttons {
		out = append(out, macro.Event{Button: b})
	}
	return out
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
