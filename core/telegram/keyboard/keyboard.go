// Package keyboard builds inline keyboards as plain button grids. The grid
// types carry no transport dependencies so domain code can construct and test
// keyboards as pure values; ToTelebot converts a grid at the transport edge.
package keyboard

import tele "gopkg.in/telebot.v4"

// Button is one inline button: a label plus an opaque callback token.
type Button struct {
	Text string
	Data string
}

// Markup is a two-dimensional button grid, rows of buttons.
type Markup [][]Button

// Row groups buttons into a single keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}

// Rows assembles a markup from the given rows, skipping empty ones.
func Rows(rows ...[]Button) Markup {
	var m Markup
	for _, r := range rows {
		if len(r) == 0 {
			continue
		}
		m = append(m, r)
	}
	return m
}

// Column places each button on its own row.
func Column(buttons ...Button) Markup {
	m := make(Markup, 0, len(buttons))
	for _, b := range buttons {
		m = append(m, []Button{b})
	}
	return m
}

// ToTelebot converts the grid into a telebot inline keyboard.
// A nil or empty markup converts to nil so callers can pass it through.
func ToTelebot(m Markup) *tele.ReplyMarkup {
	if len(m) == 0 {
		return nil
	}
	inline := make([][]tele.InlineButton, 0, len(m))
	for _, row := range m {
		r := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			r = append(r, tele.InlineButton{Text: b.Text, Data: b.Data})
		}
		inline = append(inline, r)
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}
