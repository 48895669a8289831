package moov

import (
	"strings"
	"testing"
)

func TestTruncateTitle(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"  Dune  ", 100, "Dune"},
		{strings.Repeat("a", 100), 100, strings.Repeat("a", 100)},
		{strings.Repeat("a", 101), 100, strings.Repeat("a", 100) + "..."},
		{strings.Repeat("ю", 101), 100, strings.Repeat("ю", 100) + "..."},
		{"", 100, ""},
	}
	for _, tc := range cases {
		if got := truncateTitle(tc.in, tc.max); got != tc.want {
			t.Errorf("truncateTitle(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestListText(t *testing.T) {
	if got := listText(nil); got != msgListEmpty {
		t.Errorf("empty list text = %q", got)
	}
	got := listText([]string{"Dune", "Alien"})
	if !strings.HasPrefix(got, msgListHeader) {
		t.Errorf("list text missing header: %q", got)
	}
	if !strings.Contains(got, "1. Dune") || !strings.Contains(got, "2. Alien") {
		t.Errorf("list text missing numbered entries: %q", got)
	}
}

func TestListKeyboard(t *testing.T) {
	full := listKeyboard(3, 3)
	for _, row := range full {
		for _, b := range row {
			if b.Data == cbListAdd {
				t.Error("full list must not offer the add button")
			}
		}
	}

	empty := listKeyboard(0, 3)
	for _, row := range empty {
		for _, b := range row {
			if b.Data == cbListRemove {
				t.Error("empty list must not offer the remove button")
			}
		}
	}
	if len(empty) == 0 {
		t.Error("empty list should still offer the add button")
	}
}

func TestCapMessage(t *testing.T) {
	got := capMessage(3)
	if !strings.Contains(got, "<b>3 movies</b>") {
		t.Errorf("cap message = %q", got)
	}
}

func TestAffirmative(t *testing.T) {
	cases := []struct {
		ids  []int
		want bool
	}{
		{[]int{0}, true},
		{[]int{1}, false},
		{[]int{2}, false},
		{[]int{0, 1}, false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := affirmative(tc.ids); got != tc.want {
			t.Errorf("affirmative(%v) = %v, want %v", tc.ids, got, tc.want)
		}
	}
}
