package storage

import "testing"

func TestParsePath(t *testing.T) {
	cases := []struct {
		path string
		want int
		ok   bool
	}{
		{"movies", 1, true},
		{"votes.participants", 2, true},
		{"votes.participants.user_ids", 3, true},
		{"", 0, false},
		{"a.b.c.d", 0, false},
		{"movies[0]", 0, false},
		{"movies; DROP TABLE records", 0, false},
		{"votes..participants", 0, false},
		{"1leading", 0, false},
	}
	for _, tc := range cases {
		segments, err := parsePath(tc.path)
		if tc.ok && err != nil {
			t.Errorf("parsePath(%q): unexpected error %v", tc.path, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("parsePath(%q): expected error, got %v", tc.path, segments)
			}
			continue
		}
		if len(segments) != tc.want {
			t.Errorf("parsePath(%q) = %v, want %d segments", tc.path, segments, tc.want)
		}
	}
}

func TestPathWithIndex(t *testing.T) {
	segments, err := parsePath("movies")
	if err != nil {
		t.Fatal(err)
	}
	full := pathWithIndex(segments, 2)
	if len(full) != 2 || full[0] != "movies" || full[1] != "2" {
		t.Fatalf("pathWithIndex = %v", full)
	}
	// base slice must not alias the appended one
	if &segments[0] == &full[0] {
		t.Fatal("pathWithIndex aliases its input")
	}
}

func TestActiveKey(t *testing.T) {
	k := ActiveKey(42)
	if k.ChatID != 42 || k.Deleted != 0 {
		t.Fatalf("ActiveKey(42) = %+v", k)
	}
}
