package rhyme

import "testing"

func TestTransform(t *testing.T) {
	cases := []struct {
		word string
		want string
		ok   bool
	}{
		{"привет", "хуивет", true},
		{"пока", "хуёка", true},
		{"апельсин", "хуяпельсин", true},
		{"Молоко", "хуёлоко", true},
		{"стрг", "", false},
		{"", "", false},
		{"hello", "", false},
	}
	for _, tc := range cases {
		got, ok := Transform(tc.word)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Transform(%q) = %q, %v; want %q, %v", tc.word, got, ok, tc.want, tc.ok)
		}
	}
}

func TestReply(t *testing.T) {
	if got := Reply("привет всем пока"); got != "хуёка" {
		t.Errorf("Reply rhymes the last word, got %q", got)
	}
	if got := Reply("стрг"); got != NoRhyme {
		t.Errorf("Reply(%q) = %q, want NoRhyme", "стрг", got)
	}
	if got := Reply("   "); got != "" {
		t.Errorf("Reply on blank input = %q, want empty", got)
	}
}
