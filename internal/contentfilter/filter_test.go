package contentfilter

import "testing"

func TestIsClean(t *testing.T) {
	f := New([]string{"Badword", " other "})

	tests := []struct {
		text string
		want bool
	}{
		{"a perfectly fine sentence", true},
		{"contains badword here", false},
		{"contains BADWORD here", false},
		{"badwordy is a different word", true},
		{"hidden <b>badword</b> in markup", false},
		{"other", false},
		{"", true},
	}
	for _, tt := range tests {
		if got := f.IsClean(tt.text); got != tt.want {
			t.Fatalf("IsClean(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestEmptyFilterAcceptsEverything(t *testing.T) {
	f := New(nil)
	if !f.IsClean("anything at all") {
		t.Fatalf("empty filter rejected text")
	}
}
