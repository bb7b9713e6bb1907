package voicetarget

import (
	"testing"
)

func TestResolve(t *testing.T) {
	r := New()

	tests := []struct {
		transcript string
		want       string
		ok         bool
	}{
		{"i want to find a bottle please", "bottle", true},
		{"Bottle", "bottle", true},
		{"any", Any, true},
		{"show me everything", Any, true},
		{"cell phone", "cell phone", true},
		{"where is my phone?", "cell phone", true},
		{"the dining room table", "dining table", true},
		{"hot dog", "hot dog", true},
		{"a woman", "person", true},
		{"sofa!!", "couch", true},
		{"teddy bear", "teddy bear", true},
		{"", "", false},
		{"xylophone", "", false},
		{"what currency is this", "", false},
		{"12345", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			got, ok := r.Resolve(tt.transcript)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Resolve(%q): got (%q, %v), want (%q, %v)", tt.transcript, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolveWholeWordsOnly(t *testing.T) {
	r := New()
	// "catalog" contains "cat" but is not the word cat
	if got, ok := r.Resolve("catalog"); ok {
		t.Errorf("catalog resolved to %q", got)
	}
}

func TestResolveTableOrderWins(t *testing.T) {
	r := New(WithTable([]Entry{
		{"red cup", "cup"},
		{"cup", "bowl"},
	}))
	if got, _ := r.Resolve("the cup that is red"); got != "cup" {
		t.Errorf("got %q, want the earlier multi-word entry", got)
	}
	if got, _ := r.Resolve("a cup"); got != "bowl" {
		t.Errorf("got %q, want bowl", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Hello,   World! ", "hello world"},
		{"TV-remote", "tv remote"},
		{"3 cups", "cups"},
		{"café", "caf"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsCurrencyCommand(t *testing.T) {
	for _, s := range []string{"Detect currency", "please identify currency now", "what currency is it"} {
		if !IsCurrencyCommand(s) {
			t.Errorf("%q should be a currency command", s)
		}
	}
	if IsCurrencyCommand("currency") {
		t.Error("bare word is not a command")
	}
}

func TestPhoneticFallback(t *testing.T) {
	plain := New()
	if _, ok := plain.Resolve("bottel"); ok {
		t.Fatal("plain resolver should not guess")
	}

	r := New(WithPhonetic(0.85))
	if got, ok := r.Resolve("find the bottel"); !ok || got != "bottle" {
		t.Errorf("got (%q, %v), want bottle", got, ok)
	}
	if _, ok := r.Resolve("zzz"); ok {
		t.Error("nonsense should not match")
	}
}
