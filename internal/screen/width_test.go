package screen

import "testing"

func TestRuneWidthASCII(t *testing.T) {
	if w := RuneWidth('a', Capabilities{}); w != 1 {
		t.Fatalf("want 1, got %d", w)
	}
}

func TestRuneWidthCombining(t *testing.T) {
	if w := RuneWidth(0x0301, Capabilities{}); w != 0 { // combining acute accent
		t.Fatalf("want 0, got %d", w)
	}
}

func TestRuneWidthHangulAlwaysWide(t *testing.T) {
	if w := RuneWidth(0xAC00, Capabilities{}); w != 2 { // Hangul syllable GA
		t.Fatalf("want 2, got %d", w)
	}
}

func TestRuneWidthEmojiGated(t *testing.T) {
	r := rune(0x1F600)
	if w := RuneWidth(r, Capabilities{}); w != 1 {
		t.Fatalf("ungated emoji: want 1, got %d", w)
	}
	if w := RuneWidth(r, Capabilities{DoubleWidthEmoji: true}); w != 2 {
		t.Fatalf("gated emoji: want 2, got %d", w)
	}
}

func TestRuneWidthControl(t *testing.T) {
	if w := RuneWidth(0x07, Capabilities{}); w != 2 {
		t.Fatalf("control char: want 2, got %d", w)
	}
}
