package tray

import "testing"

func TestCurrentLanguageTracksSelection(t *testing.T) {
	t.Cleanup(func() { SetLanguage("en", nil) })

	SetLanguage("en", nil)
	if got := CurrentLanguage(); got != "en" {
		t.Fatalf("CurrentLanguage() = %q, want en", got)
	}

	SetLanguage("he", nil)
	if got := CurrentLanguage(); got != "he" {
		t.Fatalf("CurrentLanguage() = %q, want he", got)
	}
}

func TestSetVisibleTracksState(t *testing.T) {
	t.Cleanup(func() { SetVisible(false) })

	SetVisible(true)
	if !visible {
		t.Fatal("visible flag not set")
	}
	SetVisible(false)
	if visible {
		t.Fatal("visible flag not cleared")
	}
}
