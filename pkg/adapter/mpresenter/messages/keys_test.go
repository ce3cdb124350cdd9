// 指示: miu200521358
package messages

import (
	"testing"

	"golang.org/x/text/language"
)

func TestKeysAreDefinedAndTranslated(t *testing.T) {
	seen := map[string]struct{}{}
	for _, key := range Keys() {
		if key == "" {
			t.Fatalf("key should not be empty")
		}
		if _, exists := seen[key]; exists {
			t.Fatalf("key should be unique: %s", key)
		}
		seen[key] = struct{}{}
		if _, ok := englishTexts[key]; !ok {
			t.Fatalf("english text missing: %s", key)
		}
	}
	for key := range englishTexts {
		if _, ok := seen[key]; !ok {
			t.Fatalf("english text for unknown key: %s", key)
		}
	}
}

func TestResolveLanguage(t *testing.T) {
	cases := map[string]language.Tag{
		"":      language.Japanese,
		"ja":    language.Japanese,
		"en":    language.English,
		"en-US": language.English,
	}
	for input, want := range cases {
		if got := ResolveLanguage(input); got != want {
			t.Fatalf("language mismatch for %q: %s", input, got)
		}
	}
}

func TestPrinterFormatsByLanguage(t *testing.T) {
	english, err := NewPrinter("en")
	if err != nil {
		t.Fatalf("printer failed: %v", err)
	}
	if got := english.Sprintf(LogSaveSuccess, "out.yaml"); got != "Scene saved: out.yaml" {
		t.Fatalf("english mismatch: %s", got)
	}

	japanese, err := NewPrinter("ja")
	if err != nil {
		t.Fatalf("printer failed: %v", err)
	}
	if got := japanese.Sprintf(LogSaveSuccess, "out.yaml"); got != "シーン保存成功: out.yaml" {
		t.Fatalf("japanese mismatch: %s", got)
	}
	if got := japanese.Sprintf(HelpUsageTitle); got != "使い方" {
		t.Fatalf("japanese mismatch: %s", got)
	}
}
