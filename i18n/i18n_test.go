package i18n

import (
	"context"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("fr-FR,fr;q=0.9") != "fr" {
		t.Fatalf("expected fr")
	}
	if DetectLanguage("EN-gb") != "en" {
		t.Fatalf("expected en for EN-gb")
	}
	if DetectLanguage("de-DE,fr;q=0.8") != "fr" {
		t.Fatalf("expected fr as first supported tag")
	}
	if DetectLanguage("") != "en" {
		t.Fatalf("expected default en")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("fr", "required") != "Requis" {
		t.Fatalf("expected Requis")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to en translation
	if T("es", "ai_failed") != "Failed to generate document." {
		t.Fatalf("expected en fallback for es lang")
	}
	if got := Tf("en", "fetch_failed", "cases"); got != "Failed to fetch cases." {
		t.Fatalf("Tf = %q", got)
	}
}

func TestLangContext(t *testing.T) {
	if LangFromContext(context.Background()) != DefaultLang {
		t.Fatalf("expected default language")
	}
	if LangFromContext(WithLang(context.Background(), "fr")) != "fr" {
		t.Fatalf("expected fr from context")
	}
}
