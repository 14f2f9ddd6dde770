package lang

import (
	"fmt"
	"strings"
)

// validLanguages contains ISO 639-1 language codes recognized by Whisper,
// both the local CLI and OpenAI's transcription endpoint.
// Not exhaustive, but covers the languages Whisper transcribes well.
var validLanguages = map[string]bool{
	"af": true, // Afrikaans
	"ar": true, // Arabic
	"bg": true, // Bulgarian
	"bn": true, // Bengali
	"ca": true, // Catalan
	"cs": true, // Czech
	"da": true, // Danish
	"de": true, // German
	"el": true, // Greek
	"en": true, // English
	"es": true, // Spanish
	"et": true, // Estonian
	"fa": true, // Persian
	"fi": true, // Finnish
	"fr": true, // French
	"he": true, // Hebrew
	"hi": true, // Hindi
	"hr": true, // Croatian
	"hu": true, // Hungarian
	"id": true, // Indonesian
	"it": true, // Italian
	"ja": true, // Japanese
	"ko": true, // Korean
	"lt": true, // Lithuanian
	"lv": true, // Latvian
	"ms": true, // Malay
	"nl": true, // Dutch
	"no": true, // Norwegian
	"pl": true, // Polish
	"pt": true, // Portuguese
	"ro": true, // Romanian
	"ru": true, // Russian
	"sk": true, // Slovak
	"sl": true, // Slovenian
	"sr": true, // Serbian
	"sv": true, // Swedish
	"sw": true, // Swahili
	"ta": true, // Tamil
	"th": true, // Thai
	"tr": true, // Turkish
	"uk": true, // Ukrainian
	"ur": true, // Urdu
	"vi": true, // Vietnamese
	"zh": true, // Chinese
}

// Normalize normalizes a language code to lowercase with hyphen separator.
// Accepts: "pt-BR", "pt_BR", "PT-BR", "pt-br" -> "pt-br"
func Normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, "_", "-"))
}

// Validate checks if the language code is valid.
// Accepts ISO 639-1 codes (e.g., "en", "fr") and locales (e.g., "pt-BR").
// Empty means auto-detect, which is valid.
func Validate(code string) error {
	if code == "" {
		return nil
	}

	base := BaseCode(code)
	if !validLanguages[base] {
		return fmt.Errorf("invalid language code %q (use ISO 639-1 codes like 'en', 'fr', 'pt-BR'): %w",
			code, ErrInvalid)
	}

	return nil
}

// BaseCode extracts the ISO 639-1 base language code from a locale.
// Both whisper and the transcription API only accept base codes.
// Examples: "pt-BR" -> "pt", "zh-CN" -> "zh", "en" -> "en"
func BaseCode(code string) string {
	if code == "" {
		return ""
	}
	normalized := Normalize(code)
	if idx := strings.Index(normalized, "-"); idx != -1 {
		return normalized[:idx]
	}
	return normalized
}
