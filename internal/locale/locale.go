package locale

import "strings"

const (
	LanguageChinese = "zh-TW"
	LanguageEnglish = "en"
)

// Preference 描述页面渲染所需的语言信息。
type Preference struct {
	Language string
	HTMLLang string
}

// NormalizeLanguage maps any zh/en variant onto the two supported languages.
func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "zh") || trimmed == "tw" {
		return LanguageChinese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage picks the first supported language in header order.
func LanguageFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if normalized := NormalizeLanguage(tag); normalized != "" {
			return normalized
		}
	}
	return ""
}

// Resolve 优先使用显式的 lang 参数，其次是 Accept-Language，默认中文。
func Resolve(explicit, acceptLanguage string) string {
	if normalized := NormalizeLanguage(explicit); normalized != "" {
		return normalized
	}
	if normalized := LanguageFromAcceptLanguage(acceptLanguage); normalized != "" {
		return normalized
	}
	return LanguageChinese
}

func PreferenceForLanguage(language string) Preference {
	if NormalizeLanguage(language) == LanguageEnglish {
		return Preference{Language: LanguageEnglish, HTMLLang: "en"}
	}
	return Preference{Language: LanguageChinese, HTMLLang: "zh-Hant-TW"}
}
