package locale

import "github.com/dinelog/internal/db"

// Pick returns the text matching the request language, defaulting to Chinese.
func Pick(language, english, chinese string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return chinese
	}
	if chinese != "" {
		return chinese
	}
	return english
}

// DisplayName 按语言返回餐厅名称，缺失时回退到另一种语言。
func DisplayName(name db.LocalizedName, language string) string {
	return Pick(language, name.EN, name.ZhTW)
}
