package locale

import "strings"

const (
	LanguageChinese = "zh"
	LanguageEnglish = "en"
)

// Preference 描述一次请求最终生效的语言偏好
type Preference struct {
	Language string
	Locale   string
	HTMLLang string
}

// NormalizeLanguage 把各种语言写法归一为 zh/en，无法识别时返回空串
func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "zh") || trimmed == "cn" {
		return LanguageChinese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage 从 Accept-Language 头推断语言
func LanguageFromAcceptLanguage(header string) string {
	trimmed := strings.ToLower(strings.TrimSpace(header))
	if trimmed == "" {
		return ""
	}
	if strings.Contains(trimmed, "zh") {
		return LanguageChinese
	}
	if strings.Contains(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// Resolve 按 显式参数 > 存储偏好 > Accept-Language 的顺序决定语言，
// 全部缺失时回退中文。周报等本地化输出以此为准。
func Resolve(explicit, stored, acceptHeader string) string {
	if lang := NormalizeLanguage(explicit); lang != "" {
		return lang
	}
	if lang := NormalizeLanguage(stored); lang != "" {
		return lang
	}
	if lang := LanguageFromAcceptLanguage(acceptHeader); lang != "" {
		return lang
	}
	return LanguageChinese
}

// PreferenceForLanguage 展开语言对应的 locale 标识
func PreferenceForLanguage(language string) Preference {
	normalized := NormalizeLanguage(language)
	if normalized == LanguageEnglish {
		return Preference{Language: LanguageEnglish, Locale: "en_US", HTMLLang: "en-US"}
	}
	return Preference{Language: LanguageChinese, Locale: "zh_CN", HTMLLang: "zh-CN"}
}

// Pick 按请求语言返回对应文案，默认中文
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
