package youdao

import "strings"

// Language is the value of the dictionary's "le" request parameter.
type Language string

const (
	LangEnglish  Language = "eng"
	LangKorean   Language = "ko"
	LangJapanese Language = "jap"
)

type runeRange struct{ lo, hi rune }

var (
	cjkIdeographs = []runeRange{{0x4E00, 0x9FA5}}
	hangul        = []runeRange{{0xAC00, 0xD7A3}}
	kana          = []runeRange{{0x3040, 0x309F}, {0x30A0, 0x30FF}}
)

func containsRange(s string, ranges []runeRange) bool {
	for _, r := range s {
		for _, rg := range ranges {
			if r >= rg.lo && r <= rg.hi {
				return true
			}
		}
	}
	return false
}

// ClassifyLanguage picks the dictionary language for a query. Chinese
// queries look up the English dictionary, as does anything without Hangul
// or kana. Ideographs win over kana, so kanji-bearing Japanese is treated
// as Chinese.
func ClassifyLanguage(query string) Language {
	switch {
	case containsRange(query, cjkIdeographs):
		return LangEnglish
	case containsRange(query, hangul):
		return LangKorean
	case containsRange(query, kana):
		return LangJapanese
	default:
		return LangEnglish
	}
}

// IsChinese reports whether query contains a CJK unified ideograph.
func IsChinese(query string) bool {
	return containsRange(query, cjkIdeographs)
}

// NormalizeQuery trims and lower-cases a raw launcher query.
func NormalizeQuery(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
