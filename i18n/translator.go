package i18n

import "strings"

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message; "{key}" placeholders
// in a built-in message are replaced by data["key"].
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"self_selector":             "a descriptor cannot be its own selector",
		"selector_package_conflict": "selector and package cannot both be set",
		"invalid_state":             "invalid state",
		"bad_magic":                 "unrecognized record header",
		"unsupported_version":       "unsupported record version",
		"truncated":                 "input ends before the record is complete",
		"unknown_type":              "unknown value type tag",
		"invalid_length":            "invalid length prefix",
		"invalid_format":            "invalid format",
		"invalid_escape":            "invalid percent escape",
		"missing_end":               "missing end token",
		"trailing_data":             "unexpected data after the record",
		"too_deep":                  "nesting exceeds the maximum depth",
		"duplicate_key":             "duplicate key",
		"unknown_key":               "unknown key",
	},
	"ja": {
		"self_selector":             "ディスクリプタを自身のセレクタにはできません",
		"selector_package_conflict": "セレクタとパッケージは同時に設定できません",
		"invalid_state":             "不正な状態です",
		"bad_magic":                 "レコードヘッダが不正です",
		"unsupported_version":       "未対応のレコードバージョンです",
		"truncated":                 "レコードの途中で入力が終わりました",
		"unknown_type":              "未知の型タグです",
		"invalid_length":            "長さが不正です",
		"invalid_format":            "形式が不正です",
		"invalid_escape":            "パーセントエスケープが不正です",
		"missing_end":               "end トークンがありません",
		"trailing_data":             "レコードの後に余分なデータがあります",
		"too_deep":                  "ネストが深すぎます",
		"duplicate_key":             "キーが重複しています",
		"unknown_key":               "未知のキーです",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
