package i18n

import "sync/atomic"

// Translator renders messages for error codes.
// data carries the pre-rendered fragments a message embeds (for example,
// "expected", "got" or "key"). Fragments that do not apply are absent.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		return japanese(code, data)
	default: // "en"
		return english(code, data)
	}
}

func english(code string, data map[string]string) string {
	switch code {
	case "invalid_type", "invalid_literal":
		return "Expected " + data["expected"] + " but got " + data["got"]
	case "required":
		return "Missing key " + data["key"]
	case "invalid_enum":
		msg := "Unexpected " + data["kind"]
		if v, ok := data["value"]; ok {
			msg += " " + v
		}
		if a, ok := data["allowed"]; ok {
			msg += " (allowed: " + a + ")"
		}
		return msg
	case "union_no_match":
		if data["shape"] == "array" {
			return "Array found, but no matching schema"
		}
		return "Object matches none of the possible structures"
	case "disallowed_shape":
		if data["shape"] == "array" {
			return "Unexpected array"
		}
		return "Object not allowed here"
	case "custom":
		if m, ok := data["message"]; ok {
			return m
		}
		return "Invalid value"
	case "parse_error":
		return "parse error: " + data["reason"]
	}
	return code
}

func japanese(code string, data map[string]string) string {
	switch code {
	case "invalid_type", "invalid_literal":
		return data["expected"] + " が必要ですが " + data["got"] + " でした"
	case "required":
		return "キー " + data["key"] + " がありません"
	case "invalid_enum":
		msg := data["kind"]
		if v, ok := data["value"]; ok {
			msg += " " + v
		}
		msg += " は許可されていません"
		if a, ok := data["allowed"]; ok {
			msg += " (許可: " + a + ")"
		}
		return msg
	case "union_no_match":
		if data["shape"] == "array" {
			return "配列に一致するスキーマがありません"
		}
		return "オブジェクトがどの構造にも一致しません"
	case "disallowed_shape":
		if data["shape"] == "array" {
			return "配列は使用できません"
		}
		return "オブジェクトは使用できません"
	case "custom":
		if m, ok := data["message"]; ok {
			return m
		}
		return "不正な値です"
	case "parse_error":
		return "解析エラー: " + data["reason"]
	}
	return code
}

type holder struct{ tr Translator }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{tr: dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	current.Store(&holder{tr: dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&holder{tr: tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return current.Load().tr.Message(code, data) }
