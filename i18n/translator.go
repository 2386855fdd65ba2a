package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須プロパティが不足しています"
		case "unknown_key":
			return "未知のキーです"
		case "duplicate_key":
			return "キーが重複しています"
		case "parse_error":
			return "解析エラー"
		case "truncated":
			return "打ち切られました"
		case "invalid_format":
			return "形式が不正です"
		case "too_short":
			return "要素数が少なすぎます"
		case "too_long":
			return "要素数が多すぎます"
		case "missing_unit":
			return "単位が指定されていません"
		case "unit_validation":
			return "数量に変換できません"
		case "incompatible_unit":
			if u := data["unit"]; u != "" {
				return "単位 " + u + " と互換性がありません"
			}
			return "単位に互換性がありません"
		case "unsupported_export":
			return "この数量は書き出せません"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required property missing"
		case "unknown_key":
			return "unknown key"
		case "duplicate_key":
			return "duplicate key"
		case "parse_error":
			return "parse error"
		case "truncated":
			return "truncated"
		case "invalid_format":
			return "invalid format"
		case "too_short":
			return "too few items"
		case "too_long":
			return "too many items"
		case "missing_unit":
			return "a unit must be given explicitly"
		case "unit_validation":
			return "value cannot be coerced to a quantity"
		case "incompatible_unit":
			if u := data["unit"]; u != "" {
				return "unit must be compatible with " + u
			}
			return "incompatible unit"
		case "unsupported_export":
			return "quantity cannot be exported"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
