package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "op" or "level").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "container_type":
			if data["op"] != "" && data["level"] != "" {
				return data["level"] + " に " + data["op"] + " は使えません"
			}
			return "コンテナの種類が一致しません"
		case "closed":
			return "エンコーダは既に閉じられています"
		case "open_block":
			return "ネストしたブロックの中では閉じられません"
		case "encode_error":
			return "値をエンコードできません"
		case "max_depth":
			return "最大の深さを超えました"
		case "duplicate_key":
			return "キーが重複しています"
		case "truncated":
			return "打ち切られました"
		}
	default: // "en"
		switch code {
		case "container_type":
			if data["op"] != "" && data["level"] != "" {
				return data["op"] + " on " + data["level"] + " level"
			}
			return "container type mismatch"
		case "closed":
			return "operation on closed encoder"
		case "open_block":
			return "close inside nested block"
		case "encode_error":
			return "value cannot be encoded"
		case "max_depth":
			return "max depth exceeded"
		case "duplicate_key":
			return "duplicate key"
		case "truncated":
			return "max bytes exceeded"
		}
	}
	return code
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
