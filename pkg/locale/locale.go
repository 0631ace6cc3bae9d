// Package locale は対応言語と、生成リクエストに埋め込む言語指示を定義します。
// 言語の切り替えはUIラベルと「これから生成するテキスト」にだけ影響し、
// 保存済みパネルのテキストには一切触れません。
package locale

// Language は対応する表示・生成言語です。
type Language string

const (
	LanguageEN Language = "en"
	LanguageZH Language = "zh"
)

// Parse は未知の値を英語にフォールバックさせる全域関数なのだ。
func Parse(s string) Language {
	if Language(s) == LanguageZH {
		return LanguageZH
	}
	return LanguageEN
}

// ScriptDirective は台本生成プロンプトに付ける言語指示を返すのだ。
func (l Language) ScriptDirective() string {
	if l == LanguageZH {
		return "Output the content (description, dialogue, notes) strictly in Simplified Chinese."
	}
	return "Output the content in English."
}

// PlaceholderScene は手動追加パネルの描写プレースホルダを返します。
func (l Language) PlaceholderScene() string {
	if l == LanguageZH {
		return "一个新的场景..."
	}
	return "A new scene..."
}

// PlaceholderCharacter は手動追加パネルのキャラクターメモの初期値を返します。
func (l Language) PlaceholderCharacter() string {
	if l == LanguageZH {
		return "主角"
	}
	return "Main Character"
}
