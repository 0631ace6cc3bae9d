// Package styles はアートスタイルの固定カタログを提供します。
// スタイルの英語記述（Description）は画像生成プロンプトの語彙を言語切替に
// 依存させないために使い、ローカライズ済みラベルはUI表示専用です。
package styles

import "github.com/shouni/go-comic-studio/pkg/locale"

// Style はカタログの1エントリです。プロセス起動時に定義され、以後不変です。
type Style struct {
	ID          string `json:"id"`
	Description string `json:"description"` // 画像生成AIに渡す英語のスタイル記述
	LabelZH     string `json:"-"`
}

// Catalog は定義順を保持したスタイルの一覧なのだ。
var Catalog = []Style{
	{ID: "shonen", Description: "Shonen Manga (High Contrast, Action)", LabelZH: "少年漫画 (高对比度，动作感)"},
	{ID: "shojo", Description: "Shojo Manga (Soft, Emotional, Detailed Eyes)", LabelZH: "少女漫画 (柔和，情感，细腻眼部)"},
	{ID: "seinen", Description: "Seinen Manga (Gritty, Realistic, Detailed Backgrounds)", LabelZH: "青年漫画 (写实，硬朗，背景细腻)"},
	{ID: "webtoon", Description: "Webtoon Style (Full Color, Clean Lines)", LabelZH: "条漫风格 (全彩，线条干净)"},
	{ID: "american", Description: "American Comic (Bold Ink, Vibrant Color)", LabelZH: "美式漫画 (大胆墨线，色彩鲜艳)"},
	{ID: "cyberpunk", Description: "Cyberpunk Anime (Neon, Dark, Tech-heavy)", LabelZH: "赛博朋克动画 (霓虹，暗黑，科技感)"},
}

// Find は ID に一致するスタイルを検索します。
func Find(id string) (Style, bool) {
	for _, s := range Catalog {
		if s.ID == id {
			return s, true
		}
	}
	return Style{}, false
}

// Describe は画像生成に使うスタイル記述を返すのだ。
// カタログにない ID はエラーではなく、生のテキストとしてそのまま使う。
func Describe(id string) string {
	if s, ok := Find(id); ok {
		return s.Description
	}
	return id
}

// Label は指定言語向けの表示ラベルを返します。
// 中国語ラベルが未定義の場合は英語記述へフォールバックします。
func (s Style) Label(lang locale.Language) string {
	if lang == locale.LanguageZH && s.LabelZH != "" {
		return s.LabelZH
	}
	return s.Description
}
