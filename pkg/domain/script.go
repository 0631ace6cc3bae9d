package domain

import "fmt"

// PanelScript は台本生成AIが返す1パネル分のエントリです。
// 3フィールドすべてが必須で、欠けたレスポンスは契約違反として拒否します。
type PanelScript struct {
	Description    string `json:"description"`
	Dialogue       string `json:"dialogue"`
	CharacterFocus string `json:"characterFocus"`
}

// ScriptResponse は台本生成AIのレスポンス全体の構造です。
type ScriptResponse struct {
	Panels []PanelScript `json:"panels"`
}

// BuildPanels は台本エントリを 1:1 でパネル列に変換するのだ。
// 位置は入力順で 1..N を採番し、すべて画像なし・idle で返す。
func (r ScriptResponse) BuildPanels() []Panel {
	panels := make([]Panel, 0, len(r.Panels))
	for i, entry := range r.Panels {
		panels = append(panels, NewPanel(i+1, entry.Description, entry.Dialogue, entry.CharacterFocus))
	}
	return panels
}

// ValidateCount はリクエストしたパネル数とレスポンスの件数が一致するか検査します。
func (r ScriptResponse) ValidateCount(want int) error {
	if len(r.Panels) != want {
		return fmt.Errorf("パネル数が要求と一致しません（要求: %d, 実際: %d）", want, len(r.Panels))
	}
	return nil
}
