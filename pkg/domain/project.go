package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerationStatus はパネル画像のライフサイクルを表すステータスです。
// パネルごとに独立して遷移します。
type GenerationStatus string

const (
	StatusIdle    GenerationStatus = "idle"
	StatusLoading GenerationStatus = "loading"
	StatusSuccess GenerationStatus = "success"
	StatusError   GenerationStatus = "error"
)

// PanelField はテキスト編集の対象となるパネルのフィールドを示します。
type PanelField string

const (
	FieldDescription PanelField = "description"
	FieldDialogue    PanelField = "dialogue"
)

// Valid は編集対象として許可されたフィールドかどうかを返すのだ。
func (f PanelField) Valid() bool {
	return f == FieldDescription || f == FieldDialogue
}

// Panel はコミックの1コマ分の構成、セリフ、生成画像の状態を保持します。
// ID は生成時に一度だけ採番され、以後変わりません。Position は作成時の
// 並び順（1始まり）で、以後の操作で振り直されることはありません。
type Panel struct {
	ID             string           `json:"id"`
	Position       int              `json:"panelNumber"`
	Description    string           `json:"scriptDescription"` // 画像生成AIに渡す描写指示
	Dialogue       string           `json:"dialogue"`          // 人間向けのセリフ・効果音
	CharacterNotes string           `json:"characterNotes"`    // キャラクター一貫性のためのメモ
	ImageURL       string           `json:"imageUrl,omitempty"`
	Status         GenerationStatus `json:"imageStatus"`
}

// Project は編集中のコミックプロジェクト全体を表します。
// プロセス起動時に1つだけ作られ、セッションの間だけ生存します（永続化なし）。
type Project struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Genre     string    `json:"genre"`
	ArtStyle  string    `json:"artStyle"` // スタイルカタログのID（未知のIDは生テキスト扱い）
	Panels    []Panel   `json:"panels"`
	CreatedAt time.Time `json:"createdAt"`
}

// デフォルトのプロジェクトメタデータなのだ。
const (
	DefaultTitle = "New Manga Project"
	DefaultGenre = "Sci-Fi Action"
	DefaultStyle = "shonen"
)

// NewProject はデフォルト値で初期化された新しいプロジェクトを返すのだ。
func NewProject() Project {
	return Project{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Genre:     DefaultGenre,
		ArtStyle:  DefaultStyle,
		Panels:    []Panel{},
		CreatedAt: time.Now(),
	}
}

// NewPanel は台本エントリ1件から、画像未生成のパネルを作るのだ。
// position は呼び出し側が決めた 1 始まりの連番をそのまま使う。
func NewPanel(position int, description, dialogue, characterNotes string) Panel {
	return Panel{
		ID:             uuid.NewString(),
		Position:       position,
		Description:    description,
		Dialogue:       dialogue,
		CharacterNotes: characterNotes,
		Status:         StatusIdle,
	}
}

// ClonePanels はパネルスライスの防御的コピーを返すのだ。
// Panel は値型のみで構成されるため、スライスのコピーで完全に分離できる。
func ClonePanels(panels []Panel) []Panel {
	copied := make([]Panel, len(panels))
	copy(copied, panels)
	return copied
}

// FindPanel は ID が一致するパネルのインデックスを返します。見つからなければ -1 です。
func (p Project) FindPanel(id string) int {
	for i := range p.Panels {
		if p.Panels[i].ID == id {
			return i
		}
	}
	return -1
}
