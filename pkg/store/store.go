// Package store はアクティブなプロジェクトの唯一の正となる状態置き場です。
//
// すべての読み取りはスナップショット（完全なコピー）で、すべての変更は
// この狭い操作セットを通ります。各ミューテーションはパネルIDで対象を指定し、
// その対象のフィールドだけを差し替えるため、部分的に壊れた状態が観測される
// ことはありません。未知のパネルIDへのミューテーションはエラーではなく
// 静かに無視します。状態リセットと競合した古いコールバックを許容するためです。
package store

import (
	"sync"

	"github.com/shouni/go-comic-studio/pkg/domain"
)

// ProjectStore は単一プロジェクトを保持し、ミューテーションを直列化します。
// HTTPハンドラはゴルーチンごとに並列実行されるため、RWMutex で守るのだ。
type ProjectStore struct {
	mu      sync.RWMutex
	project domain.Project

	// imageRevs はパネルごとの画像リクエスト世代番号（フェンシングトークン）。
	// MarkPanelLoading のたびに増え、古い世代の完了報告は捨てられる。
	imageRevs map[string]uint64
}

// New は初期プロジェクトを保持するストアを生成するのだ。
func New(initial domain.Project) *ProjectStore {
	return &ProjectStore{
		project:   initial,
		imageRevs: make(map[string]uint64),
	}
}

// Snapshot は現在のプロジェクトの完全なコピーを返します。
// 返り値を書き換えてもストア内部には影響しません。
func (s *ProjectStore) Snapshot() domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.project
	snap.Panels = domain.ClonePanels(s.project.Panels)
	return snap
}

// Panel は ID が一致するパネルのコピーを返します。
func (s *ProjectStore) Panel(id string) (domain.Panel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.project.FindPanel(id); i >= 0 {
		return s.project.Panels[i], true
	}
	return domain.Panel{}, false
}

// ReplacePanels は現在のパネル列を破棄し、新しい列を丸ごと据え付けるのだ。
// 位置は入力順で 1..N に振り直す。台本生成の成功時にのみ呼ばれる。
// 旧パネルのフェンシングトークンも一緒に破棄するため、リセット前に発行された
// 画像生成の完了報告は以後すべて無効になる。
func (s *ProjectStore) ReplacePanels(panels []domain.Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	installed := domain.ClonePanels(panels)
	for i := range installed {
		installed[i].Position = i + 1
	}
	s.project.Panels = installed
	s.imageRevs = make(map[string]uint64)
}

// AppendPanel はパネルを末尾に追加し、位置 = 旧長+1 を割り当てるのだ。
func (s *ProjectStore) AppendPanel(panel domain.Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	panel.Position = len(s.project.Panels) + 1
	s.project.Panels = append(s.project.Panels, panel)
}

// UpdatePanelText は対象パネルの指定フィールドだけを差し替えます。
// 他のフィールド・他のパネル・画像の状態には触れません。
// 未知の ID、未知のフィールドは黙って無視します。
func (s *ProjectStore) UpdatePanelText(id string, field domain.PanelField, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.project.FindPanel(id)
	if i < 0 {
		return
	}
	switch field {
	case domain.FieldDescription:
		s.project.Panels[i].Description = value
	case domain.FieldDialogue:
		s.project.Panels[i].Dialogue = value
	}
}

// MarkPanelLoading は対象パネルを loading にし、新しいフェンシングトークンを
// 発行するのだ。既存の画像ハンドルには触れない。再生成中も直前の成功画像を
// 表示し続けるためなのだ。未知の ID の場合は ok=false を返す。
func (s *ProjectStore) MarkPanelLoading(id string) (rev uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.project.FindPanel(id)
	if i < 0 {
		return 0, false
	}
	s.project.Panels[i].Status = domain.StatusLoading
	s.imageRevs[id]++
	return s.imageRevs[id], true
}

// ApplyImageSuccess は成功した画像生成の結果を反映します。
// トークンが最新でない（その後に再生成が発行された、またはパネル列が
// リセットされた）場合は何もしません。成功時のみ画像ハンドルを置き換え、
// テキスト系フィールドには触れません。
func (s *ProjectStore) ApplyImageSuccess(id string, rev uint64, imageURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.project.FindPanel(id)
	if i < 0 || s.imageRevs[id] != rev {
		return false
	}
	s.project.Panels[i].Status = domain.StatusSuccess
	s.project.Panels[i].ImageURL = imageURL
	return true
}

// ApplyImageError は失敗した画像生成を対象パネルのステータスにだけ記録します。
// 画像ハンドルは意図的にクリアしない。「最後に成功した画像は残る」方針なのだ。
func (s *ProjectStore) ApplyImageError(id string, rev uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.project.FindPanel(id)
	if i < 0 || s.imageRevs[id] != rev {
		return false
	}
	s.project.Panels[i].Status = domain.StatusError
	return true
}

// SetStyle はスタイルIDを差し替えます。カタログ照合は行いません。
// 未知のIDは描画時に生テキストとして扱われます。
func (s *ProjectStore) SetStyle(styleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.ArtStyle = styleID
}

// SetTitle はタイトルを差し替えます。
func (s *ProjectStore) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.Title = title
}

// SetGenre はジャンルラベルを差し替えます。
func (s *ProjectStore) SetGenre(genre string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.Genre = genre
}
