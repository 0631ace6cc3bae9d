// Package studio はパネル生成のオーケストレーターです。
// 台本クライアント → ストア（一括差し替え）、画像クライアント → ストア
// （単一パネル更新）の協調だけを担い、AIサービスの失敗はすべてこの境界で
// 捕まえてローカルな状態か単一のエラーに変換します。
//
// 台本生成はプロジェクトごとに同時1件が呼び出し側の前提です（UIが
// トリガーを無効化する）。パネル画像生成は互いに独立で、同時実行できます。
package studio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-comic-studio/pkg/domain"
	"github.com/shouni/go-comic-studio/pkg/image"
	"github.com/shouni/go-comic-studio/pkg/locale"
	"github.com/shouni/go-comic-studio/pkg/script"
	"github.com/shouni/go-comic-studio/pkg/store"
	"github.com/shouni/go-comic-studio/pkg/styles"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// パネル数のUI制約。コアでも防御的に検証するのだ。
const (
	MinPanelCount = 2
	MaxPanelCount = 10
)

// ScriptGenerator は台本生成クライアントの契約です。
type ScriptGenerator interface {
	Generate(ctx context.Context, req script.Request) (domain.ScriptResponse, error)
}

// ArtGenerator は単一パネルの画像生成クライアントの契約です。
type ArtGenerator interface {
	Generate(ctx context.Context, req image.Request) (string, error)
}

// Studio はプロジェクトストアと2つの生成クライアントを束ねる実体です。
type Studio struct {
	store        *store.ProjectStore
	scripts      ScriptGenerator
	art          ArtGenerator
	rateInterval time.Duration // 一括生成時のリクエスト間隔
}

// New は依存関係を注入して Studio を初期化します。
func New(st *store.ProjectStore, scripts ScriptGenerator, art ArtGenerator, rateInterval time.Duration) (*Studio, error) {
	if st == nil {
		return nil, fmt.Errorf("store は必須です")
	}
	if scripts == nil {
		return nil, fmt.Errorf("scripts (ScriptGenerator) は必須です")
	}
	if art == nil {
		return nil, fmt.Errorf("art (ArtGenerator) は必須です")
	}
	return &Studio{
		store:        st,
		scripts:      scripts,
		art:          art,
		rateInterval: rateInterval,
	}, nil
}

// Store は状態の読み取り用にストアを公開します。
func (s *Studio) Store() *store.ProjectStore {
	return s.store
}

// GenerateScript はアイデアから正確に panelCount 件のパネル列を生成し、
// 既存のパネル列を丸ごと置き換えるのだ。途中で何が失敗しても既存の
// パネル列には一切手を付けない（アトミック性）。
func (s *Studio) GenerateScript(ctx context.Context, idea string, panelCount int, lang locale.Language) (domain.Project, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return domain.Project{}, fmt.Errorf("ストーリーのアイデアが空なのだ")
	}
	if panelCount < MinPanelCount || panelCount > MaxPanelCount {
		return domain.Project{}, fmt.Errorf("パネル数は %d〜%d の範囲で指定するのだ（指定: %d）", MinPanelCount, MaxPanelCount, panelCount)
	}

	snap := s.store.Snapshot()
	resp, err := s.scripts.Generate(ctx, script.Request{
		Idea:       idea,
		PanelCount: panelCount,
		Genre:      snap.Genre,
		Language:   lang,
	})
	if err != nil {
		// 失敗時は以前のパネル列がそのまま残る。
		return domain.Project{}, err
	}

	s.store.ReplacePanels(resp.BuildPanels())

	project := s.store.Snapshot()
	slog.Info("台本の生成が完了したのだ！", "panels", len(project.Panels))
	return project, nil
}

// GeneratePanelImage は1パネル分のアートを生成するのだ。
// 呼び出し直後に対象パネルだけを loading にし、完了時にそのパネルだけを
// 更新する。失敗はパネルのステータスに記録されるだけで、プロセスにも
// 他のパネルにも波及しない。
func (s *Studio) GeneratePanelImage(ctx context.Context, panelID string) (domain.Panel, error) {
	panel, ok := s.store.Panel(panelID)
	if !ok {
		return domain.Panel{}, fmt.Errorf("パネルが見つかりません: %s", panelID)
	}

	styleDesc := styles.Describe(s.store.Snapshot().ArtStyle)

	rev, ok := s.store.MarkPanelLoading(panelID)
	if !ok {
		return domain.Panel{}, fmt.Errorf("パネルが見つかりません: %s", panelID)
	}

	imageURL, err := s.art.Generate(ctx, image.Request{
		Description:      panel.Description,
		StyleDescription: styleDesc,
		CharacterNotes:   panel.CharacterNotes,
	})
	if err != nil {
		// 直前の成功画像は残す。ステータスだけ error にする。
		s.store.ApplyImageError(panelID, rev)
		updated, _ := s.store.Panel(panelID)
		slog.Error("パネル画像の生成に失敗したのだ", "panel_id", panelID, "error", err)
		return updated, err
	}

	if !s.store.ApplyImageSuccess(panelID, rev, imageURL) {
		// より新しいリクエストに追い越された古い完了報告は黙って捨てる。
		slog.Info("古い画像生成結果を破棄したのだ", "panel_id", panelID, "rev", rev)
	}
	updated, _ := s.store.Panel(panelID)
	return updated, nil
}

// GenerateAllImages は画像を持たないすべてのパネルのアートを並列生成するのだ。
// レートリミッターでリクエスト間隔を制御しつつ、各パネルの失敗はその
// パネルのステータスに記録して処理を続ける。中断されない限り nil を返す。
func (s *Studio) GenerateAllImages(ctx context.Context) (domain.Project, error) {
	snap := s.store.Snapshot()

	var targets []string
	for _, p := range snap.Panels {
		if p.ImageURL == "" {
			targets = append(targets, p.ID)
		}
	}
	if len(targets) == 0 {
		return snap, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	// Burst 2 により、開始直後に2枚までは同時にリクエストを開始できるのだ
	limiter := rate.NewLimiter(rate.Every(s.rateInterval), 2)
	slog.Info("並列画像生成を開始するのだ", "count", len(targets), "interval", s.rateInterval)

	for _, id := range targets {
		eg.Go(func() error {
			if err := limiter.Wait(egCtx); err != nil {
				return err
			}
			if _, err := s.GeneratePanelImage(egCtx, id); err != nil {
				// 失敗はパネル単位のステータスで報告済み。全体は止めない。
				slog.Warn("パネルをスキップして続行するのだ", "panel_id", id, "error", err)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return s.store.Snapshot(), err
	}
	return s.store.Snapshot(), nil
}

// AddPanel はAIを介さずに、プレースホルダ入りの空パネルを末尾へ追加するのだ。
func (s *Studio) AddPanel(lang locale.Language) domain.Panel {
	snap := s.store.Snapshot()
	panel := domain.NewPanel(len(snap.Panels)+1, lang.PlaceholderScene(), "", lang.PlaceholderCharacter())
	s.store.AppendPanel(panel)

	added, _ := s.store.Panel(panel.ID)
	return added
}

// UpdatePanelText はテキスト編集をストアへ委譲します。
// 未知のIDはストアの契約どおり静かに無視されます。
func (s *Studio) UpdatePanelText(panelID string, field domain.PanelField, value string) {
	s.store.UpdatePanelText(panelID, field, value)
}
