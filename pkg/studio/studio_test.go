package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-comic-studio/pkg/domain"
	"github.com/shouni/go-comic-studio/pkg/image"
	"github.com/shouni/go-comic-studio/pkg/locale"
	"github.com/shouni/go-comic-studio/pkg/script"
	"github.com/shouni/go-comic-studio/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScripts は台本生成クライアントのテスト用の実装です。
type fakeScripts struct {
	mu       sync.Mutex
	calls    int
	generate func(ctx context.Context, req script.Request) (domain.ScriptResponse, error)
}

func (f *fakeScripts) Generate(ctx context.Context, req script.Request) (domain.ScriptResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.generate(ctx, req)
}

// fakeArt は画像生成クライアントのテスト用の実装です。
type fakeArt struct {
	mu       sync.Mutex
	requests []image.Request
	generate func(ctx context.Context, req image.Request) (string, error)
}

func (f *fakeArt) Generate(ctx context.Context, req image.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.generate(ctx, req)
}

func threePanelScript(ctx context.Context, req script.Request) (domain.ScriptResponse, error) {
	return domain.ScriptResponse{Panels: []domain.PanelScript{
		{Description: "A robot picks up a brush", Dialogue: "", CharacterFocus: "Robot"},
		{Description: "First stroke on canvas", Dialogue: "Whirr", CharacterFocus: "Robot's hand"},
		{Description: "The robot admires the painting", Dialogue: "...done", CharacterFocus: "Robot, satisfied"},
	}}, nil
}

func newTestStudio(t *testing.T, scripts *fakeScripts, art *fakeArt) *Studio {
	t.Helper()
	if scripts == nil {
		scripts = &fakeScripts{generate: threePanelScript}
	}
	if art == nil {
		art = &fakeArt{generate: func(ctx context.Context, req image.Request) (string, error) {
			return "data:image/png;base64,AAAA", nil
		}}
	}
	st, err := New(store.New(domain.NewProject()), scripts, art, time.Millisecond)
	require.NoError(t, err)
	return st
}

func TestGenerateScript_ReplacesPanels(t *testing.T) {
	scripts := &fakeScripts{generate: threePanelScript}
	studio := newTestStudio(t, scripts, nil)

	project, err := studio.GenerateScript(context.Background(), "A robot learns to paint", 3, locale.LanguageEN)
	require.NoError(t, err)
	require.Len(t, project.Panels, 3)

	for i, p := range project.Panels {
		assert.Equal(t, i+1, p.Position)
		assert.Equal(t, domain.StatusIdle, p.Status)
		assert.Empty(t, p.ImageURL)
	}
	assert.Equal(t, "First stroke on canvas", project.Panels[1].Description)
	assert.Equal(t, 1, scripts.calls)
}

func TestGenerateScript_UsesProjectGenre(t *testing.T) {
	var gotReq script.Request
	scripts := &fakeScripts{generate: func(ctx context.Context, req script.Request) (domain.ScriptResponse, error) {
		gotReq = req
		return threePanelScript(ctx, req)
	}}
	studio := newTestStudio(t, scripts, nil)
	studio.Store().SetGenre("Slice of Life")

	_, err := studio.GenerateScript(context.Background(), "  A robot learns to paint  ", 3, locale.LanguageZH)
	require.NoError(t, err)

	assert.Equal(t, "A robot learns to paint", gotReq.Idea, "アイデアは前後の空白を除去して渡すこと")
	assert.Equal(t, "Slice of Life", gotReq.Genre)
	assert.Equal(t, locale.LanguageZH, gotReq.Language)
}

func TestGenerateScript_Validation(t *testing.T) {
	scripts := &fakeScripts{generate: threePanelScript}
	studio := newTestStudio(t, scripts, nil)

	cases := []struct {
		name       string
		idea       string
		panelCount int
	}{
		{"空のアイデア", "   ", 3},
		{"パネル数が下限未満", "idea", 1},
		{"パネル数が上限超過", "idea", 11},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := studio.GenerateScript(context.Background(), c.idea, c.panelCount, locale.LanguageEN)
			assert.Error(t, err)
		})
	}
	assert.Equal(t, 0, scripts.calls, "検証エラーではAIを呼ばないこと")
}

func TestGenerateScript_FailureKeepsPanels(t *testing.T) {
	scripts := &fakeScripts{generate: threePanelScript}
	studio := newTestStudio(t, scripts, nil)

	before, err := studio.GenerateScript(context.Background(), "A robot learns to paint", 3, locale.LanguageEN)
	require.NoError(t, err)

	// 2回目は失敗させる
	scripts.generate = func(ctx context.Context, req script.Request) (domain.ScriptResponse, error) {
		return domain.ScriptResponse{}, errors.New("model overloaded")
	}

	_, err = studio.GenerateScript(context.Background(), "Another idea", 5, locale.LanguageEN)
	require.Error(t, err)

	after := studio.Store().Snapshot()
	assert.Equal(t, before.Panels, after.Panels, "失敗時は既存のパネル列が無傷で残ること")
}

func TestGeneratePanelImage_Success(t *testing.T) {
	art := &fakeArt{generate: func(ctx context.Context, req image.Request) (string, error) {
		return "data:image/png;base64,FRESH", nil
	}}
	studio := newTestStudio(t, nil, art)

	project, err := studio.GenerateScript(context.Background(), "A robot learns to paint", 3, locale.LanguageEN)
	require.NoError(t, err)
	target := project.Panels[1]

	panel, err := studio.GeneratePanelImage(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, panel.Status)
	assert.Equal(t, "data:image/png;base64,FRESH", panel.ImageURL)

	// スタイルはカタログの英語記述で渡ること
	require.Len(t, art.requests, 1)
	assert.Equal(t, "Shonen Manga (High Contrast, Action)", art.requests[0].StyleDescription)
	assert.Equal(t, target.Description, art.requests[0].Description)

	// 他のパネルは無傷なのだ
	snap := studio.Store().Snapshot()
	assert.Equal(t, domain.StatusIdle, snap.Panels[0].Status)
	assert.Equal(t, domain.StatusIdle, snap.Panels[2].Status)
}

func TestGeneratePanelImage_ErrorKeepsPreviousImage(t *testing.T) {
	art := &fakeArt{generate: func(ctx context.Context, req image.Request) (string, error) {
		return "data:image/png;base64,FIRST", nil
	}}
	studio := newTestStudio(t, nil, art)

	project, err := studio.GenerateScript(context.Background(), "A robot learns to paint", 3, locale.LanguageEN)
	require.NoError(t, err)
	target := project.Panels[0]

	_, err = studio.GeneratePanelImage(context.Background(), target.ID)
	require.NoError(t, err)

	// 再生成は失敗させる
	art.generate = func(ctx context.Context, req image.Request) (string, error) {
		return "", errors.New("safety block")
	}

	panel, err := studio.GeneratePanelImage(context.Background(), target.ID)
	require.Error(t, err)
	assert.Equal(t, domain.StatusError, panel.Status)
	assert.Equal(t, "data:image/png;base64,FIRST", panel.ImageURL, "失敗しても直前の成功画像は残ること")
}

func TestGeneratePanelImage_UnknownPanel(t *testing.T) {
	studio := newTestStudio(t, nil, nil)

	_, err := studio.GeneratePanelImage(context.Background(), "no-such-panel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "パネルが見つかりません")
}

func TestGeneratePanelImage_CustomStylePassthrough(t *testing.T) {
	art := &fakeArt{generate: func(ctx context.Context, req image.Request) (string, error) {
		return "data:image/png;base64,AAAA", nil
	}}
	studio := newTestStudio(t, nil, art)
	studio.Store().SetStyle("hand-drawn watercolor")

	project, err := studio.GenerateScript(context.Background(), "A robot learns to paint", 3, locale.LanguageEN)
	require.NoError(t, err)

	_, err = studio.GeneratePanelImage(context.Background(), project.Panels[0].ID)
	require.NoError(t, err)

	require.Len(t, art.requests, 1)
	assert.Equal(t, "hand-drawn watercolor", art.requests[0].StyleDescription, "カタログ外のスタイルIDは生テキストとして使うこと")
}

func TestGenerateAllImages(t *testing.T) {
	failFor := make(map[string]bool)
	art := &fakeArt{generate: func(ctx context.Context, req image.Request) (string, error) {
		if failFor[req.Description] {
			return "", errors.New("quota exceeded")
		}
		return fmt.Sprintf("data:image/png;base64,%d", len(req.Description)), nil
	}}
	studio := newTestStudio(t, nil, art)

	project, err := studio.GenerateScript(context.Background(), "A robot learns to paint", 3, locale.LanguageEN)
	require.NoError(t, err)

	// 1枚は生成済みにしておく → 一括生成の対象外になるはず
	_, err = studio.GeneratePanelImage(context.Background(), project.Panels[0].ID)
	require.NoError(t, err)
	generated := len(art.requests)

	// 1枚は失敗させる
	failFor[project.Panels[2].Description] = true

	result, err := studio.GenerateAllImages(context.Background())
	require.NoError(t, err, "個々のパネルの失敗は全体を止めないこと")

	assert.Len(t, art.requests, generated+2, "画像を持たないパネルだけが対象になること")
	assert.Equal(t, domain.StatusSuccess, result.Panels[0].Status)
	assert.Equal(t, domain.StatusSuccess, result.Panels[1].Status)
	assert.Equal(t, domain.StatusError, result.Panels[2].Status)
	assert.Empty(t, result.Panels[2].ImageURL)
}

func TestGenerateAllImages_NothingToDo(t *testing.T) {
	art := &fakeArt{generate: func(ctx context.Context, req image.Request) (string, error) {
		return "data:image/png;base64,AAAA", nil
	}}
	studio := newTestStudio(t, nil, art)

	result, err := studio.GenerateAllImages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Panels)
	assert.Empty(t, art.requests)
}

func TestAddPanel(t *testing.T) {
	studio := newTestStudio(t, nil, nil)

	_, err := studio.GenerateScript(context.Background(), "A robot learns to paint", 3, locale.LanguageEN)
	require.NoError(t, err)

	panel := studio.AddPanel(locale.LanguageZH)
	assert.Equal(t, 4, panel.Position)
	assert.Equal(t, "一个新的场景...", panel.Description)
	assert.Equal(t, "主角", panel.CharacterNotes)
	assert.Equal(t, domain.StatusIdle, panel.Status)
	assert.Empty(t, panel.Dialogue)

	snap := studio.Store().Snapshot()
	assert.Len(t, snap.Panels, 4)
}

func TestUpdatePanelText(t *testing.T) {
	studio := newTestStudio(t, nil, nil)

	project, err := studio.GenerateScript(context.Background(), "A robot learns to paint", 3, locale.LanguageEN)
	require.NoError(t, err)

	studio.UpdatePanelText(project.Panels[0].ID, domain.FieldDialogue, "描くのだ！")

	panel, ok := studio.Store().Panel(project.Panels[0].ID)
	require.True(t, ok)
	assert.Equal(t, "描くのだ！", panel.Dialogue)
}

func TestNew_Validation(t *testing.T) {
	scripts := &fakeScripts{generate: threePanelScript}
	art := &fakeArt{generate: func(ctx context.Context, req image.Request) (string, error) { return "", nil }}
	st := store.New(domain.NewProject())

	_, err := New(nil, scripts, art, time.Second)
	assert.Error(t, err)
	_, err = New(st, nil, art, time.Second)
	assert.Error(t, err)
	_, err = New(st, scripts, nil, time.Second)
	assert.Error(t, err)
}
