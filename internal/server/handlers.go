package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-comic-studio/pkg/domain"
	"github.com/shouni/go-comic-studio/pkg/locale"
	"github.com/shouni/go-comic-studio/pkg/studio"
	"github.com/shouni/go-comic-studio/pkg/styles"
)

// handlers は各エンドポイントの実装を束ねます。
type handlers struct {
	studio *studio.Studio
}

func newHandlers(st *studio.Studio) *handlers {
	return &handlers{studio: st}
}

// apiError はエラーレスポンスの共通形式です。
type apiError struct {
	Message string `json:"message"`
}

func errorResponse(c *gin.Context, status int, msg string) {
	c.JSON(status, apiError{Message: msg})
}

// getProject は現在のプロジェクト全体のスナップショットを返します。
func (h *handlers) getProject(c *gin.Context) {
	c.JSON(http.StatusOK, h.studio.Store().Snapshot())
}

// styleEntry はスタイルカタログの1エントリのAPI表現です。
type styleEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// listStyles は ?lang= に応じてローカライズ済みラベル付きのカタログを返すのだ。
func (h *handlers) listStyles(c *gin.Context) {
	lang := locale.Parse(c.Query("lang"))

	entries := make([]styleEntry, 0, len(styles.Catalog))
	for _, s := range styles.Catalog {
		entries = append(entries, styleEntry{ID: s.ID, Label: s.Label(lang)})
	}
	c.JSON(http.StatusOK, entries)
}

// generateScriptRequest は台本生成のリクエストボディです。
type generateScriptRequest struct {
	Idea       string `json:"idea" binding:"required"`
	PanelCount int    `json:"panelCount" binding:"required"`
	Language   string `json:"language"`
}

// generateScript はアイデアからパネル列を丸ごと生成し直すのだ。
// AI側の失敗は 502 で返し、その場合ストアの状態は変化しない。
func (h *handlers) generateScript(c *gin.Context) {
	var req generateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "リクエストの形式が不正です: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Idea) == "" {
		errorResponse(c, http.StatusBadRequest, "ストーリーのアイデアが空です")
		return
	}
	if req.PanelCount < studio.MinPanelCount || req.PanelCount > studio.MaxPanelCount {
		errorResponse(c, http.StatusBadRequest, "パネル数は2〜10の範囲で指定してください")
		return
	}

	project, err := h.studio.GenerateScript(c.Request.Context(), req.Idea, req.PanelCount, locale.Parse(req.Language))
	if err != nil {
		errorResponse(c, http.StatusBadGateway, err.Error())
		return
	}
	c.JSON(http.StatusOK, project)
}

// addPanelRequest は空パネル追加のリクエストボディです。
type addPanelRequest struct {
	Language string `json:"language"`
}

// addPanel はAIを介さずプレースホルダ入りの空パネルを末尾に追加します。
func (h *handlers) addPanel(c *gin.Context) {
	var req addPanelRequest
	// ボディ省略は英語プレースホルダとして扱うのだ
	_ = c.ShouldBindJSON(&req)

	panel := h.studio.AddPanel(locale.Parse(req.Language))
	c.JSON(http.StatusCreated, panel)
}

// updateTextRequest はパネルテキスト編集のリクエストボディです。
type updateTextRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// updatePanelText は description / dialogue のどちらかを書き換えます。
// 画像まわりのフィールドには一切触れない。
func (h *handlers) updatePanelText(c *gin.Context) {
	var req updateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "リクエストの形式が不正です: "+err.Error())
		return
	}

	field := domain.PanelField(req.Field)
	if !field.Valid() {
		errorResponse(c, http.StatusBadRequest, "field は description か dialogue を指定してください")
		return
	}

	h.studio.UpdatePanelText(c.Param("id"), field, req.Value)

	panel, ok := h.studio.Store().Panel(c.Param("id"))
	if !ok {
		errorResponse(c, http.StatusNotFound, "パネルが見つかりません")
		return
	}
	c.JSON(http.StatusOK, panel)
}

// generatePanelImage は1パネル分の画像生成を実行します。
// 生成失敗はパネルの imageStatus に記録されるため、パネルが存在する限り
// 本文には常に最新のパネルを返すのだ。
func (h *handlers) generatePanelImage(c *gin.Context) {
	panelID := c.Param("id")
	if _, ok := h.studio.Store().Panel(panelID); !ok {
		errorResponse(c, http.StatusNotFound, "パネルが見つかりません")
		return
	}

	panel, err := h.studio.GeneratePanelImage(c.Request.Context(), panelID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"message": err.Error(),
			"panel":   panel,
		})
		return
	}
	c.JSON(http.StatusOK, panel)
}

// generateAllImages は画像未生成のパネル全件を並列生成します。
func (h *handlers) generateAllImages(c *gin.Context) {
	project, err := h.studio.GenerateAllImages(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusBadGateway, err.Error())
		return
	}
	c.JSON(http.StatusOK, project)
}

// setStyleRequest は画風変更のリクエストボディです。
type setStyleRequest struct {
	StyleID string `json:"styleId" binding:"required"`
}

// setStyle はプロジェクトの画風を切り替えます。既存の画像は作り直さない。
func (h *handlers) setStyle(c *gin.Context) {
	var req setStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "リクエストの形式が不正です: "+err.Error())
		return
	}
	if _, ok := styles.Find(req.StyleID); !ok {
		errorResponse(c, http.StatusBadRequest, "未知のスタイルIDです: "+req.StyleID)
		return
	}

	h.studio.Store().SetStyle(req.StyleID)
	c.JSON(http.StatusOK, h.studio.Store().Snapshot())
}

// setMetaRequest はタイトル・ジャンル変更のリクエストボディです。
// 省略されたフィールドは変更しない。
type setMetaRequest struct {
	Title *string `json:"title"`
	Genre *string `json:"genre"`
}

// setMeta はプロジェクトのタイトルとジャンルを更新します。
func (h *handlers) setMeta(c *gin.Context) {
	var req setMetaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "リクエストの形式が不正です: "+err.Error())
		return
	}

	if req.Title != nil {
		h.studio.Store().SetTitle(*req.Title)
	}
	if req.Genre != nil {
		h.studio.Store().SetGenre(*req.Genre)
	}
	c.JSON(http.StatusOK, h.studio.Store().Snapshot())
}
