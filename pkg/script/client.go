// Package script は物語のアイデアを構造化された台本（パネル列）に変換する
// テキスト生成クライアントです。外部AIのJSONをそのまま信用せず、
// スキーマ検証を通った型付きレコードだけを呼び出し元へ返します。
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shouni/go-comic-studio/pkg/domain"
	"github.com/shouni/go-comic-studio/pkg/locale"

	"github.com/shouni/go-gemini-client/pkg/gemini"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// TextGenerator は台本生成に必要な最小限のAIクライアント契約です。
// gemini.GenerativeModel がこれを満たします。
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string, model string) (*gemini.Response, error)
}

// Request は台本生成1回分の入力です。検証は Client.Generate が行います。
type Request struct {
	Idea       string
	PanelCount int
	Genre      string
	Language   locale.Language
}

// Client は Gemini を使った台本生成クライアントの実体です。
type Client struct {
	ai    TextGenerator
	model string
}

// NewClient は依存関係を注入して Client を初期化します。
func NewClient(ai TextGenerator, model string) (*Client, error) {
	if ai == nil {
		return nil, fmt.Errorf("ai (TextGenerator) は必須です")
	}
	return &Client{ai: ai, model: model}, nil
}

// Generate はアイデアから正確に req.PanelCount 件の台本エントリを生成するのだ。
// 通信エラー、空レスポンス、JSON不正、スキーマ不一致、件数不一致は
// すべてエラーとして返し、部分的な結果は決して返さない。
func (c *Client) Generate(ctx context.Context, req Request) (domain.ScriptResponse, error) {
	prompt := buildPrompt(req)

	slog.Info("台本生成を開始するのだ", "model", c.model, "panel_count", req.PanelCount, "genre", req.Genre)

	resp, err := c.ai.GenerateContent(ctx, prompt, c.model)
	if err != nil {
		return domain.ScriptResponse{}, fmt.Errorf("台本の生成に失敗したのだ: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return domain.ScriptResponse{}, fmt.Errorf("AIから空のレスポンスが返されたのだ")
	}

	parsed, err := parseResponse(resp.Text)
	if err != nil {
		return domain.ScriptResponse{}, err
	}
	if err := parsed.ValidateCount(req.PanelCount); err != nil {
		return domain.ScriptResponse{}, err
	}
	return parsed, nil
}

// buildPrompt はアイデア、ジャンル、パネル数、言語指示を1つのプロンプトに
// まとめるのだ。JSONの形はレスポンス側の検証が守るので、ここでは指示に徹する。
func buildPrompt(req Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Create a detailed manga/comic script based on this idea: %q.\n", req.Idea)
	fmt.Fprintf(&sb, "Genre: %s.\n", req.Genre)
	fmt.Fprintf(&sb, "Generate exactly %d panels.\n", req.PanelCount)
	sb.WriteString(req.Language.ScriptDirective())
	sb.WriteString("\n")
	sb.WriteString(`For each panel, provide:
1. A detailed visual description for an image generator (include angle, lighting, action).
2. The dialogue (if any) or sound effects.
3. Character focus notes (who is in the shot and their expression).
Respond ONLY with a JSON object of the form
{"panels": [{"description": "...", "dialogue": "...", "characterFocus": "..."}]}.
All three fields are required for every panel.`)

	return sb.String()
}

// rawPanelScript はキー欠落を検出するためのポインタ受けの中間表現です。
// 空文字は許容するが、キー自体の欠落はスキーマ違反として弾く。
type rawPanelScript struct {
	Description    *string `json:"description"`
	Dialogue       *string `json:"dialogue"`
	CharacterFocus *string `json:"characterFocus"`
}

type rawScriptResponse struct {
	Panels []rawPanelScript `json:"panels"`
}

// parseResponse は AI が返したテキストから Markdown のコードフェンスを除去し、
// スキーマ検証済みの ScriptResponse に変換するのだ。
func parseResponse(raw string) (domain.ScriptResponse, error) {
	raw = strings.TrimSpace(raw)
	var rawJSON string

	matches := jsonBlockRegex.FindStringSubmatch(raw)
	if len(matches) > 1 {
		rawJSON = matches[1]
	} else {
		// Fallback 1: 最も外側の JSON オブジェクトを探す。
		firstBracket := strings.Index(raw, "{")
		lastBracket := strings.LastIndex(raw, "}")
		if firstBracket != -1 && lastBracket != -1 && lastBracket > firstBracket {
			rawJSON = raw[firstBracket : lastBracket+1]
		} else {
			// Fallback 2: レスポンス全体を JSON とみなす。
			rawJSON = raw
		}
	}

	var decoded rawScriptResponse
	if err := json.Unmarshal([]byte(rawJSON), &decoded); err != nil {
		return domain.ScriptResponse{}, fmt.Errorf("AIからの応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %w", truncateString(raw, 200), err)
	}

	result := domain.ScriptResponse{Panels: make([]domain.PanelScript, 0, len(decoded.Panels))}
	for i, p := range decoded.Panels {
		if p.Description == nil || p.Dialogue == nil || p.CharacterFocus == nil {
			return domain.ScriptResponse{}, fmt.Errorf("パネル %d に必須フィールドが欠けています", i+1)
		}
		result.Panels = append(result.Panels, domain.PanelScript{
			Description:    *p.Description,
			Dialogue:       *p.Dialogue,
			CharacterFocus: *p.CharacterFocus,
		})
	}
	return result, nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
