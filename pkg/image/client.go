// Package image は1パネル分のアートワークを生成する画像クライアントです。
// gemini-image-kit のジェネレーターを薄く包み、生成結果をブラウザで
// そのまま表示できる data URI ハンドルとして返します。
package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
)

const (
	// PanelAspectRatio は全パネル共通のアスペクト比です。
	// 正方形はグリッドレイアウトで最も潰しが効くのだ。
	PanelAspectRatio = "1:1"

	// defaultMimeType はAIがMIMEを返さなかった場合のフォールバックです。
	defaultMimeType = "image/png"

	// negativePrompt は吹き出し・文字・低品質描写を排除する共通指示です。
	negativePrompt = "speech bubble, dialogue balloon, text, alphabet, letters, words, signatures, watermark, username, low quality, distorted, bad anatomy"
)

// PanelGenerator は画像生成に必要な最小限の契約です。
// gemini-image-kit の generator.ImageGenerator がこれを満たします。
type PanelGenerator interface {
	GenerateMangaPanel(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error)
}

// Request は1パネル分の画像生成入力です。
// StyleDescription はローカライズ済みラベルではなく、カタログの英語記述を
// 渡すこと。言語を切り替えても画風の語彙がブレないようにするためなのだ。
type Request struct {
	Description      string // パネルの視覚描写（AI向けプロンプト）
	StyleDescription string // スタイルの正規（英語）記述
	CharacterNotes   string // キャラクター一貫性のための文脈
}

// Client は Gemini 画像モデルを使うパネルアートクライアントの実体です。
type Client struct {
	generator PanelGenerator
}

// NewClient は依存関係を注入して Client を初期化します。
func NewClient(generator PanelGenerator) (*Client, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator (PanelGenerator) は必須です")
	}
	return &Client{generator: generator}, nil
}

// Generate は1パネル分のアートを生成し、data URI を返すのだ。
// レスポンスに画像パーツが1つも含まれない場合はハードエラーとする。
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	prompt := buildPrompt(req)

	slog.Info("パネル画像の生成を開始するのだ", "aspect_ratio", PanelAspectRatio)

	resp, err := c.generator.GenerateMangaPanel(ctx, imagedom.ImageGenerationRequest{
		Prompt:         prompt,
		NegativePrompt: negativePrompt,
		AspectRatio:    PanelAspectRatio,
	})
	if err != nil {
		return "", fmt.Errorf("パネル画像の生成に失敗したのだ: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return "", fmt.Errorf("レスポンスに画像データが含まれていないのだ")
	}

	return ToDataURI(resp.Data, resp.MimeType), nil
}

// buildPrompt はスタイル・シーン・キャラクター文脈を1つのプロンプトに
// 合成するのだ。スタイル記述を先頭に置いて画風の優先度を上げる。
func buildPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("Create a professional manga panel.\n")
	fmt.Fprintf(&sb, "Art Style: %s.\n", req.StyleDescription)
	fmt.Fprintf(&sb, "Scene Description: %s.\n", req.Description)
	fmt.Fprintf(&sb, "Character Details: %s.\n", req.CharacterNotes)
	sb.WriteString("Quality: High contrast, detailed ink lines, cinematic composition. Black and white or colored manga style.")

	return sb.String()
}

// ToDataURI はバイナリ画像をブラウザ表示可能な data URI に包みます。
func ToDataURI(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// FromDataURI は data URI から元のバイナリと MIME タイプを取り出します。
// パブリッシャーがファイル保存する際に使います。
func FromDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("data URI ではありません")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("data URI の形式が不正です")
	}
	mimeType, _, _ := strings.Cut(meta, ";")
	if !strings.Contains(meta, "base64") {
		return nil, "", fmt.Errorf("base64 以外のエンコーディングには対応していません")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("base64 のデコードに失敗しました: %w", err)
	}
	return data, mimeType, nil
}
