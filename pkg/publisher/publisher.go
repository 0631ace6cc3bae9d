// Package publisher はワンショットCLIの成果物（台本JSONとパネル画像）を
// ローカルまたは GCS のパスへ書き出します。エディタ状態の永続化では
// ありません。生成結果の持ち出し用の配管です。
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shouni/go-comic-studio/pkg/domain"
	"github.com/shouni/go-comic-studio/pkg/image"

	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultScriptName は台本JSONのデフォルトファイル名です。
	DefaultScriptName = "comic_script.json"
	// DefaultPanelFileName はパネル画像の共通のベースファイル名です。
	// 連番は urlpath.GenerateIndexedPath が拡張子の前に挿入します。
	DefaultPanelFileName = "panel.png"
)

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string // ローカルパスまたは gs://... のベースディレクトリ
}

// PublishResult は書き出されたファイルの情報を保持します。
type PublishResult struct {
	ScriptPath string   // 台本JSONの保存先
	ImagePaths []string // 保存された全パネル画像のパスリスト
}

// ComicPublisher は成果物の書き出しを担います。
type ComicPublisher struct {
	writer remoteio.OutputWriter
}

// NewComicPublisher は書き込み先を注入して ComicPublisher を生成します。
func NewComicPublisher(writer remoteio.OutputWriter) *ComicPublisher {
	return &ComicPublisher{writer: writer}
}

// Publish は台本JSONと、生成済みパネルの画像を一括して書き出すのだ！
// 画像を持たないパネルは黙ってスキップする（台本JSONには全パネルが残る）。
func (p *ComicPublisher) Publish(ctx context.Context, project domain.Project, opts Options) (PublishResult, error) {
	result := PublishResult{}

	scriptPath, err := urlpath.ResolveOutputPath(opts.OutputDir, DefaultScriptName)
	if err != nil {
		return result, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}

	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return result, fmt.Errorf("台本のJSON変換に失敗しました: %w", err)
	}
	if err := p.writer.Write(ctx, scriptPath, bytes.NewReader(data), "application/json"); err != nil {
		return result, fmt.Errorf("台本JSONの書き込みに失敗しました: %w", err)
	}
	result.ScriptPath = scriptPath

	imagePaths, err := p.saveImages(ctx, project, opts.OutputDir)
	if err != nil {
		return result, err
	}
	result.ImagePaths = imagePaths

	slog.Info("成果物の書き出しが完了したのだ！", "script", scriptPath, "images", len(imagePaths))
	return result, nil
}

// saveImages は data URI を元のバイナリに戻し、連番付きで保存するのだ。
func (p *ComicPublisher) saveImages(ctx context.Context, project domain.Project, outputDir string) ([]string, error) {
	basePath, err := urlpath.ResolveOutputPath(outputDir, DefaultPanelFileName)
	if err != nil {
		return nil, fmt.Errorf("画像出力パスの解決に失敗しました: %w", err)
	}

	var saved []string
	for _, panel := range project.Panels {
		if panel.ImageURL == "" {
			continue
		}

		data, mimeType, err := image.FromDataURI(panel.ImageURL)
		if err != nil {
			return saved, fmt.Errorf("第 %d パネルの画像デコードに失敗しました: %w", panel.Position, err)
		}

		panelPath, err := urlpath.GenerateIndexedPath(basePath, panel.Position)
		if err != nil {
			return saved, fmt.Errorf("パネル %d の出力パス生成に失敗しました: %w", panel.Position, err)
		}

		slog.InfoContext(ctx, "パネル画像を保存しています", "position", panel.Position, "path", panelPath)

		if err := p.writer.Write(ctx, panelPath, bytes.NewReader(data), mimeType); err != nil {
			return saved, fmt.Errorf("第 %d パネルの保存に失敗しました (path: %s): %w", panel.Position, panelPath, err)
		}
		saved = append(saved, panelPath)
	}
	return saved, nil
}
