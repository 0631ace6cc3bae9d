package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-comic-studio/internal/builder"
	"github.com/shouni/go-comic-studio/pkg/locale"

	"github.com/spf13/cobra"
)

// generateCmd は、台本とパネル画像の生成を一括で実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "AIに台本とパネル画像を一括生成させるのだ。",
	Long: `ストーリーのアイデアを解析し、パネル台本の生成から全パネルの
画像生成までを一気に実行するのだ。出力は台本JSONとパネルごとの
画像ファイルになるのだよ。`,
	RunE: generateCommand,
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 必須チェック
	if opts.Idea == "" {
		return fmt.Errorf("ストーリーのアイデア（--idea）を指定してほしいのだ")
	}

	// 2. 環境変数等から基本設定をロードするのだ
	cfg := loadConfig()
	app, err := builder.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの組み立てに失敗したのだ: %w", err)
	}
	applyProjectOptions(app)

	slog.Info("漫画生成パイプラインを起動するのだ！",
		"panels", opts.PanelCount,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"output_dir", opts.OutputDir)

	// 3. 台本の生成
	if _, err := app.Studio.GenerateScript(ctx, opts.Idea, opts.PanelCount, locale.Parse(opts.Lang)); err != nil {
		return fmt.Errorf("台本生成中にエラーが発生したのだ: %w", err)
	}

	// 4. 全パネルの画像を並列生成するのだ
	project, err := app.Studio.GenerateAllImages(ctx)
	if err != nil {
		return fmt.Errorf("画像生成中にエラーが発生したのだ: %w", err)
	}

	// 5. 成果物の書き出し
	result, err := publishProject(ctx, app, project)
	if err != nil {
		return err
	}

	slog.Info("すべての生成工程が完了したのだ！",
		"script", result.ScriptPath,
		"images", len(result.ImagePaths))
	return nil
}
