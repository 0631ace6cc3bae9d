package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-comic-studio/internal/builder"
	"github.com/shouni/go-comic-studio/pkg/domain"
	"github.com/shouni/go-comic-studio/pkg/locale"
	"github.com/shouni/go-comic-studio/pkg/publisher"

	"github.com/spf13/cobra"
)

// scriptCmd は、台本の生成（JSON出力）のみを実行するのだ。
var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "台本（JSON）のみを生成して保存するのだ。",
	Long: `ストーリーのアイデアを解析し、パネルごとの構成案（描写、台詞、
キャラクターメモ）をJSON形式で出力するのだ。画像生成は行わないのだよ。`,
	RunE: scriptCommand,
}

func scriptCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 入力の必須チェック (opts は addAppFlags で紐付け済みと想定)
	if opts.Idea == "" {
		return fmt.Errorf("ストーリーのアイデア（--idea）を指定してほしいのだ")
	}

	// 2. 設定のロードとアプリケーションの組み立て
	cfg := loadConfig()
	app, err := builder.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの組み立てに失敗したのだ: %w", err)
	}
	applyProjectOptions(app)

	slog.Info("台本生成モードを起動するのだ！",
		"panels", opts.PanelCount,
		"text_model", cfg.GeminiModel,
		"output_dir", opts.OutputDir)

	// 3. 実行
	project, err := app.Studio.GenerateScript(ctx, opts.Idea, opts.PanelCount, locale.Parse(opts.Lang))
	if err != nil {
		return fmt.Errorf("台本生成中にエラーが発生したのだ: %w", err)
	}

	// 4. 成果物の書き出し
	result, err := publishProject(ctx, app, project)
	if err != nil {
		return err
	}

	slog.Info("台本（JSON）の生成が完了したのだ！", "output_file", result.ScriptPath)
	return nil
}

// applyProjectOptions はフラグで指定されたジャンル・スタイルをストアへ反映するのだ。
func applyProjectOptions(app *builder.AppContext) {
	if opts.Genre != "" {
		app.Store.SetGenre(opts.Genre)
	}
	if opts.StyleID != "" {
		app.Store.SetStyle(opts.StyleID)
	}
}

// publishProject はプロジェクトの内容を出力先へ一括して書き出すのだ。
func publishProject(ctx context.Context, app *builder.AppContext, project domain.Project) (publisher.PublishResult, error) {
	writer, err := builder.NewOutputWriter(ctx)
	if err != nil {
		return publisher.PublishResult{}, fmt.Errorf("出力先の初期化に失敗したのだ: %w", err)
	}

	pub := publisher.NewComicPublisher(writer)
	result, err := pub.Publish(ctx, project, publisher.Options{OutputDir: opts.OutputDir})
	if err != nil {
		return result, fmt.Errorf("成果物の書き出しに失敗したのだ: %w", err)
	}
	return result, nil
}
