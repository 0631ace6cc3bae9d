package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-comic-studio/internal/builder"
	"github.com/shouni/go-comic-studio/internal/server"

	"github.com/spf13/cobra"
)

// serveCmd は、エディタ向けのAPIサーバーを起動するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "エディタ向けのAPIサーバーを起動するのだ。",
	Long: `プロジェクトの状態を持つHTTP APIサーバーを起動するのだ。
台本生成・パネル画像生成・テキスト編集・スタイル切り替えを
すべてAPI経由で操作できるのだよ。`,
	RunE: serveCommand,
}

func serveCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := loadConfig()

	app, err := builder.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの組み立てに失敗したのだ: %w", err)
	}

	slog.Info("コミックスタジオを起動するのだ！",
		"addr", cfg.ListenAddr,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel)

	srv := server.New(app.Studio)
	if err := srv.Run(ctx, cfg.ListenAddr); err != nil {
		return fmt.Errorf("サーバーの実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("サーバーを停止したのだ")
	return nil
}
