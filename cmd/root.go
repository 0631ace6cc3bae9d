package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/go-comic-studio/internal/config"

	"github.com/spf13/cobra"
)

// opts は CLI フラグの値を受け取る共有の入れ物なのだ。
var opts config.GenerateOptions

var rootCmd = &cobra.Command{
	Use:   "comic-studio",
	Short: "AIで漫画の台本とパネル画像を作るスタジオなのだ。",
	Long: `ストーリーのアイデアからパネル台本を生成し、パネルごとの画像生成まで
行うツールなのだ。serve でエディタ向けAPIサーバーを起動し、
script / generate でワンショット生成もできるのだよ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- 生成入力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.Idea, "idea", "i", "", "物語のアイデア（自由形式のテキスト）なのだ。")
	rootCmd.PersistentFlags().IntVarP(&opts.PanelCount, "panels", "p", 4, "生成するパネル数（2〜10）を指定するのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.Genre, "genre", "g", "", "作品のジャンルなのだ（省略時はデフォルト）。")
	rootCmd.PersistentFlags().StringVarP(&opts.StyleID, "style", "s", "", "画風のスタイルIDなのだ（shonen, cyberpunk など）。")
	rootCmd.PersistentFlags().StringVarP(&opts.Lang, "lang", "l", "en", "台本の言語なのだ（en または zh）。")

	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "保存先ディレクトリ（ローカル or gs://...）なのだ。")

	// --- AIモデル設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", config.DefaultModel, "台本生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", config.DefaultImageModel, "画像生成に使う Gemini モデル名なのだ。")

	// --- サーバー設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.ListenAddr, "addr", config.DefaultListenAddr, "APIサーバーの待ち受けアドレスなのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}

	return nil
}

// loadConfig は環境変数にフラグの値を上書きした設定を組み立てるのだ。
func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	cfg.GeminiModel = opts.AIModel
	cfg.GeminiImageModel = opts.ImageModel
	cfg.Options = opts
	if opts.ListenAddr != "" {
		cfg.ListenAddr = opts.ListenAddr
	}
	return cfg
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addAppFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, scriptCmd, generateCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("コマンドの実行に失敗したのだ", "error", err)
		os.Exit(1)
	}
}
