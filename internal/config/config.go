package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel        = "gemini-3-flash-preview"
	DefaultImageModel   = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultRateInterval = 10 * time.Second
	DefaultListenAddr   = ":8080"
	DefaultOutputDir    = "output"
)

// Config はアプリケーション全体の環境設定（APIキーやモデル名）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	ListenAddr       string

	HTTPTimeout  time.Duration
	RateInterval time.Duration

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		ListenAddr:       envutil.GetEnv("LISTEN_ADDR", DefaultListenAddr),
		HTTPTimeout:      DefaultHTTPTimeout,
		RateInterval:     DefaultRateInterval,
	}
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ワンショット生成の入力
	Idea       string // --idea: 物語のアイデア
	PanelCount int    // --panels: 生成するパネル数 [2,10]
	Genre      string // --genre
	StyleID    string // --style: スタイルカタログのID
	Lang       string // --lang: en または zh

	// 出力設定
	OutputDir string // --output-dir: ローカル or gs://...

	// AI挙動設定
	AIModel    string // --model: テキスト生成用のGeminiモデル
	ImageModel string // --image-model: 画像生成用のGeminiモデル

	// サーバー設定
	ListenAddr string // --addr
}
