// Package builder はアプリケーションの依存関係を組み立てる配線層です。
// AIクライアント、画像ジェネレーター、ストア、オーケストレーターを
// 一箇所で初期化し、cmd 側のコードを薄く保つのだ。
package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/shouni/go-comic-studio/internal/config"
	"github.com/shouni/go-comic-studio/pkg/domain"
	"github.com/shouni/go-comic-studio/pkg/image"
	"github.com/shouni/go-comic-studio/pkg/script"
	"github.com/shouni/go-comic-studio/pkg/store"
	"github.com/shouni/go-comic-studio/pkg/studio"

	"github.com/patrickmn/go-cache"
	imageKit "github.com/shouni/gemini-image-kit/pkg/generator"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/genai"
)

const (
	defaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 15 * time.Minute
	defaultCacheTTL        = 5 * time.Minute
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する。
// これを各コマンドに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config *config.Config
	Store  *store.ProjectStore
	Studio *studio.Studio
}

// Build は設定からアプリケーション本体を組み立てるのだ。
func Build(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	httpClient := httpkit.New(cfg.HTTPTimeout)

	aiClient, err := initializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	imgGen, err := initializeImageGenerator(httpClient, aiClient, cfg.GeminiImageModel)
	if err != nil {
		return nil, err
	}

	scriptClient, err := script.NewClient(aiClient, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("台本クライアントの初期化に失敗しました: %w", err)
	}
	imageClient, err := image.NewClient(imgGen)
	if err != nil {
		return nil, fmt.Errorf("画像クライアントの初期化に失敗しました: %w", err)
	}

	projectStore := store.New(domain.NewProject())
	st, err := studio.New(projectStore, scriptClient, imageClient, cfg.RateInterval)
	if err != nil {
		return nil, fmt.Errorf("オーケストレーターの初期化に失敗しました: %w", err)
	}

	return &AppContext{
		Config: cfg,
		Store:  projectStore,
		Studio: st,
	}, nil
}

// NewOutputWriter はワンショットCLIの成果物書き出し先（ローカル/GCS）を用意するのだ。
func NewOutputWriter(ctx context.Context) (remoteio.OutputWriter, error) {
	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		return nil, err
	}
	return writer, nil
}

// initializeAIClient は gemini クライアントを初期化します。
func initializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	const defaultGeminiTemperature = float32(0.2)
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// initializeImageGenerator は gemini-image-kit のジェネレーターを初期化します。
func initializeImageGenerator(httpClient httpkit.ClientInterface, aiClient gemini.GenerativeModel, model string) (imageKit.ImageGenerator, error) {
	imgCache := cache.New(defaultCacheExpiration, cacheCleanupInterval)

	core, err := imageKit.NewGeminiImageCore(httpClient, imgCache, defaultCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCoreの初期化に失敗しました: %w", err)
	}

	imgGen, err := imageKit.NewGeminiGenerator(core, aiClient, model)
	if err != nil {
		return nil, fmt.Errorf("GeminiGeneratorの初期化に失敗しました: %w", err)
	}

	return imgGen, nil
}
