// Package server はエディタUI向けのHTTP APIを提供します。
// ルーティングと入出力の整形だけを担当し、ドメインの判断はすべて
// pkg/studio に委譲するのだ。
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shouni/go-comic-studio/pkg/studio"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Server は gin エンジンとオーケストレーターを束ねるHTTPサーバーです。
type Server struct {
	engine *gin.Engine
	studio *studio.Studio
}

// New はルーティングを組み立てた Server を生成します。
func New(st *studio.Studio) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	// エディタのフロントエンドは別オリジンで配信される前提なのだ
	engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	s := &Server{
		engine: engine,
		studio: st,
	}
	s.registerRoutes()
	return s
}

// Engine はテスト用に内部の gin エンジンを公開します。
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	h := newHandlers(s.studio)

	api := s.engine.Group("/api")
	{
		api.GET("/project", h.getProject)
		api.GET("/styles", h.listStyles)

		api.POST("/script", h.generateScript)

		api.POST("/panels", h.addPanel)
		api.PATCH("/panels/:id/text", h.updatePanelText)
		api.POST("/panels/:id/image", h.generatePanelImage)
		api.POST("/panels/images", h.generateAllImages)

		api.PUT("/project/style", h.setStyle)
		api.PUT("/project/meta", h.setMeta)
	}
}

// Run はグレースフルシャットダウン付きでサーバーを起動するのだ。
// ctx がキャンセルされると接続を掃除してから戻る。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("APIサーバーを起動するのだ！", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("シャットダウン要求を受け付けたのだ")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
