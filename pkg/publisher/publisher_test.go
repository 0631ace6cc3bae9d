package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shouni/go-comic-studio/pkg/domain"
	"github.com/shouni/go-comic-studio/pkg/image"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter は書き込み内容をメモリに溜めるテスト用の実装です。
type fakeWriter struct {
	writes []writeCall
	err    error
}

type writeCall struct {
	path     string
	data     []byte
	mimeType string
}

func (w *fakeWriter) Write(ctx context.Context, path string, data io.Reader, mimeType string) error {
	if w.err != nil {
		return w.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	w.writes = append(w.writes, writeCall{path: path, data: b, mimeType: mimeType})
	return nil
}

func testProject(t *testing.T) domain.Project {
	t.Helper()
	project := domain.NewProject()
	p1 := domain.NewPanel(1, "scene A", "line A", "hero")
	p1.ImageURL = image.ToDataURI([]byte("png-bytes-1"), "image/png")
	p1.Status = domain.StatusSuccess
	p2 := domain.NewPanel(2, "scene B", "line B", "hero") // 画像なし
	p3 := domain.NewPanel(3, "scene C", "line C", "hero")
	p3.ImageURL = image.ToDataURI([]byte("png-bytes-3"), "image/png")
	p3.Status = domain.StatusSuccess
	project.Panels = []domain.Panel{p1, p2, p3}
	return project
}

func TestPublish(t *testing.T) {
	writer := &fakeWriter{}
	pub := NewComicPublisher(writer)

	result, err := pub.Publish(context.Background(), testProject(t), Options{OutputDir: "out"})
	require.NoError(t, err)

	// 台本JSON + 画像2枚（画像なしパネルはスキップ）
	require.Len(t, writer.writes, 3)

	script := writer.writes[0]
	assert.True(t, strings.HasSuffix(script.path, DefaultScriptName), "台本の保存先: %s", script.path)
	assert.Equal(t, "application/json", script.mimeType)
	assert.Equal(t, result.ScriptPath, script.path)

	var decoded domain.Project
	require.NoError(t, json.Unmarshal(script.data, &decoded))
	assert.Len(t, decoded.Panels, 3, "画像なしパネルも台本JSONには残ること")

	require.Len(t, result.ImagePaths, 2)
	assert.Equal(t, []byte("png-bytes-1"), writer.writes[1].data)
	assert.Equal(t, "image/png", writer.writes[1].mimeType)
	assert.Equal(t, []byte("png-bytes-3"), writer.writes[2].data)
	assert.Contains(t, writer.writes[1].path, "panel_1")
	assert.Contains(t, writer.writes[2].path, "panel_3")
}

func TestPublish_NoImages(t *testing.T) {
	writer := &fakeWriter{}
	pub := NewComicPublisher(writer)

	project := domain.NewProject()
	project.Panels = []domain.Panel{domain.NewPanel(1, "scene", "", "")}

	result, err := pub.Publish(context.Background(), project, Options{OutputDir: "out"})
	require.NoError(t, err)
	assert.Len(t, writer.writes, 1, "台本JSONだけが書き出されること")
	assert.Empty(t, result.ImagePaths)
}

func TestPublish_WriterError(t *testing.T) {
	wantErr := errors.New("bucket unavailable")
	pub := NewComicPublisher(&fakeWriter{err: wantErr})

	_, err := pub.Publish(context.Background(), testProject(t), Options{OutputDir: "out"})
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestPublish_BrokenDataURI(t *testing.T) {
	writer := &fakeWriter{}
	pub := NewComicPublisher(writer)

	project := domain.NewProject()
	broken := domain.NewPanel(1, "scene", "", "")
	broken.ImageURL = "http://example.com/not-a-data-uri.png"
	project.Panels = []domain.Panel{broken}

	_, err := pub.Publish(context.Background(), project, Options{OutputDir: "out"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "デコードに失敗")
}
