package image

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPanelGenerator は画像生成のテスト用の実装です。
type mockPanelGenerator struct {
	generateFunc func(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error)
	lastRequest  imagedom.ImageGenerationRequest
}

func (m *mockPanelGenerator) GenerateMangaPanel(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
	m.lastRequest = req
	return m.generateFunc(ctx, req)
}

func newTestImageRequest() Request {
	return Request{
		Description:      "A robot admires its first painting",
		StyleDescription: "Shonen Manga (High Contrast, Action)",
		CharacterNotes:   "Robot, satisfied",
	}
}

func TestClient_Generate_Success(t *testing.T) {
	pngBytes := []byte{0x89, 0x50, 0x4E, 0x47}
	mock := &mockPanelGenerator{
		generateFunc: func(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
			return &imagedom.ImageResponse{Data: pngBytes, MimeType: "image/png"}, nil
		},
	}
	client, err := NewClient(mock)
	require.NoError(t, err)

	uri, err := client.Generate(context.Background(), newTestImageRequest())
	require.NoError(t, err)

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	assert.Equal(t, want, uri)

	// リクエストの組み立ても確認するのだ
	assert.Equal(t, PanelAspectRatio, mock.lastRequest.AspectRatio)
	assert.NotEmpty(t, mock.lastRequest.NegativePrompt)
	assert.True(t, strings.Contains(mock.lastRequest.Prompt, "Shonen Manga"), "スタイル記述がプロンプトに含まれること")
	assert.True(t, strings.Contains(mock.lastRequest.Prompt, "A robot admires its first painting"), "シーン描写がプロンプトに含まれること")
	assert.True(t, strings.Contains(mock.lastRequest.Prompt, "Robot, satisfied"), "キャラクターメモがプロンプトに含まれること")
}

func TestClient_Generate_DefaultMime(t *testing.T) {
	// MIMEが空でもPNGとして包む
	mock := &mockPanelGenerator{
		generateFunc: func(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
			return &imagedom.ImageResponse{Data: []byte{0x01}}, nil
		},
	}
	client, err := NewClient(mock)
	require.NoError(t, err)

	uri, err := client.Generate(context.Background(), newTestImageRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestClient_Generate_NoImageData(t *testing.T) {
	mock := &mockPanelGenerator{
		generateFunc: func(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
			return &imagedom.ImageResponse{}, nil
		},
	}
	client, err := NewClient(mock)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), newTestImageRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "画像データ")
}

func TestClient_Generate_GeneratorError(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	mock := &mockPanelGenerator{
		generateFunc: func(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
			return nil, wantErr
		},
	}
	client, err := NewClient(mock)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), newTestImageRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestDataURIRoundtrip(t *testing.T) {
	original := []byte("fake image bytes")

	uri := ToDataURI(original, "image/webp")
	data, mimeType, err := FromDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, original, data)
	assert.Equal(t, "image/webp", mimeType)
}

func TestFromDataURI_Invalid(t *testing.T) {
	cases := []struct {
		name string
		uri  string
	}{
		{"dataスキームではない", "https://example.com/image.png"},
		{"カンマがない", "data:image/png;base64"},
		{"base64以外のエンコーディング", "data:image/png,rawbytes"},
		{"base64として不正", "data:image/png;base64,@@@@"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := FromDataURI(c.uri)
			assert.Error(t, err)
		})
	}
}

func TestNewClient_NilGenerator(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)
}
