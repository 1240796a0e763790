package report

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func pngPayload(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewFetcher(time.Second)
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/missing.png")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 404")
}

func TestEmbedAttachmentsSkipsFailures(t *testing.T) {
	payload := pngPayload(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/broken.png":
			w.WriteHeader(http.StatusInternalServerError)
		case "/garbage.bin":
			_, _ = w.Write([]byte("not an image"))
		default:
			_, _ = w.Write(payload)
		}
	}))
	defer srv.Close()

	doc := NewDoc("Teste")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	doc.EmbedAttachments(context.Background(), NewFetcher(time.Second), logger, []AttachmentRef{
		{Name: "Primeiro", URL: srv.URL + "/first.png"},
		{Name: "Quebrado", URL: srv.URL + "/broken.png"},
		{Name: "Lixo", URL: srv.URL + "/garbage.bin"},
		{Name: "Sem URL", URL: ""},
		{Name: "Último", URL: srv.URL + "/last.png"},
	})

	data, err := doc.Output()
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
