package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/phpdave11/gofpdf"
)

const (
	maxAttachmentBytes = 20 << 20
	attachmentWidth    = 170.0 // fixed content width in mm
)

// AttachmentRef names a remote document to embed.
type AttachmentRef struct {
	Name string
	URL  string
}

// Fetcher retrieves attachment payloads by URL.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads one attachment payload.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("report: fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes))
}

// EmbedAttachments fetches each attachment in order, decodes it as an
// image and places it full-width on the page, breaking pages as
// needed. A failed fetch or decode is logged and skipped so one bad
// attachment never aborts the document. Non-image payloads fail the
// decode step and are skipped the same way.
func (d *Doc) EmbedAttachments(ctx context.Context, fetcher *Fetcher, logger *slog.Logger, items []AttachmentRef) {
	for i, item := range items {
		if item.URL == "" {
			continue
		}
		payload, err := fetcher.Fetch(ctx, item.URL)
		if err != nil {
			if logger != nil {
				logger.Warn("skip attachment", slog.String("name", item.Name), slog.Any("error", err))
			}
			continue
		}
		if err := d.embedImage(fmt.Sprintf("attachment-%d", i), item.Name, payload); err != nil {
			if logger != nil {
				logger.Warn("skip attachment", slog.String("name", item.Name), slog.Any("error", err))
			}
		}
	}
}

func (d *Doc) embedImage(key, caption string, payload []byte) error {
	img, err := imaging.Decode(bytes.NewReader(payload), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("report: decode image: %w", err)
	}

	// Re-encode to PNG so gofpdf sees one uniform format regardless
	// of the uploaded file type.
	var encoded bytes.Buffer
	if err := imaging.Encode(&encoded, img, imaging.PNG); err != nil {
		return fmt.Errorf("report: encode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 {
		return fmt.Errorf("report: empty image")
	}
	height := attachmentWidth * float64(bounds.Dy()) / float64(bounds.Dx())

	d.ensureSpace(rowH + height)
	if caption != "" {
		d.pdf.SetFont("Helvetica", "B", 10)
		d.pdf.CellFormat(0, rowH, caption, "", 1, "L", false, 0, "")
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	d.pdf.RegisterImageOptionsReader(key, opts, &encoded)
	x, y := d.pdf.GetXY()
	d.pdf.ImageOptions(key, x, y, attachmentWidth, height, false, opts, 0, "")
	d.pdf.SetY(y + height + 4)
	return nil
}
