package api

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"realmatlas/storage"
)

// ExportClient ships export documents to a companion endpoint. When the
// endpoint is unset or unreachable the document is written to the local
// exports folder instead, so user data is never lost; that fallback is the
// only path that may fail the export, and it fails only that export.
type ExportClient struct {
	endpoint string
	client   *http.Client
}

// NewExportClient creates an export client. An empty endpoint always takes
// the local-file path.
func NewExportClient(endpoint string, timeout time.Duration) *ExportClient {
	return &ExportClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Export delivers a marshalled document. The prefix names the fallback
// file, e.g. "patrol_points" -> patrol_points_20260830_120000.json.
// Returns a description of where the document ended up.
func (c *ExportClient) Export(prefix string, doc []byte, now time.Time) (string, error) {
	if c.endpoint != "" {
		err := c.post(doc)
		if err == nil {
			return c.endpoint, nil
		}
		log.Warn().Err(err).Str("endpoint", c.endpoint).Msg("remote export failed, falling back to local file")
	}
	return c.writeLocal(prefix, doc, now)
}

func (c *ExportClient) post(doc []byte) error {
	resp, err := c.client.Post(c.endpoint, "application/json", bytes.NewReader(doc))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("export endpoint returned %s", resp.Status)
	}
	return nil
}

func (c *ExportClient) writeLocal(prefix string, doc []byte, now time.Time) (string, error) {
	name := fmt.Sprintf("%s_%s.json", prefix, now.Format("20060102_150405"))
	path := filepath.Join(storage.ExportsDir(), name)
	if err := storage.WriteDataFile(filepath.Join("exports", name), doc, 0o644); err != nil {
		return "", fmt.Errorf("local export fallback failed: %w", err)
	}
	log.Info().Str("file", path).Msg("export written")
	return path, nil
}
