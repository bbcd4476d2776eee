package seqbase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// DefaultClient is used when an HTTPContext has no client. Sequence files
// can be large, hence the long timeout.
var DefaultClient = &http.Client{Timeout: 30 * time.Minute}

// download fetches url into destPath unless the file already exists. The
// body goes to a temporary file first so an interrupted download never
// leaves a partial file under the final name. With gunzip the body is
// decompressed while streaming.
func download(ctx context.Context, client *http.Client, logger *zap.Logger, url, destPath string, gunzip bool) error {
	if info, err := os.Stat(destPath); err == nil {
		logger.Debug("cached file exists",
			zap.String("file", destPath),
			zap.String("size", formatSize(info.Size())))
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	logger.Info("downloading", zap.String("url", url), zap.String("file", destPath))
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		logger:     logger,
		file:       filepath.Base(destPath),
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	var body io.Reader = io.TeeReader(resp.Body, pw)
	if gunzip {
		gz, err := gzip.NewReader(body)
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("decompress %s: %w", url, err)
		}
		defer gz.Close()
		body = gz
	}

	_, err = io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	logger.Info("download complete",
		zap.String("file", destPath),
		zap.String("size", formatSize(downloaded)))
	return nil
}

// progressWriter logs download progress.
type progressWriter struct {
	logger     *zap.Logger
	file       string
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	// Log progress every second
	if time.Since(pw.lastPrint) > time.Second {
		fields := []zap.Field{zap.String("file", pw.file), zap.String("downloaded", formatSize(*pw.downloaded))}
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fields = append(fields, zap.String("total", formatSize(pw.total)), zap.Float64("percent", pct))
		}
		pw.logger.Debug("download progress", fields...)
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
