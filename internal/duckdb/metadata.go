package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file. The path is
// made absolute so the same file is recognized from any directory.
func StatFile(path string) (FileFingerprint, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// SourceValid reports whether the features of fp were recorded from a file
// with the same size and modification time.
func (s *Store) SourceValid(fp FileFingerprint) (bool, error) {
	var size, modTime int64
	err := s.db.QueryRow(`SELECT size, mod_time FROM library_sources WHERE path=?`, fp.Path).Scan(&size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query library source: %w", err)
	}
	return size == fp.Size && modTime == fp.ModTime.UnixNano(), nil
}

// RecordSource remembers fp as exported.
func (s *Store) RecordSource(fp FileFingerprint) error {
	if _, err := s.db.Exec(`DELETE FROM library_sources WHERE path=?`, fp.Path); err != nil {
		return fmt.Errorf("record library source: %w", err)
	}
	if _, err := s.db.Exec(`INSERT INTO library_sources VALUES (?, ?, ?)`,
		fp.Path, fp.Size, fp.ModTime.UnixNano()); err != nil {
		return fmt.Errorf("record library source: %w", err)
	}
	return nil
}
