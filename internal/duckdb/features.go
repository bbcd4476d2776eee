package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// FeatureRecord is one extracted feature of one gene.
type FeatureRecord struct {
	Library  string
	TaxonID  int64
	Gene     string
	GeneType string
	Chains   string
	Feature  string
	Sequence string
}

// featureKey is the composite key for deduplicating records before writing.
type featureKey struct {
	library, gene, feature string
	taxon                  int64
}

// WriteFeatures batch-inserts feature records into DuckDB using the Appender API.
// Duplicate (library, taxon_id, gene, feature) entries are deduplicated before writing.
func (s *Store) WriteFeatures(records []FeatureRecord) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[featureKey]bool, len(records))
	deduped := make([]FeatureRecord, 0, len(records))
	for _, r := range records {
		k := featureKey{r.Library, r.Gene, r.Feature, r.TaxonID}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "gene_features")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range deduped {
		if err := appender.AppendRow(
			r.Library, r.TaxonID, r.Gene, r.GeneType, r.Chains,
			r.Feature, r.Sequence, int32(len(r.Sequence)),
		); err != nil {
			return fmt.Errorf("append feature: %w", err)
		}
	}

	return appender.Flush()
}

// ClearFeatures removes all stored features.
func (s *Store) ClearFeatures() error {
	_, err := s.db.Exec("DELETE FROM gene_features")
	return err
}

// ClearLibrary removes the features of one library.
func (s *Store) ClearLibrary(library string, taxonID int64) error {
	_, err := s.db.Exec("DELETE FROM gene_features WHERE library=? AND taxon_id=?", library, taxonID)
	return err
}

// LookupFeature returns the stored sequence of a gene feature. ok is false
// when nothing was stored.
func (s *Store) LookupFeature(library string, taxonID int64, gene, feature string) (seq string, ok bool, err error) {
	rows, err := s.db.Query(`SELECT sequence FROM gene_features
		WHERE library=? AND taxon_id=? AND gene=? AND feature=?`,
		library, taxonID, gene, feature)
	if err != nil {
		return "", false, fmt.Errorf("query feature: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&seq); err != nil {
			return "", false, fmt.Errorf("scan feature: %w", err)
		}
		ok = true
	}
	if err := rows.Err(); err != nil {
		return "", false, fmt.Errorf("iterate features: %w", err)
	}
	return seq, ok, nil
}

// SearchByGene returns all stored features of a gene, allele included in
// the name, ordered by library and feature.
func (s *Store) SearchByGene(gene string) ([]FeatureRecord, error) {
	rows, err := s.db.Query(`SELECT
		library, taxon_id, gene, gene_type, chains, feature, sequence
		FROM gene_features
		WHERE gene=?
		ORDER BY library, taxon_id, feature`, gene)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanFeatureRecords(rows)
}

// SearchBySequence returns the features with exactly the given sequence.
func (s *Store) SearchBySequence(seq string) ([]FeatureRecord, error) {
	rows, err := s.db.Query(`SELECT
		library, taxon_id, gene, gene_type, chains, feature, sequence
		FROM gene_features
		WHERE sequence=?
		ORDER BY library, taxon_id, gene, feature`, seq)
	if err != nil {
		return nil, fmt.Errorf("query by sequence: %w", err)
	}
	defer rows.Close()

	return scanFeatureRecords(rows)
}

// scanFeatureRecords scans rows into FeatureRecord slices.
func scanFeatureRecords(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]FeatureRecord, error) {
	var records []FeatureRecord
	for rows.Next() {
		var r FeatureRecord
		if err := rows.Scan(
			&r.Library, &r.TaxonID, &r.Gene, &r.GeneType, &r.Chains, &r.Feature, &r.Sequence,
		); err != nil {
			return nil, fmt.Errorf("scan feature record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature records: %w", err)
	}
	return records, nil
}
