package database

import "database/sql"

const previewLen = 100

// Analysis is one stored verdict record.
type Analysis struct {
	ID           int64   `json:"id"`
	TextPreview  string  `json:"text_preview"`
	Prediction   string  `json:"prediction"`
	Confidence   float64 `json:"confidence"`
	Basis        string  `json:"basis"`
	Weight       float64 `json:"weight"`
	SourcesFound int     `json:"sources_found"`
	CreatedAt    string  `json:"created_at"`
}

// Stats summarizes the stored history.
type Stats struct {
	Total         int     `json:"total_analyses"`
	FakeCount     int     `json:"fake_count"`
	RealCount     int     `json:"real_count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// InsertAnalysis records a completed analysis. Only a short preview of the
// claim text is stored.
func (db *DB) InsertAnalysis(text, prediction string, confidence float64, basis string, weight float64, sourcesFound int) (int64, error) {
	preview := text
	if r := []rune(preview); len(r) > previewLen {
		preview = string(r[:previewLen])
	}

	result, err := db.conn.Exec(
		`INSERT INTO analyses (text_preview, prediction, confidence, basis, weight, sources_found)
		VALUES (?, ?, ?, ?, ?, ?)`,
		preview, prediction, confidence, basis, weight, sourcesFound,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetRecentAnalyses returns the most recent analyses, newest first.
func (db *DB) GetRecentAnalyses(limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(
		`SELECT id, text_preview, prediction, confidence, basis, weight, sources_found, created_at
		FROM analyses ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAnalyses(rows)
}

// GetStats returns aggregate counts over all stored analyses.
func (db *DB) GetStats() (*Stats, error) {
	var s Stats
	var avg sql.NullFloat64
	err := db.conn.QueryRow(
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN prediction = 'Fake' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN prediction = 'Real' THEN 1 ELSE 0 END), 0),
			AVG(confidence)
		FROM analyses`,
	).Scan(&s.Total, &s.FakeCount, &s.RealCount, &avg)
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		s.AvgConfidence = avg.Float64
	}
	return &s, nil
}

func scanAnalyses(rows *sql.Rows) ([]Analysis, error) {
	var analyses []Analysis
	for rows.Next() {
		var a Analysis
		if err := rows.Scan(&a.ID, &a.TextPreview, &a.Prediction, &a.Confidence,
			&a.Basis, &a.Weight, &a.SourcesFound, &a.CreatedAt); err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}
