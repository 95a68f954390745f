// go-server/internal/archive/archive.go
//
// SQLite-backed archive of finished activity reports. Live sessions stay
// in memory; once a run finishes its report lands here so instructors can
// review past classes and the ranking survives restarts.

package archive

import (
	"context"
	"database/sql"
	"encoding/json"
)

// Entry is one archived report row. Payload carries the full report JSON;
// the remaining columns are denormalized for listing and ranking.
type Entry struct {
	ID                string          `json:"id"`
	SessionID         string          `json:"sessionId"`
	Group             string          `json:"group"`
	SafeMode          bool            `json:"safeMode"`
	MissionsCompleted int             `json:"missionsCompleted"`
	MissionsTotal     int             `json:"missionsTotal"`
	TotalXP           int             `json:"totalXp"`
	DurationSec       int             `json:"durationSec"`
	GeneratedAt       string          `json:"generatedAt"`
	Payload           json.RawMessage `json:"payload,omitempty"`
	UploadedURL       string          `json:"uploadedUrl,omitempty"`
	CreatedAt         string          `json:"createdAt,omitempty"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert archives one finished report.
func (s *Store) Insert(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports(id, session_id, group_name, safe_mode, missions_completed,
		                     missions_total, total_xp, duration_sec, generated_at, payload, uploaded_url)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		e.ID, e.SessionID, e.Group, e.SafeMode, e.MissionsCompleted,
		e.MissionsTotal, e.TotalXP, e.DurationSec, e.GeneratedAt, string(e.Payload), e.UploadedURL,
	)
	return err
}

// SetUploadedURL records where the PDF ended up after a GitHub upload.
func (s *Store) SetUploadedURL(ctx context.Context, id, url string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE reports SET uploaded_url=? WHERE id=?", url, id)
	return err
}

// Recent lists the newest archived reports, optionally filtered by group.
// Payloads are omitted from the listing.
func (s *Store) Recent(ctx context.Context, group string, limit int) ([]Entry, error) {
	query := `SELECT id, session_id, group_name, safe_mode, missions_completed,
	                 missions_total, total_xp, duration_sec, generated_at, uploaded_url, created_at
	          FROM reports`
	args := []any{}
	if group != "" {
		query += " WHERE group_name=?"
		args = append(args, group)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Group, &e.SafeMode, &e.MissionsCompleted,
			&e.MissionsTotal, &e.TotalXP, &e.DurationSec, &e.GeneratedAt, &e.UploadedURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LBRow is one ranking line: best runs by total XP.
type LBRow struct {
	Group             string `json:"group"`
	TotalXP           int    `json:"totalXp"`
	MissionsCompleted int    `json:"missionsCompleted"`
	MissionsTotal     int    `json:"missionsTotal"`
	GeneratedAt       string `json:"generatedAt"`
}

// Leaderboard returns the highest-XP archived runs.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_name, total_xp, missions_completed, missions_total, generated_at
		 FROM reports
		 ORDER BY total_xp DESC, created_at ASC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LBRow
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Group, &r.TotalXP, &r.MissionsCompleted, &r.MissionsTotal, &r.GeneratedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
