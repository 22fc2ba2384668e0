package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"civiclens/models"
)

const reportColumns = "seq, ts, user_id, latitude, longitude, category, severity, description, COALESCE(status, ''), image"

// Filter narrows a report listing.
type Filter struct {
	UserID   string
	Status   models.Status
	Severity models.Severity
	Limit    int
}

// SaveReport writes a new report row and returns the assigned seq. All
// required fields are gathered before this single insert; a failed create
// leaves nothing behind.
func (d *Database) SaveReport(ctx context.Context, r *models.Report) (int, error) {
	result, err := d.db.ExecContext(ctx, `
		INSERT INTO reports (user_id, latitude, longitude, category, severity, description, status, image)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?)`,
		r.UserID, r.Latitude, r.Longitude, r.Category, string(r.Severity.Normalize()), r.Description, r.Image)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted seq: %w", err)
	}
	return int(seq), nil
}

func (d *Database) scanReports(rows *sql.Rows) ([]models.Report, error) {
	var reports []models.Report
	for rows.Next() {
		var r models.Report
		var status string
		if err := rows.Scan(&r.Seq, &r.Timestamp, &r.UserID, &r.Latitude, &r.Longitude,
			&r.Category, &r.Severity, &r.Description, &status, &r.Image); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		// Untriaged rows store NULL; callers only ever see todo.
		if status == "" {
			status = string(models.StatusTodo)
		}
		r.Status = models.Status(status)
		r.Upvotes = []string{}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return reports, nil
}

// attachUpvotes loads the upvote sets for the given reports in one query.
func (d *Database) attachUpvotes(ctx context.Context, reports []models.Report) error {
	if len(reports) == 0 {
		return nil
	}

	index := make(map[int]*models.Report, len(reports))
	placeholders := make([]string, len(reports))
	args := make([]interface{}, len(reports))
	for i := range reports {
		index[reports[i].Seq] = &reports[i]
		placeholders[i] = "?"
		args[i] = reports[i].Seq
	}

	query := fmt.Sprintf(
		"SELECT seq, user_id FROM report_upvotes WHERE seq IN (%s) ORDER BY ts ASC",
		strings.Join(placeholders, ", "))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query upvotes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq int
		var userID string
		if err := rows.Scan(&seq, &userID); err != nil {
			return fmt.Errorf("failed to scan upvote: %w", err)
		}
		if r, ok := index[seq]; ok {
			r.Upvotes = append(r.Upvotes, userID)
		}
	}
	return rows.Err()
}

// GetReports lists reports newest first, optionally filtered.
func (d *Database) GetReports(ctx context.Context, f Filter) ([]models.Report, error) {
	query := "SELECT " + reportColumns + " FROM reports"
	var clauses []string
	var args []interface{}

	if f.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		if f.Status == models.StatusTodo {
			clauses = append(clauses, "(status IS NULL OR status = '' OR status = ?)")
		} else {
			clauses = append(clauses, "status = ?")
		}
		args = append(args, string(f.Status))
	}
	if f.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, string(f.Severity.Normalize()))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY ts DESC, seq DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports, err := d.scanReports(rows)
	if err != nil {
		return nil, err
	}
	if err := d.attachUpvotes(ctx, reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetReport fetches one report by seq, including its upvote set.
func (d *Database) GetReport(ctx context.Context, seq int) (*models.Report, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE seq = ?", seq)

	var r models.Report
	var status string
	err := row.Scan(&r.Seq, &r.Timestamp, &r.UserID, &r.Latitude, &r.Longitude,
		&r.Category, &r.Severity, &r.Description, &status, &r.Image)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %d: %w", seq, err)
	}
	if status == "" {
		status = string(models.StatusTodo)
	}
	r.Status = models.Status(status)
	r.Upvotes = []string{}

	reports := []models.Report{r}
	if err := d.attachUpvotes(ctx, reports); err != nil {
		return nil, err
	}
	return &reports[0], nil
}

// GetHighSeverityReports returns up to limit high-severity reports in arrival
// order. The severity column is matched against all three literal case
// variants because the stored value is written by clients of several
// generations.
func (d *Database) GetHighSeverityReports(ctx context.Context, limit int) ([]models.Report, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE severity IN ('High', 'high', 'HIGH') ORDER BY seq ASC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query high severity reports: %w", err)
	}
	defer rows.Close()

	reports, err := d.scanReports(rows)
	if err != nil {
		return nil, err
	}
	if err := d.attachUpvotes(ctx, reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// UpdateStatus sets a report's triage status. The caller validates the
// transition against the current status first.
func (d *Database) UpdateStatus(ctx context.Context, seq int, status models.Status) error {
	result, err := d.db.ExecContext(ctx,
		"UPDATE reports SET status = ? WHERE seq = ?", string(status), seq)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		// Either the seq is gone or the status already had this value.
		// Distinguish them so a vanished report surfaces as NotFound.
		var exists int
		if err := d.db.QueryRowContext(ctx,
			"SELECT 1 FROM reports WHERE seq = ?", seq).Scan(&exists); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return fmt.Errorf("failed to check report existence: %w", err)
		}
	}
	return nil
}

// ToggleUpvote flips userID's membership in the report's upvote set using
// atomic row delete/insert, avoiding the read-modify-write race. It returns
// true when the upvote was added and false when it was removed.
func (d *Database) ToggleUpvote(ctx context.Context, seq int, userID string) (bool, error) {
	var exists int
	if err := d.db.QueryRowContext(ctx,
		"SELECT 1 FROM reports WHERE seq = ?", seq).Scan(&exists); err == sql.ErrNoRows {
		return false, ErrNotFound
	} else if err != nil {
		return false, fmt.Errorf("failed to check report existence: %w", err)
	}

	result, err := d.db.ExecContext(ctx,
		"DELETE FROM report_upvotes WHERE seq = ? AND user_id = ?", seq, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove upvote: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if removed > 0 {
		return false, nil
	}

	// INSERT IGNORE keeps a concurrent duplicate add harmless.
	if _, err := d.db.ExecContext(ctx,
		"INSERT IGNORE INTO report_upvotes (seq, user_id) VALUES (?, ?)", seq, userID); err != nil {
		return false, fmt.Errorf("failed to add upvote: %w", err)
	}
	return true, nil
}

// GetReportsSince returns reports with seq greater than sinceSeq in seq
// order. Used by the live feed broadcast loop.
func (d *Database) GetReportsSince(ctx context.Context, sinceSeq int) ([]models.Report, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE seq > ? ORDER BY seq ASC", sinceSeq)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports since %d: %w", sinceSeq, err)
	}
	defer rows.Close()

	reports, err := d.scanReports(rows)
	if err != nil {
		return nil, err
	}
	if err := d.attachUpvotes(ctx, reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetLatestReportSeq returns the highest assigned seq, zero when the table
// is empty.
func (d *Database) GetLatestReportSeq(ctx context.Context) (int, error) {
	var seq int
	err := d.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) FROM reports").Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest seq: %w", err)
	}
	return seq, nil
}
