package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"civiclens/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
	d    *Database
)

func setUp() {
	db, mock, _ = sqlmock.New()
	d = NewWithDB(db)
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

var reportCols = []string{"seq", "ts", "user_id", "latitude", "longitude",
	"category", "severity", "description", "COALESCE(status, '')", "image"}

func reportRow(seq int, severity, status string) []driverValue {
	return []driverValue{seq, time.Now(), "user1", 40.7128, -74.0060,
		"Pothole", severity, "A pothole.", status, []byte{}}
}

type driverValue = driver.Value

func addRows(rows *sqlmock.Rows, vals ...[]driverValue) *sqlmock.Rows {
	for _, v := range vals {
		rows.AddRow(v...)
	}
	return rows
}

func TestSaveReport(t *testing.T) {
	it(func() {
		mock.ExpectExec("INSERT INTO reports \\(user_id, latitude, longitude, category, severity, description, status, image\\)").
			WithArgs("user1", 40.7128, -74.0060, "Pothole", "High", "A pothole.", []byte("img")).
			WillReturnResult(sqlmock.NewResult(7, 1))

		seq, err := d.SaveReport(context.Background(), &models.Report{
			UserID:      "user1",
			Latitude:    40.7128,
			Longitude:   -74.0060,
			Category:    "Pothole",
			Severity:    "high", // stored normalized
			Description: "A pothole.",
			Image:       []byte("img"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seq != 7 {
			t.Errorf("expected seq 7, got %d", seq)
		}
	})
}

func TestGetHighSeverityReports(t *testing.T) {
	it(func() {
		rows := addRows(sqlmock.NewRows(reportCols),
			reportRow(1, "High", ""),
			reportRow(2, "high", "todo"),
			reportRow(3, "HIGH", "done"),
		)
		mock.ExpectQuery("SELECT (.+) FROM reports WHERE severity IN \\('High', 'high', 'HIGH'\\) ORDER BY seq ASC LIMIT (.+)").
			WithArgs(25).
			WillReturnRows(rows)
		mock.ExpectQuery("SELECT seq, user_id FROM report_upvotes WHERE seq IN (.+)").
			WillReturnRows(sqlmock.NewRows([]string{"seq", "user_id"}).AddRow(1, "userA"))

		reports, err := d.GetHighSeverityReports(context.Background(), 25)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reports) != 3 {
			t.Fatalf("expected 3 reports, got %d", len(reports))
		}
		if reports[0].Seq != 1 || reports[1].Seq != 2 || reports[2].Seq != 3 {
			t.Errorf("arrival order not preserved: %+v", reports)
		}
		if len(reports[0].Upvotes) != 1 || reports[0].Upvotes[0] != "userA" {
			t.Errorf("expected upvote set [userA], got %v", reports[0].Upvotes)
		}
		if len(reports[1].Upvotes) != 0 {
			t.Errorf("expected empty upvote set, got %v", reports[1].Upvotes)
		}
	})
}

func TestGetReportNotFound(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT (.+) FROM reports WHERE seq = (.+)").
			WithArgs(42).
			WillReturnError(sql.ErrNoRows)

		_, err := d.GetReport(context.Background(), 42)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestUpdateStatus(t *testing.T) {
	it(func() {
		mock.ExpectExec("UPDATE reports SET status = (.+) WHERE seq = (.+)").
			WithArgs("in_progress", 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := d.UpdateStatus(context.Background(), 5, models.StatusInProgress); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestUpdateStatusMissingReport(t *testing.T) {
	it(func() {
		mock.ExpectExec("UPDATE reports SET status = (.+) WHERE seq = (.+)").
			WithArgs("done", 99).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT 1 FROM reports WHERE seq = (.+)").
			WithArgs(99).
			WillReturnError(sql.ErrNoRows)

		err := d.UpdateStatus(context.Background(), 99, models.StatusDone)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestToggleUpvoteAdd(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT 1 FROM reports WHERE seq = (.+)").
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectExec("DELETE FROM report_upvotes WHERE seq = (.+) AND user_id = (.+)").
			WithArgs(3, "userA").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT IGNORE INTO report_upvotes").
			WithArgs(3, "userA").
			WillReturnResult(sqlmock.NewResult(1, 1))

		added, err := d.ToggleUpvote(context.Background(), 3, "userA")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !added {
			t.Errorf("expected upvote to be added")
		}
	})
}

func TestToggleUpvoteRemove(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT 1 FROM reports WHERE seq = (.+)").
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectExec("DELETE FROM report_upvotes WHERE seq = (.+) AND user_id = (.+)").
			WithArgs(3, "userA").
			WillReturnResult(sqlmock.NewResult(0, 1))

		added, err := d.ToggleUpvote(context.Background(), 3, "userA")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if added {
			t.Errorf("expected upvote to be removed")
		}
	})
}

func TestToggleUpvoteMissingReport(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT 1 FROM reports WHERE seq = (.+)").
			WithArgs(404).
			WillReturnError(sql.ErrNoRows)

		_, err := d.ToggleUpvote(context.Background(), 404, "userA")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestGetReportsSince(t *testing.T) {
	it(func() {
		rows := addRows(sqlmock.NewRows(reportCols),
			reportRow(11, "Low", ""),
			reportRow(12, "Medium", "todo"),
		)
		mock.ExpectQuery("SELECT (.+) FROM reports WHERE seq > (.+) ORDER BY seq ASC").
			WithArgs(10).
			WillReturnRows(rows)
		mock.ExpectQuery("SELECT seq, user_id FROM report_upvotes WHERE seq IN (.+)").
			WillReturnRows(sqlmock.NewRows([]string{"seq", "user_id"}))

		reports, err := d.GetReportsSince(context.Background(), 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reports) != 2 || reports[0].Seq != 11 || reports[1].Seq != 12 {
			t.Errorf("unexpected reports: %+v", reports)
		}
	})
}
