package cache

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	domain "github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/lesions"
)

func newMockCache(t *testing.T) (*Cache, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func TestPutSummariesReplacesSnapshot(t *testing.T) {
	c, mock := newMockCache(t)

	createdAt := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	lastSeen := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	fetchedAt := time.Date(2024, 3, 21, 9, 30, 0, 0, time.UTC)

	ls := []domain.Lesion{
		{ID: 1, Nickname: "left arm mole", BodyPart: "left arm", CreatedAt: createdAt,
			ScanCount: 3, LastSeenAt: &lastSeen, LatestImage: "new.png"},
		{ID: 2, Nickname: "shoulder spot", BodyPart: "shoulder", CreatedAt: createdAt,
			ScanCount: 0},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM lesion_summaries").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO lesion_summaries").
		WithArgs(int64(1), "left arm mole", "left arm", createdAt.Format(time.RFC3339Nano),
			3, lastSeen.Format(time.RFC3339Nano), "new.png", fetchedAt.Format(time.RFC3339Nano)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO lesion_summaries").
		WithArgs(int64(2), "shoulder spot", "shoulder", createdAt.Format(time.RFC3339Nano),
			0, nil, "", fetchedAt.Format(time.RFC3339Nano)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if err := c.PutSummaries(context.Background(), ls, fetchedAt); err != nil {
		t.Fatalf("PutSummaries failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestSummariesParsesSnapshot(t *testing.T) {
	c, mock := newMockCache(t)

	createdAt := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	lastSeen := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	fetchedAt := time.Date(2024, 3, 21, 9, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "nickname", "body_part", "created_at", "scan_count",
		"last_seen_at", "latest_image_url", "fetched_at",
	}).
		AddRow(2, "shoulder spot", "shoulder", createdAt.Format(time.RFC3339Nano), 0,
			nil, "", fetchedAt.Format(time.RFC3339Nano)).
		AddRow(1, "left arm mole", "left arm", createdAt.Format(time.RFC3339Nano), 3,
			lastSeen.Format(time.RFC3339Nano), "new.png", fetchedAt.Format(time.RFC3339Nano))
	mock.ExpectQuery("SELECT id, nickname, body_part, created_at, scan_count, last_seen_at, latest_image_url, fetched_at").
		WillReturnRows(rows)

	ls, gotFetched, err := c.Summaries(context.Background())
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(ls) != 2 {
		t.Fatalf("Expected 2 lesions, got %d", len(ls))
	}
	if !gotFetched.Equal(fetchedAt) {
		t.Errorf("Expected fetched_at %v, got %v", fetchedAt, gotFetched)
	}
	if ls[0].ID != 2 || ls[0].LastSeenAt != nil {
		t.Errorf("Unexpected first row: %+v", ls[0])
	}
	if ls[1].ScanCount != 3 || ls[1].LastSeenAt == nil || !ls[1].LastSeenAt.Equal(lastSeen) {
		t.Errorf("Unexpected second row: %+v", ls[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestPutSummariesRollsBackOnFailure(t *testing.T) {
	c, mock := newMockCache(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM lesion_summaries").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := c.PutSummaries(context.Background(), []domain.Lesion{{ID: 1, Nickname: "x", BodyPart: "y"}}, time.Now())
	if err == nil {
		t.Fatal("Expected the delete failure to surface")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}
