package metastore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "meta.db")
	s, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open(%q) error: %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFileRecordCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tt := []struct {
		name string
		rec  FileRecord
	}{
		{"regular", FileRecord{Path: "/a.txt", CurrentVersion: 100, Mode: 0644, Type: TypeRegular, Size: 0, Level: 1}},
		{"directory", FileRecord{Path: "/dir", CurrentVersion: 200, Mode: 0755, Type: TypeDirectory, Size: 4096, Level: 1}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if err := s.InsertFile(ctx, nil, tc.rec); err != nil {
				t.Fatalf("InsertFile(%+v) error: %v", tc.rec, err)
			}

			got, err := s.GetFile(ctx, nil, tc.rec.Path)
			if err != nil {
				t.Fatalf("GetFile(%q) error: %v", tc.rec.Path, err)
			}
			if got.Mode != tc.rec.Mode || got.Type != tc.rec.Type || got.CurrentVersion != tc.rec.CurrentVersion {
				t.Errorf("GetFile(%q) = %+v, want %+v", tc.rec.Path, got, tc.rec)
			}

			got.Size = 42
			if err := s.UpdateFile(ctx, nil, got); err != nil {
				t.Fatalf("UpdateFile(%+v) error: %v", got, err)
			}
			updated, err := s.GetFile(ctx, nil, tc.rec.Path)
			if err != nil {
				t.Fatalf("GetFile after update error: %v", err)
			}
			if updated.Size != 42 {
				t.Errorf("GetFile after update Size = %d, want 42", updated.Size)
			}

			if err := s.DeleteFile(ctx, nil, tc.rec.Path); err != nil {
				t.Fatalf("DeleteFile(%q) error: %v", tc.rec.Path, err)
			}
			if _, err := s.GetFile(ctx, nil, tc.rec.Path); err == nil {
				t.Errorf("GetFile(%q) after delete: want error, got none", tc.rec.Path)
			}
		})
	}
}

func TestGetFileNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetFile(context.Background(), nil, "/missing"); err == nil {
		t.Error("GetFile(missing) = nil error, want NotFoundError")
	}
}

func TestSegmentCRUDAndCountUnsigned(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	const path, version = "/a.txt", int64(100)

	segs := []SegmentRecord{
		{Path: path, Version: version, Segment: 0, Signature: UnsignedSentinel(), Content: []byte("aaaa")},
		{Path: path, Version: version, Segment: 1, Signature: UnsignedSentinel(), Content: []byte("bb")},
	}
	for _, seg := range segs {
		if err := s.UpsertSegment(ctx, nil, seg); err != nil {
			t.Fatalf("UpsertSegment(%+v) error: %v", seg, err)
		}
	}

	n, err := s.CountUnsigned(ctx, nil, path, version)
	if err != nil {
		t.Fatalf("CountUnsigned error: %v", err)
	}
	if n != 2 {
		t.Errorf("CountUnsigned = %d, want 2", n)
	}

	if err := s.UpdateSegmentSignature(ctx, nil, path, version, 0, []byte("sig0")); err != nil {
		t.Fatalf("UpdateSegmentSignature error: %v", err)
	}
	n, err = s.CountUnsigned(ctx, nil, path, version)
	if err != nil {
		t.Fatalf("CountUnsigned after sign error: %v", err)
	}
	if n != 1 {
		t.Errorf("CountUnsigned after signing one segment = %d, want 1", n)
	}

	list, err := s.ListSegments(ctx, nil, path, version)
	if err != nil {
		t.Fatalf("ListSegments error: %v", err)
	}
	if len(list) != 2 || list[0].Segment != 0 || list[1].Segment != 1 {
		t.Errorf("ListSegments = %+v, want ordered segments 0,1", list)
	}
}

func TestMoveSegmentsPromotesStaging(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	const path = "/a.txt"
	stagingPath := path + ".segtemp"

	if err := s.UpsertSegment(ctx, nil, SegmentRecord{
		Path: stagingPath, Version: StagingVersion, Segment: 0,
		Signature: UnsignedSentinel(), Content: []byte("data"),
	}); err != nil {
		t.Fatalf("UpsertSegment error: %v", err)
	}

	const newVersion = int64(555)
	if err := s.MoveSegments(ctx, nil, stagingPath, StagingVersion, path, newVersion); err != nil {
		t.Fatalf("MoveSegments error: %v", err)
	}

	list, err := s.ListSegments(ctx, nil, path, newVersion)
	if err != nil {
		t.Fatalf("ListSegments error: %v", err)
	}
	if len(list) != 1 || string(list[0].Content) != "data" {
		t.Errorf("ListSegments after MoveSegments = %+v, want one segment with content 'data'", list)
	}

	if n, err := s.CountUnsigned(ctx, nil, stagingPath, StagingVersion); err != nil || n != 0 {
		t.Errorf("staging segments still present after MoveSegments: n=%d err=%v", n, err)
	}
}

func TestDeleteStagingSegmentsReclaimsOrphans(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertSegment(ctx, nil, SegmentRecord{
		Path: "/a.txt.segtemp", Version: StagingVersion, Segment: 0,
		Signature: UnsignedSentinel(), Content: []byte("x"),
	}); err != nil {
		t.Fatalf("UpsertSegment error: %v", err)
	}
	if err := s.UpsertSegment(ctx, nil, SegmentRecord{
		Path: "/b.txt", Version: 1, Segment: 0,
		Signature: UnsignedSentinel(), Content: []byte("y"),
	}); err != nil {
		t.Fatalf("UpsertSegment error: %v", err)
	}

	n, err := s.DeleteStagingSegments(ctx)
	if err != nil {
		t.Fatalf("DeleteStagingSegments error: %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteStagingSegments removed %d rows, want 1", n)
	}

	if list, err := s.ListSegments(ctx, nil, "/b.txt", 1); err != nil || len(list) != 1 {
		t.Errorf("non-staging segment affected: list=%+v err=%v", list, err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := FileRecord{Path: "/rolledback.txt", Mode: 0644, Type: TypeRegular, CurrentVersion: 1, Level: 1}
	wantErr := stderrors.New("boom")

	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.InsertFile(ctx, tx, rec); err != nil {
			return err
		}
		return wantErr
	})
	if !stderrors.Is(err, wantErr) {
		t.Fatalf("WithTx error = %v, want %v", err, wantErr)
	}

	if _, err := s.GetFile(ctx, nil, rec.Path); err == nil {
		t.Error("GetFile found a row inserted inside a rolled-back transaction")
	}
}
