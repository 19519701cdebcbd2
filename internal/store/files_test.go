package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spitzerl/workshop-b3-api/internal/models"
)

func TestCreateFileWithVersion(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	owner := testUser(t, st, "owner@example.com")

	file := &models.LogicalFile{Name: "report.pdf", MimeType: "application/pdf", OwnerID: owner, IsPublic: true}
	version, err := st.CreateFileWithVersion(ctx, file, "/uploads/file-1.pdf", 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if file.ID == 0 {
		t.Fatal("expected file id to be set")
	}
	if version.VersionNumber != 1 || version.FileID != file.ID {
		t.Fatalf("unexpected version %+v", version)
	}
	if file.CurrentVersionID != version.ID {
		t.Fatalf("expected current version %s, got %s", version.ID, file.CurrentVersionID)
	}

	got, err := st.GetFile(ctx, file.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected file, got nil")
	}
	if got.Name != "report.pdf" || got.MimeType != "application/pdf" || !got.IsPublic {
		t.Fatalf("unexpected file %+v", got)
	}
	if got.VersionNumber != 1 || got.BlobPath != "/uploads/file-1.pdf" || got.SizeBytes != 42 {
		t.Fatalf("expected current version data joined, got %+v", got)
	}
}

func TestCreateFileRequiresOwner(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if _, err := st.CreateFileWithVersion(ctx, &models.LogicalFile{Name: "a"}, "/uploads/a", 1); !errors.Is(err, ErrOwnerRequired) {
		t.Fatalf("expected ErrOwnerRequired, got %v", err)
	}
	if err := st.CreateFile(ctx, &models.LogicalFile{Name: "a", CurrentVersionID: "v1fx"}); !errors.Is(err, ErrOwnerRequired) {
		t.Fatalf("expected ErrOwnerRequired, got %v", err)
	}
}

func TestCreateFileWithVersionUnknownOwnerRollsBack(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	_, err := st.CreateFileWithVersion(ctx, &models.LogicalFile{Name: "a", OwnerID: 77}, "/uploads/a", 1)
	if !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}

	var count int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM file_versions").Scan(&count); err != nil {
		t.Fatalf("count versions: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected version row rolled back, found %d", count)
	}
}

func TestListFilesFilters(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	alice := testUser(t, st, "alice@example.com")
	bob := testUser(t, st, "bob@example.com")

	create := func(name string, owner int64, public bool) {
		t.Helper()
		file := &models.LogicalFile{Name: name, MimeType: "text/plain", OwnerID: owner, IsPublic: public}
		if _, err := st.CreateFileWithVersion(ctx, file, "/uploads/"+name, 1); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	create("a1", alice, true)
	create("a2", alice, false)
	create("b1", bob, true)

	tests := []struct {
		name   string
		filter FileFilter
		want   int
	}{
		{name: "all", filter: FileFilter{}, want: 3},
		{name: "owner", filter: FileFilter{OwnerID: alice}, want: 2},
		{name: "public", filter: FileFilter{PublicOnly: true}, want: 2},
		{name: "owner public", filter: FileFilter{OwnerID: alice, PublicOnly: true}, want: 1},
		{name: "unknown owner", filter: FileFilter{OwnerID: 999}, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			files, err := st.ListFiles(ctx, tc.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(files) != tc.want {
				t.Fatalf("expected %d files, got %d", tc.want, len(files))
			}
			for _, f := range files {
				if f.VersionNumber != 1 || f.BlobPath == "" {
					t.Fatalf("expected joined version data, got %+v", f)
				}
			}
		})
	}
}

func TestListFilesNewestFirstWithinOneSecond(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	owner := testUser(t, st, "owner@example.com")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	later := &models.LogicalFile{Name: "later.txt", OwnerID: owner, CreatedAt: base.Add(500 * time.Millisecond)}
	if _, err := st.CreateFileWithVersion(ctx, later, "/uploads/later.txt", 1); err != nil {
		t.Fatalf("create later: %v", err)
	}
	onSecond := &models.LogicalFile{Name: "on-second.txt", OwnerID: owner, CreatedAt: base}
	if _, err := st.CreateFileWithVersion(ctx, onSecond, "/uploads/on-second.txt", 1); err != nil {
		t.Fatalf("create on-second: %v", err)
	}

	files, err := st.ListFiles(ctx, FileFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || files[0].Name != "later.txt" || files[1].Name != "on-second.txt" {
		t.Fatalf("expected newest first, got %+v", files)
	}
	if !files[1].CreatedAt.Equal(base) {
		t.Fatalf("created_at round trip: got %v", files[1].CreatedAt)
	}
}

func TestDBTimeFormatSortsLexically(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	onSecond := dbFormatTime(base)
	later := dbFormatTime(base.Add(time.Nanosecond))
	if len(onSecond) != len(later) || !(onSecond < later) {
		t.Fatalf("expected %q < %q with equal width", onSecond, later)
	}
	parsed, err := dbParseTime(later)
	if err != nil || !parsed.Equal(base.Add(time.Nanosecond)) {
		t.Fatalf("parse %q: %v (%v)", later, parsed, err)
	}
}

func TestAppendFileVersion(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	owner := testUser(t, st, "owner@example.com")

	file := &models.LogicalFile{Name: "report.pdf", MimeType: "application/pdf", OwnerID: owner}
	first, err := st.CreateFileWithVersion(ctx, file, "/uploads/v1.pdf", 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	next, previous, err := st.AppendFileVersion(ctx, file.ID, "report-v2.pdf", "", "/uploads/v2.pdf", 2)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if next.VersionNumber != 2 {
		t.Fatalf("expected version 2, got %d", next.VersionNumber)
	}
	if previous.ID != first.ID || previous.BlobPath != "/uploads/v1.pdf" {
		t.Fatalf("unexpected previous version %+v", previous)
	}

	got, err := st.GetFile(ctx, file.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "report-v2.pdf" {
		t.Fatalf("expected updated name, got %q", got.Name)
	}
	if got.MimeType != "application/pdf" {
		t.Fatalf("expected mime type unchanged when empty, got %q", got.MimeType)
	}
	if got.CurrentVersionID != next.ID || got.VersionNumber != 2 {
		t.Fatalf("expected current version %s, got %+v", next.ID, got)
	}

	if _, _, err := st.AppendFileVersion(ctx, 999, "x", "", "/uploads/x", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCurrentVersionNotFound(t *testing.T) {
	st := testStore(t)
	err := st.UpdateCurrentVersion(context.Background(), 123, "n", "m", "v1fx")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteFileCascade(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	owner := testUser(t, st, "owner@example.com")

	file := &models.LogicalFile{Name: "a.txt", OwnerID: owner}
	if _, err := st.CreateFileWithVersion(ctx, file, "/uploads/1", 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, path := range []string{"/uploads/2", "/uploads/3"} {
		if _, _, err := st.AppendFileVersion(ctx, file.ID, "", "", path, 1); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	paths, err := st.DeleteFileCascade(ctx, file.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := []string{"/uploads/1", "/uploads/2", "/uploads/3"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, paths)
		}
	}

	got, err := st.GetFile(ctx, file.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected file deleted, got %+v", got)
	}
	versions, err := st.ListVersions(ctx, file.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected no versions, got %d", len(versions))
	}

	if _, err := st.DeleteFileCascade(ctx, file.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteAllVersionsThenDeleteFile(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	owner := testUser(t, st, "owner@example.com")

	file := &models.LogicalFile{Name: "a.txt", OwnerID: owner}
	if _, err := st.CreateFileWithVersion(ctx, file, "/uploads/1", 1); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Removing the versions alone would leave the file pointing at nothing.
	if _, err := st.DeleteAllVersions(ctx, file.ID); !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}

	if err := st.DeleteFile(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
