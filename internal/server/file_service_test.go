package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/spitzerl/workshop-b3-api/internal/blobstore"
	"github.com/spitzerl/workshop-b3-api/internal/models"
	"github.com/spitzerl/workshop-b3-api/internal/store"
)

var errInjected = errors.New("injected database failure")

// failingFileStore fails the composite write steps while delegating everything else.
type failingFileStore struct {
	*store.Store
	failCreate  bool
	failAppend  bool
	failCascade bool
	// afterCommit runs once a composite write has committed.
	afterCommit func()
}

func (f *failingFileStore) CreateFileWithVersion(ctx context.Context, file *models.LogicalFile, blobPath string, sizeBytes int64) (*models.FileVersion, error) {
	if f.failCreate {
		return nil, errInjected
	}
	return f.Store.CreateFileWithVersion(ctx, file, blobPath, sizeBytes)
}

func (f *failingFileStore) AppendFileVersion(ctx context.Context, id int64, name, mimeType, blobPath string, sizeBytes int64) (*models.FileVersion, *models.FileVersion, error) {
	if f.failAppend {
		return nil, nil, errInjected
	}
	version, previous, err := f.Store.AppendFileVersion(ctx, id, name, mimeType, blobPath, sizeBytes)
	if err == nil && f.afterCommit != nil {
		f.afterCommit()
	}
	return version, previous, err
}

func (f *failingFileStore) DeleteFileCascade(ctx context.Context, id int64) ([]string, error) {
	if f.failCascade {
		return nil, errInjected
	}
	paths, err := f.Store.DeleteFileCascade(ctx, id)
	if err == nil && f.afterCommit != nil {
		f.afterCommit()
	}
	return paths, err
}

// recordingBlobStore remembers every path written through it.
type recordingBlobStore struct {
	blobstore.BlobStore
	written   []string
	removeErr error
}

func (r *recordingBlobStore) Put(ctx context.Context, dir, desiredName string, content io.Reader) (blobstore.BlobPutResult, error) {
	res, err := r.BlobStore.Put(ctx, dir, desiredName, content)
	if err == nil {
		r.written = append(r.written, res.Path)
	}
	return res, err
}

func (r *recordingBlobStore) Remove(ctx context.Context, path string) error {
	if r.removeErr != nil {
		return r.removeErr
	}
	return r.BlobStore.Remove(ctx, path)
}

type fileServiceFixture struct {
	svc     *FileService
	store   *store.Store
	files   *failingFileStore
	blobs   *recordingBlobStore
	metrics *Metrics
	ownerID int64
}

func newFileServiceFixture(t *testing.T, retainHistory bool) *fileServiceFixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	disk, err := blobstore.NewLocalDisk(filepath.Join(t.TempDir(), "uploads"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new local disk: %v", err)
	}

	owner := &models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "hash"}
	if err := st.CreateUser(context.Background(), owner); err != nil {
		t.Fatalf("create owner: %v", err)
	}

	files := &failingFileStore{Store: st}
	blobs := &recordingBlobStore{BlobStore: disk}
	metrics := NewMetrics()
	svc := NewFileService(files, st, blobs, FileServiceOptions{
		RetainHistory: retainHistory,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:       metrics,
	})
	return &fileServiceFixture{svc: svc, store: st, files: files, blobs: blobs, metrics: metrics, ownerID: owner.ID}
}

func (fx *fileServiceFixture) upload(t *testing.T, name, content string) UploadResult {
	t.Helper()
	res, err := fx.svc.Upload(context.Background(), UploadInput{
		OwnerID:      fx.ownerID,
		Content:      strings.NewReader(content),
		OriginalName: name,
	})
	if err != nil {
		t.Fatalf("upload %s: %v", name, err)
	}
	return res
}

func fileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	t.Fatalf("stat %s: %v", path, err)
	return false
}

func readAllContent(t *testing.T, content *FileContent) []byte {
	t.Helper()
	defer content.Close()
	data, err := io.ReadAll(content)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	return data
}

func counterValue(t *testing.T, m *Metrics, vec string, labels ...string) float64 {
	t.Helper()
	var metric dto.Metric
	var err error
	switch vec {
	case "file_ops":
		err = m.fileOps.WithLabelValues(labels...).Write(&metric)
	case "compensations":
		err = m.compensations.WithLabelValues(labels...).Write(&metric)
	default:
		t.Fatalf("unknown counter %s", vec)
	}
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return metric.GetCounter().GetValue()
}

func TestUploadCreatesFirstVersion(t *testing.T) {
	fx := newFileServiceFixture(t, true)

	res := fx.upload(t, "notes.txt", "hello")
	if res.Version.VersionNumber != 1 {
		t.Fatalf("expected version 1, got %d", res.Version.VersionNumber)
	}
	if !strings.HasPrefix(res.Version.ID, "v1f") {
		t.Fatalf("unexpected version id %q", res.Version.ID)
	}
	if res.File.CurrentVersionID != res.Version.ID {
		t.Fatalf("file should point at %s, got %s", res.Version.ID, res.File.CurrentVersionID)
	}
	if !strings.HasPrefix(res.File.MimeType, "text/plain") {
		t.Fatalf("expected mime from extension, got %q", res.File.MimeType)
	}
	if res.Version.SizeBytes != 5 {
		t.Fatalf("expected size 5, got %d", res.Version.SizeBytes)
	}
	if got := counterValue(t, fx.metrics, "file_ops", "upload", "ok"); got != 1 {
		t.Fatalf("expected one successful upload counted, got %v", got)
	}
}

func TestUploadValidation(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	ctx := context.Background()

	tests := []struct {
		name   string
		in     UploadInput
		status int
		code   int
	}{
		{"missing content", UploadInput{OwnerID: fx.ownerID, OriginalName: "a.txt"}, 400, ErrCodeMissingRequired},
		{"missing owner", UploadInput{Content: strings.NewReader("x"), OriginalName: "a.txt"}, 400, ErrCodeMissingRequired},
		{"missing name", UploadInput{OwnerID: fx.ownerID, Content: strings.NewReader("x")}, 400, ErrCodeMissingRequired},
		{"unknown owner", UploadInput{OwnerID: 999, Content: strings.NewReader("x"), OriginalName: "a.txt"}, 400, ErrCodeUnknownOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.Upload(ctx, tt.in)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := httpStatusFromError(err); got != tt.status {
				t.Fatalf("expected status %d, got %d (%v)", tt.status, got, err)
			}
			if got := errorNumericCode(tt.status, err); got != tt.code {
				t.Fatalf("expected code %d, got %d", tt.code, got)
			}
		})
	}

	if len(fx.blobs.written) != 0 {
		t.Fatalf("validation failures must not write blobs, wrote %v", fx.blobs.written)
	}
}

func TestUploadDatabaseFailureRemovesBlob(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	fx.files.failCreate = true

	_, err := fx.svc.Upload(context.Background(), UploadInput{
		OwnerID:      fx.ownerID,
		Content:      strings.NewReader("orphan"),
		OriginalName: "orphan.bin",
	})
	if err == nil {
		t.Fatal("expected upload to fail")
	}
	if got := httpStatusFromError(err); got != 500 {
		t.Fatalf("expected status 500, got %d", got)
	}
	if got := errorNumericCode(500, err); got != ErrCodeStoreFailure {
		t.Fatalf("expected store failure code, got %d", got)
	}

	if len(fx.blobs.written) != 1 {
		t.Fatalf("expected one blob written, got %d", len(fx.blobs.written))
	}
	if fileExists(t, fx.blobs.written[0]) {
		t.Fatalf("blob %s should be removed after failed insert", fx.blobs.written[0])
	}
	files, err := fx.store.ListFiles(context.Background(), store.FileFilter{})
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %d", len(files))
	}
	if got := counterValue(t, fx.metrics, "compensations", "upload", "removed"); got != 1 {
		t.Fatalf("expected compensation counted, got %v", got)
	}
}

func TestUploadCompensationFailureKeepsPrimaryError(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	fx.files.failCreate = true
	fx.blobs.removeErr = blobstore.ErrIO

	_, err := fx.svc.Upload(context.Background(), UploadInput{
		OwnerID:      fx.ownerID,
		Content:      strings.NewReader("x"),
		OriginalName: "x.bin",
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected error to surface, got %v", err)
	}
	if got := counterValue(t, fx.metrics, "compensations", "upload", "failed"); got != 1 {
		t.Fatalf("expected failed compensation counted, got %v", got)
	}
}

func TestReplaceAppendsNextVersion(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	ctx := context.Background()
	first := fx.upload(t, "draft.txt", "one")

	for want := 2; want <= 4; want++ {
		res, err := fx.svc.Replace(ctx, first.File.ID, ReplaceInput{Content: strings.NewReader("next"), OriginalName: "draft.txt"})
		if err != nil {
			t.Fatalf("replace: %v", err)
		}
		if res.Version.VersionNumber != want {
			t.Fatalf("expected version %d, got %d", want, res.Version.VersionNumber)
		}
		if res.Previous.VersionNumber != want-1 {
			t.Fatalf("expected previous %d, got %d", want-1, res.Previous.VersionNumber)
		}
	}

	versions, err := fx.svc.ListVersions(ctx, first.File.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 4 {
		t.Fatalf("expected 4 versions, got %d", len(versions))
	}
	for i, v := range versions {
		if v.VersionNumber != i+1 {
			t.Fatalf("expected gapless numbering, got %d at %d", v.VersionNumber, i)
		}
	}
	for _, path := range fx.blobs.written {
		if !fileExists(t, path) {
			t.Fatalf("retained history should keep %s", path)
		}
	}
}

func TestReplaceWithoutHistoryRemovesPreviousBlob(t *testing.T) {
	fx := newFileServiceFixture(t, false)
	ctx := context.Background()
	first := fx.upload(t, "a.txt", "v1")

	if _, err := fx.svc.Replace(ctx, first.File.ID, ReplaceInput{Content: strings.NewReader("v2"), OriginalName: "a.txt"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if fileExists(t, fx.blobs.written[0]) {
		t.Fatal("previous blob should be removed when history is not retained")
	}
	if !fileExists(t, fx.blobs.written[1]) {
		t.Fatal("current blob must stay")
	}

	versions, err := fx.svc.ListVersions(ctx, first.File.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("ledger rows must stay, got %d", len(versions))
	}
}

func TestReplaceFailureKeepsPreviousVersion(t *testing.T) {
	fx := newFileServiceFixture(t, false)
	ctx := context.Background()
	first := fx.upload(t, "a.txt", "original")
	fx.files.failAppend = true

	if _, err := fx.svc.Replace(ctx, first.File.ID, ReplaceInput{Content: strings.NewReader("broken"), OriginalName: "b.txt"}); err == nil {
		t.Fatal("expected replace to fail")
	}
	if len(fx.blobs.written) != 2 {
		t.Fatalf("expected two blobs written, got %d", len(fx.blobs.written))
	}
	if fileExists(t, fx.blobs.written[1]) {
		t.Fatal("new blob should be compensated")
	}

	content, err := fx.svc.Open(ctx, first.File.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := string(readAllContent(t, content)); got != "original" {
		t.Fatalf("expected original content, got %q", got)
	}
	file, err := fx.svc.Get(ctx, first.File.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if file.Name != "a.txt" || file.VersionNumber != 1 {
		t.Fatalf("file should be untouched, got %+v", file)
	}
}

func TestReplaceUnknownFile(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	_, err := fx.svc.Replace(context.Background(), 42, ReplaceInput{Content: strings.NewReader("x"), OriginalName: "x.txt"})
	if got := httpStatusFromError(err); got != 404 {
		t.Fatalf("expected 404, got %d (%v)", got, err)
	}
	if len(fx.blobs.written) != 0 {
		t.Fatal("no blob should be written for an unknown file")
	}
}

func TestRoundTripContent(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	payload := bytes.Repeat([]byte{0x00, 0x7f, 0xff, 'a'}, 4096)

	res, err := fx.svc.Upload(context.Background(), UploadInput{
		OwnerID:      fx.ownerID,
		Content:      bytes.NewReader(payload),
		OriginalName: "data.bin",
		MimeType:     "application/x-test",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	content, err := fx.svc.Open(context.Background(), res.File.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if content.MimeType != "application/x-test" {
		t.Fatalf("unexpected mime %q", content.MimeType)
	}
	if content.SizeBytes != int64(len(payload)) {
		t.Fatalf("unexpected size %d", content.SizeBytes)
	}
	if got := readAllContent(t, content); !bytes.Equal(got, payload) {
		t.Fatal("downloaded bytes differ from upload")
	}
}

func TestOpenVersionServesHistoricContent(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	ctx := context.Background()
	first := fx.upload(t, "a.txt", "first")
	if _, err := fx.svc.Replace(ctx, first.File.ID, ReplaceInput{Content: strings.NewReader("second"), OriginalName: "a.txt"}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	content, err := fx.svc.OpenVersion(ctx, first.Version.ID)
	if err != nil {
		t.Fatalf("open version: %v", err)
	}
	if got := string(readAllContent(t, content)); got != "first" {
		t.Fatalf("expected first version content, got %q", got)
	}

	if _, err := fx.svc.OpenVersion(ctx, "v9fdeadbeef"); httpStatusFromError(err) != 404 {
		t.Fatalf("expected 404 for unknown version, got %v", err)
	}
}

func TestOpenMissingBlobIsNotFound(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	res := fx.upload(t, "gone.txt", "bye")
	if err := os.Remove(fx.blobs.written[0]); err != nil {
		t.Fatalf("remove blob: %v", err)
	}

	_, err := fx.svc.Open(context.Background(), res.File.ID)
	if got := httpStatusFromError(err); got != 404 {
		t.Fatalf("expected 404, got %d (%v)", got, err)
	}
	if got := errorNumericCode(404, err); got != ErrCodeBlobMissing {
		t.Fatalf("expected blob missing code, got %d", got)
	}
}

func TestDeleteRemovesAllVersionsAndBlobs(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	ctx := context.Background()
	first := fx.upload(t, "multi.txt", "1")
	for i := 0; i < 2; i++ {
		if _, err := fx.svc.Replace(ctx, first.File.ID, ReplaceInput{Content: strings.NewReader("n"), OriginalName: "multi.txt"}); err != nil {
			t.Fatalf("replace: %v", err)
		}
	}
	if len(fx.blobs.written) != 3 {
		t.Fatalf("expected 3 blobs, got %d", len(fx.blobs.written))
	}

	if err := fx.svc.Delete(ctx, first.File.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, path := range fx.blobs.written {
		if fileExists(t, path) {
			t.Fatalf("blob %s should be removed", path)
		}
	}
	versions, err := fx.store.ListVersions(ctx, first.File.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected no version rows, got %d", len(versions))
	}
	if _, err := fx.svc.Get(ctx, first.File.ID); httpStatusFromError(err) != 404 {
		t.Fatalf("expected 404 after delete, got %v", err)
	}
	if _, err := fx.svc.Open(ctx, first.File.ID); httpStatusFromError(err) != 404 {
		t.Fatalf("expected 404 download after delete, got %v", err)
	}
}

func TestDeleteTwiceIsNotFound(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	ctx := context.Background()
	res := fx.upload(t, "once.txt", "x")

	if err := fx.svc.Delete(ctx, res.File.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	err := fx.svc.Delete(ctx, res.File.ID)
	if got := httpStatusFromError(err); got != 404 {
		t.Fatalf("expected 404 on second delete, got %d (%v)", got, err)
	}
}

func TestDeleteBlobFailureIsNotSurfaced(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	ctx := context.Background()
	res := fx.upload(t, "sticky.txt", "x")
	fx.blobs.removeErr = blobstore.ErrIO

	if err := fx.svc.Delete(ctx, res.File.ID); err != nil {
		t.Fatalf("delete should succeed despite blob failure: %v", err)
	}
	if _, err := fx.svc.Get(ctx, res.File.ID); httpStatusFromError(err) != 404 {
		t.Fatalf("file row should be gone, got %v", err)
	}
}

func TestDeleteDatabaseFailureKeepsBlobs(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	res := fx.upload(t, "keep.txt", "x")
	fx.files.failCascade = true

	if err := fx.svc.Delete(context.Background(), res.File.ID); err == nil {
		t.Fatal("expected delete to fail")
	}
	if !fileExists(t, fx.blobs.written[0]) {
		t.Fatal("blobs must stay when the transaction did not commit")
	}
}

func TestReportScenario(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	ctx := context.Background()

	res, err := fx.svc.Upload(ctx, UploadInput{
		OwnerID:      fx.ownerID,
		Content:      strings.NewReader("%PDF-1.4 v1"),
		OriginalName: "report.pdf",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.File.ID != 1 {
		t.Fatalf("expected id 1, got %d", res.File.ID)
	}
	if !strings.HasPrefix(res.Version.ID, "v1f") {
		t.Fatalf("expected version id v1f..., got %s", res.Version.ID)
	}
	if res.File.Name != "report.pdf" || res.File.MimeType != "application/pdf" {
		t.Fatalf("unexpected metadata %+v", res.File)
	}

	replaced, err := fx.svc.Replace(ctx, 1, ReplaceInput{Content: strings.NewReader("%PDF-1.4 v2"), OriginalName: "report-v2.pdf"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.Version.VersionNumber != 2 {
		t.Fatalf("expected version 2, got %d", replaced.Version.VersionNumber)
	}
	file, err := fx.svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if file.Name != "report-v2.pdf" || file.VersionNumber != 2 {
		t.Fatalf("metadata not updated: %+v", file)
	}

	if err := fx.svc.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := fx.svc.Open(ctx, 1); httpStatusFromError(err) != 404 {
		t.Fatalf("expected download 404 after delete, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	ctx := context.Background()

	other := &models.User{Name: "Other", Email: "other@example.com", PasswordHash: "hash"}
	if err := fx.store.CreateUser(ctx, other); err != nil {
		t.Fatalf("create user: %v", err)
	}
	fx.upload(t, "private.txt", "x")
	if _, err := fx.svc.Upload(ctx, UploadInput{OwnerID: other.ID, IsPublic: true, Content: strings.NewReader("y"), OriginalName: "shared.txt"}); err != nil {
		t.Fatalf("upload public: %v", err)
	}

	all, err := fx.svc.List(ctx, ListFilesInput{})
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 files, got %d (%v)", len(all), err)
	}
	public, err := fx.svc.List(ctx, ListFilesInput{PublicOnly: true})
	if err != nil || len(public) != 1 || public[0].Name != "shared.txt" {
		t.Fatalf("unexpected public listing %+v (%v)", public, err)
	}
	owned, err := fx.svc.List(ctx, ListFilesInput{OwnerID: fx.ownerID})
	if err != nil || len(owned) != 1 || owned[0].Name != "private.txt" {
		t.Fatalf("unexpected owner listing %+v (%v)", owned, err)
	}
}

func TestResolveMediaType(t *testing.T) {
	tests := []struct {
		declared string
		name     string
		want     string
	}{
		{"image/png", "x.bin", "image/png"},
		{"", "report.pdf", "application/pdf"},
		{"", "noext", fallbackFileMediaType},
		{"not a type", "noext", fallbackFileMediaType},
	}
	for _, tt := range tests {
		if got := resolveMediaType(tt.declared, tt.name); got != tt.want {
			t.Fatalf("resolveMediaType(%q, %q) = %q, want %q", tt.declared, tt.name, got, tt.want)
		}
	}
}

func TestCleanFileName(t *testing.T) {
	tests := map[string]string{
		"report.pdf":          "report.pdf",
		"  spaced.txt ":       "spaced.txt",
		"../../etc/passwd":    "passwd",
		`C:\Users\me\doc.txt`: "doc.txt",
		"":                    "",
	}
	for in, want := range tests {
		if got := cleanFileName(in); got != want {
			t.Fatalf("cleanFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeleteRemovesBlobsWhenRequestCancelledAfterCommit(t *testing.T) {
	fx := newFileServiceFixture(t, true)
	first := fx.upload(t, "notes.txt", "one")
	if _, err := fx.svc.Replace(context.Background(), first.File.ID, ReplaceInput{Content: strings.NewReader("two"), OriginalName: "notes.txt"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(fx.blobs.written) != 2 {
		t.Fatalf("expected 2 blobs, got %d", len(fx.blobs.written))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fx.files.afterCommit = cancel

	if err := fx.svc.Delete(ctx, first.File.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, path := range fx.blobs.written {
		if fileExists(t, path) {
			t.Fatalf("blob %s survived a committed delete", path)
		}
	}
}

func TestReplaceDropsSupersededBlobWhenRequestCancelledAfterCommit(t *testing.T) {
	fx := newFileServiceFixture(t, false)
	first := fx.upload(t, "notes.txt", "one")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fx.files.afterCommit = cancel

	res, err := fx.svc.Replace(ctx, first.File.ID, ReplaceInput{Content: strings.NewReader("two"), OriginalName: "notes.txt"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if res.Version.VersionNumber != 2 {
		t.Fatalf("expected version 2, got %d", res.Version.VersionNumber)
	}
	if fileExists(t, fx.blobs.written[0]) {
		t.Fatalf("superseded blob %s survived", fx.blobs.written[0])
	}
	if !fileExists(t, fx.blobs.written[1]) {
		t.Fatalf("current blob %s missing", fx.blobs.written[1])
	}
}
