package fsop

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Anson14/ndnfs-d/internal/metastore"
	"github.com/Anson14/ndnfs-d/internal/namespace"
	"github.com/Anson14/ndnfs-d/internal/segment"
	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
	"github.com/Anson14/ndnfs-d/pkg/signer"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "meta.db")

	store, err := metastore.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("metastore.Open error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	eng := segment.New(segment.Config{
		Store:        store,
		Signer:       signer.New([]byte("test-master-key"), "test-key"),
		SegmentSize:  4,
		GlobalPrefix: "ndn:/localhost/ndnfs",
	})
	t.Cleanup(eng.Close)

	ns, err := namespace.New(ctx, namespace.Config{Store: store, UID: 1000, GID: 1000})
	if err != nil {
		t.Fatalf("namespace.New error: %v", err)
	}

	return New(Config{Namespace: ns, Segment: eng})
}

func waitSigned(t *testing.T, d *Dispatcher, path string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		f, err := d.ns.GetAttr(context.Background(), path)
		if err != nil {
			t.Fatalf("GetAttr error: %v", err)
		}
		if f.SignatureState == metastore.SignatureReady {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("signature_state never reached READY for %q", path)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWriteThenReleaseThenReadRoundTrips(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	const path = "/a.txt"

	if err := d.ns.Mknod(ctx, path, 0644); err != nil {
		t.Fatalf("Mknod error: %v", err)
	}

	h, err := d.Open(ctx, path, true)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if n, err := d.Write(ctx, h, []byte("hello world"), 0); err != nil || n != 11 {
		t.Fatalf("Write = (%d, %v), want (11, nil)", n, err)
	}
	if err := d.Release(ctx, h); err != nil {
		t.Fatalf("Release error: %v", err)
	}

	f, err := d.ns.GetAttr(ctx, path)
	if err != nil {
		t.Fatalf("GetAttr error: %v", err)
	}
	if f.Size != 11 {
		t.Errorf("Size after release = %d, want 11", f.Size)
	}

	rh, err := d.Open(ctx, path, false)
	if err != nil {
		t.Fatalf("Open (read) error: %v", err)
	}
	got, err := d.Read(ctx, rh, 0, 11)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("Read = %q, want %q", got, "hello world")
	}
	if err := d.Release(ctx, rh); err != nil {
		t.Fatalf("Release (read) error: %v", err)
	}

	waitSigned(t, d, path)
}

func TestPartialOverwritePreservesUntouchedBytes(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	const path = "/b.txt"

	if err := d.ns.Mknod(ctx, path, 0644); err != nil {
		t.Fatalf("Mknod error: %v", err)
	}

	h1, err := d.Open(ctx, path, true)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := d.Write(ctx, h1, []byte("hello world"), 0); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := d.Release(ctx, h1); err != nil {
		t.Fatalf("Release error: %v", err)
	}

	h2, err := d.Open(ctx, path, true)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := d.Write(ctx, h2, []byte("EARTH"), 6); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := d.Release(ctx, h2); err != nil {
		t.Fatalf("Release error: %v", err)
	}

	rh, err := d.Open(ctx, path, false)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	got, err := d.Read(ctx, rh, 0, 11)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(got) != "hello EARTH" {
		t.Errorf("Read after partial overwrite = %q, want %q", got, "hello EARTH")
	}
}

func TestTruncateShrinksAndSchedulesSigning(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	const path = "/c.txt"

	if err := d.ns.Mknod(ctx, path, 0644); err != nil {
		t.Fatalf("Mknod error: %v", err)
	}
	h, err := d.Open(ctx, path, true)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := d.Write(ctx, h, []byte("hello world"), 0); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := d.Release(ctx, h); err != nil {
		t.Fatalf("Release error: %v", err)
	}

	if err := d.Truncate(ctx, path, 5); err != nil {
		t.Fatalf("Truncate error: %v", err)
	}

	f, err := d.ns.GetAttr(ctx, path)
	if err != nil {
		t.Fatalf("GetAttr error: %v", err)
	}
	if f.Size != 5 {
		t.Errorf("Size after truncate = %d, want 5", f.Size)
	}

	rh, err := d.Open(ctx, path, false)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	got, err := d.Read(ctx, rh, 0, 5)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Read after truncate = %q, want %q", got, "hello")
	}

	waitSigned(t, d, path)
}

func TestTruncateBeyondSizeRejected(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	const path = "/d.txt"

	if err := d.ns.Mknod(ctx, path, 0644); err != nil {
		t.Fatalf("Mknod error: %v", err)
	}
	h, err := d.Open(ctx, path, true)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := d.Write(ctx, h, []byte("ab"), 0); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := d.Release(ctx, h); err != nil {
		t.Fatalf("Release error: %v", err)
	}

	if err := d.Truncate(ctx, path, 100); !ndnerrors.IsInvalidError(err) {
		t.Errorf("Truncate beyond size = %v, want InvalidError", err)
	}
}

func TestOpenRejectsStagingPath(t *testing.T) {
	d := newTestDispatcher(t)
	if _, err := d.Open(context.Background(), "/a.txt.segtemp", true); !ndnerrors.IsUnsupportedError(err) {
		t.Errorf("Open on staging path = %v, want UnsupportedError", err)
	}
}

func TestOpenRejectsMissingPath(t *testing.T) {
	d := newTestDispatcher(t)
	if _, err := d.Open(context.Background(), "/missing.txt", false); !ndnerrors.IsNotFoundError(err) {
		t.Errorf("Open on missing path = %v, want NotFoundError", err)
	}
}

func TestReadOnEmptyFileReturnsNoBytes(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	const path = "/empty.txt"

	if err := d.ns.Mknod(ctx, path, 0644); err != nil {
		t.Fatalf("Mknod error: %v", err)
	}
	h, err := d.Open(ctx, path, false)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	got, err := d.Read(ctx, h, 0, 10)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Read on empty file = %v, want empty", got)
	}
}

func TestTruncateOpenOnWriteHandleDoesNotDeadlock(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	const path = "/e.txt"

	if err := d.ns.Mknod(ctx, path, 0644); err != nil {
		t.Fatalf("Mknod error: %v", err)
	}
	h, err := d.Open(ctx, path, true)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := d.Write(ctx, h, []byte("hello world"), 0); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- d.TruncateOpen(ctx, h, 5) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("TruncateOpen error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("TruncateOpen on an open write handle deadlocked")
	}

	if err := d.Release(ctx, h); err != nil {
		t.Fatalf("Release error: %v", err)
	}

	f, err := d.ns.GetAttr(ctx, path)
	if err != nil {
		t.Fatalf("GetAttr error: %v", err)
	}
	if f.Size != 5 {
		t.Errorf("Size after release = %d, want 5", f.Size)
	}

	rh, err := d.Open(ctx, path, false)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	got, err := d.Read(ctx, rh, 0, 5)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Read after truncate-then-release = %q, want %q", got, "hello")
	}
}

func TestTruncateOpenThenWritePastLength(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	const path = "/f.txt"

	if err := d.ns.Mknod(ctx, path, 0644); err != nil {
		t.Fatalf("Mknod error: %v", err)
	}
	h, err := d.Open(ctx, path, true)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := d.Write(ctx, h, []byte("hello world"), 0); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := d.TruncateOpen(ctx, h, 5); err != nil {
		t.Fatalf("TruncateOpen error: %v", err)
	}
	if _, err := d.Write(ctx, h, []byte("!"), 5); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := d.Release(ctx, h); err != nil {
		t.Fatalf("Release error: %v", err)
	}

	rh, err := d.Open(ctx, path, false)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	got, err := d.Read(ctx, rh, 0, 6)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(got) != "hello!" {
		t.Errorf("Read after truncate-then-write = %q, want %q", got, "hello!")
	}
}

func TestTruncateOpenOnReadOnlyHandleRejected(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	const path = "/g.txt"

	if err := d.ns.Mknod(ctx, path, 0644); err != nil {
		t.Fatalf("Mknod error: %v", err)
	}
	h, err := d.Open(ctx, path, false)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := d.TruncateOpen(ctx, h, 0); !ndnerrors.IsUnsupportedError(err) {
		t.Errorf("TruncateOpen on read-only handle = %v, want UnsupportedError", err)
	}
}

func TestRenameResignsUnderNewName(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	const from, to = "/old.txt", "/new.txt"

	if err := d.ns.Mknod(ctx, from, 0644); err != nil {
		t.Fatalf("Mknod error: %v", err)
	}
	h, err := d.Open(ctx, from, true)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := d.Write(ctx, h, []byte("content"), 0); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := d.Release(ctx, h); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	waitSigned(t, d, from)

	if err := d.Rename(ctx, from, to); err != nil {
		t.Fatalf("Rename error: %v", err)
	}

	if _, err := d.ns.GetAttr(ctx, from); !ndnerrors.IsNotFoundError(err) {
		t.Errorf("GetAttr(%q) after rename = %v, want NotFoundError", from, err)
	}
	f, err := d.ns.GetAttr(ctx, to)
	if err != nil {
		t.Fatalf("GetAttr(%q) error: %v", to, err)
	}
	if f.SignatureState != metastore.SignatureReady {
		t.Errorf("SignatureState after rename = %v, want READY", f.SignatureState)
	}
}
