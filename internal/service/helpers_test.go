package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
	"github.com/dinelog/internal/storage"
)

func setupServiceTestStore(t *testing.T) *repository.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.DriverSQLite, dsn, nil)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return repository.New(gdb, "test-app")
}

func setupLocalObjects(t *testing.T) *storage.LocalStore {
	t.Helper()
	objects, err := storage.NewLocalStore(t.TempDir(), "/static/uploads")
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}
	return objects
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
