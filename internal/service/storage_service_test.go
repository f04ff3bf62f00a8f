package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"quizgen_backend/internal/config"
	"quizgen_backend/internal/util"
	"strings"
	"testing"
)

func TestLocalStorageProvider_Upload(t *testing.T) {
	dir := t.TempDir()
	svc := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}})

	url, err := svc.Upload(context.Background(), "quizzes/a.json", strings.NewReader(`{"ok":true}`), 11, util.MimeJSON)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "/exports/quizzes/a.json" {
		t.Errorf("url = %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "quizzes", "a.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("content = %q", data)
	}

	if err := svc.Delete(context.Background(), "quizzes/a.json"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "quizzes", "a.json")); !os.IsNotExist(err) {
		t.Fatal("file should be removed")
	}
}

func TestLocalStorageProvider_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	svc := &StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: dir}}}

	_, err := svc.Upload(context.Background(), "../escape.json", strings.NewReader("x"), 1, util.MimeJSON)
	if !errors.Is(err, util.ErrInvalidRequest) {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.json")); !os.IsNotExist(err) {
		t.Fatal("file written outside storage root")
	}
}

func TestStorageService_Unavailable(t *testing.T) {
	var svc *StorageService
	if _, err := svc.Upload(context.Background(), "a.json", strings.NewReader("x"), 1, util.MimeJSON); !errors.Is(err, util.ErrStorageUnavailable) {
		t.Fatalf("err = %v", err)
	}

	// 存储根目录是一个普通文件，写入必然失败
	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	svc = &StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: root}}}
	if _, err := svc.Upload(context.Background(), "a.json", strings.NewReader("x"), 1, util.MimeJSON); !errors.Is(err, util.ErrStorageUnavailable) {
		t.Fatalf("err = %v", err)
	}
}
