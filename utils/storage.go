package utils

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

const supabaseBucket = "uploads"

// FileStore saves uploaded documents either on local disk or, when Supabase
// credentials are configured, in Supabase Storage. Save returns the path the
// document record should keep; Remove accepts the same value back.
type FileStore struct {
	uploadDir   string
	supabaseURL string
	supabaseKey string
}

func NewFileStore(uploadDir, supabaseURL, supabaseKey string) *FileStore {
	return &FileStore{
		uploadDir:   uploadDir,
		supabaseURL: supabaseURL,
		supabaseKey: supabaseKey,
	}
}

func (s *FileStore) useSupabase() bool {
	return s.supabaseURL != "" && s.supabaseKey != ""
}

func (s *FileStore) Save(data []byte, filename, contentType string) (string, error) {
	if s.useSupabase() {
		return s.saveSupabase(data, filename, contentType)
	}

	path := filepath.Join(s.uploadDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}
	return path, nil
}

func (s *FileStore) saveSupabase(data []byte, filename, contentType string) (string, error) {
	client := storage.NewClient(s.supabaseURL+"/storage/v1", s.supabaseKey, nil)

	objectPath := fmt.Sprintf("documents/%s", filename)
	options := storage.FileOptions{ContentType: &contentType}

	_, err := client.UploadFile(supabaseBucket, objectPath, bytes.NewReader(data), options)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.supabaseURL, supabaseBucket, objectPath), nil
}

// Remove deletes a stored file. Missing files are not an error; document
// deletion must win over storage hiccups.
func (s *FileStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if strings.Contains(path, "/storage/v1/object/") {
		return s.removeSupabase(path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) removeSupabase(publicURL string) error {
	idx := strings.Index(publicURL, "/storage/v1/object/")
	if idx == -1 {
		return fmt.Errorf("cannot locate object path in URL: %s", publicURL)
	}

	rest := publicURL[idx+len("/storage/v1/object/"):]
	rest = strings.TrimPrefix(rest, "public/")

	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 {
		return fmt.Errorf("cannot parse bucket/object from URL: %s", publicURL)
	}
	bucket := parts[0]
	object := parts[1]
	if qIdx := strings.Index(object, "?"); qIdx != -1 {
		object = object[:qIdx]
	}
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", strings.TrimRight(s.supabaseURL, "/"), bucket, object)
	req, err := http.NewRequest(http.MethodDelete, deleteURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.supabaseKey)
	req.Header.Set("apikey", s.supabaseKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("supabase delete failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
