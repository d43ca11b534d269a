package source

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadListTrimsAndDropsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "\ufeffhttp://a/guide.xml\n\n   \n  http://b/guide.xml.gz  \r\nhttp://a/guide.xml\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}

	urls, err := LoadList(path)
	if err != nil {
		t.Fatalf("LoadList returned error: %v", err)
	}
	want := []string{"http://a/guide.xml", "http://b/guide.xml.gz", "http://a/guide.xml"}
	if !reflect.DeepEqual(urls, want) {
		t.Fatalf("unexpected urls: got %v want %v", urls, want)
	}
}

func TestLoadListMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.txt")

	_, err := LoadList(path)
	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingInputError, got %v", err)
	}
	if missing.Path != path {
		t.Fatalf("unexpected path %q", missing.Path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected error to unwrap to os.ErrNotExist")
	}
}

func TestLoadListEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	urls, err := LoadList(path)
	if err != nil {
		t.Fatalf("LoadList returned error: %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("expected no urls, got %v", urls)
	}
}

func TestSaveListRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists", "urls.txt")
	want := []string{"http://a/one.xml", "http://b/two.xml.gz"}

	if err := SaveList(path, want); err != nil {
		t.Fatalf("SaveList returned error: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("expected temp list to be renamed away")
	}
	got, err := LoadList(path)
	if err != nil {
		t.Fatalf("LoadList returned error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: got %v want %v", got, want)
	}
}
