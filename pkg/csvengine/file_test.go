package csvengine

import (
	"context"
	"os"
	"testing"
)

func TestOpenFileFeedsParse(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "csvengine-*.csv")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := f.WriteString("a,b\n1,2\n3,4\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, cleanup, err := OpenFile(name)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer cleanup()

	recs, err := Parse(context.Background(), r, DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
}

func TestOpenFileEmptyFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "csvengine-empty-*.csv")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	name := f.Name()
	f.Close()

	r, cleanup, err := OpenFile(name)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer cleanup()

	if r.Len() != 0 {
		t.Fatalf("expected empty reader, got %d bytes", r.Len())
	}
}
