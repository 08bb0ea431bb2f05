package tarball

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/maddsua/minitar"
)

func writeRawArchive(t *testing.T, name string, chunks ...[]byte) {

	t.Helper()

	file, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	for _, chunk := range chunks {
		if _, err := file.Write(chunk); err != nil {
			t.Fatal(err)
		}
	}
}

func testHeaderBlock(name string, size int64) []byte {

	header := Header{
		Name:     name,
		Mode:     0644,
		Size:     size,
		Modified: time.Unix(1700000000, 0),
		Typeflag: TypeRegular,
		Uname:    "root",
		Gname:    "root",
	}

	return header.Encode()[:]
}

func contentBlocks(size int64) []byte {

	blocks := (size + BlockSize - 1) / BlockSize
	buf := make([]byte, blocks*BlockSize)

	for idx := int64(0); idx < size; idx++ {
		buf[idx] = byte('a' + idx%26)
	}

	return buf
}

func scanAll(t *testing.T, name string) []*Entry {

	t.Helper()

	scanner, err := OpenScanner(name)
	if err != nil {
		t.Fatal(err)
	}
	defer scanner.Close()

	var entries []*Entry

	for {
		entry, err := scanner.Next()
		if err == io.EOF {
			return entries
		} else if err != nil {
			t.Fatal(err)
		}
		entries = append(entries, entry)
	}
}

func TestScanEmptyArchive(t *testing.T) {

	testChdir(t, t.TempDir())

	writeRawArchive(t, "empty.tar", zeroBlock[:], zeroBlock[:])

	if entries := scanAll(t, "empty.tar"); len(entries) != 0 {
		t.Fatalf("expected no entries, have %d", len(entries))
	}
}

func TestScanSingleZeroBlockDoesNotTerminate(t *testing.T) {

	testChdir(t, t.TempDir())

	// A lone zero block in front of a valid header must be skipped, not
	// treated as the end of the archive.
	writeRawArchive(t, "weird.tar",
		zeroBlock[:],
		testHeaderBlock("survivor.txt", 600),
		contentBlocks(600),
		zeroBlock[:], zeroBlock[:],
	)

	entries := scanAll(t, "weird.tar")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, have %d", len(entries))
	}

	if entries[0].Path() != "survivor.txt" {
		t.Errorf("entry: have '%s'", entries[0].Path())
	}
	if entries[0].Size != 600 {
		t.Errorf("size: have %d", entries[0].Size)
	}
	if entries[0].ContentOffset != 2 {
		t.Errorf("content offset: have %d", entries[0].ContentOffset)
	}
}

func TestScanEntrySpans(t *testing.T) {

	testChdir(t, t.TempDir())

	writeRawArchive(t, "spans.tar",
		testHeaderBlock("one.bin", 513),
		contentBlocks(513),
		testHeaderBlock("two.bin", 0),
		testHeaderBlock("three.bin", 512),
		contentBlocks(512),
		zeroBlock[:], zeroBlock[:],
	)

	entries := scanAll(t, "spans.tar")
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, have %d", len(entries))
	}

	wantOffsets := []int64{1, 4, 5}
	wantNames := []string{"one.bin", "two.bin", "three.bin"}

	for idx, entry := range entries {
		if entry.Path() != wantNames[idx] {
			t.Errorf("entry %d: have '%s', want '%s'", idx, entry.Path(), wantNames[idx])
		}
		if entry.ContentOffset != wantOffsets[idx] {
			t.Errorf("entry %d offset: have %d, want %d", idx, entry.ContentOffset, wantOffsets[idx])
		}
	}
}

func TestScanHeaderBoundaryEOF(t *testing.T) {

	testChdir(t, t.TempDir())

	// No end marker at all: tolerated as long as the file ends exactly at
	// a block boundary.
	writeRawArchive(t, "nofooter.tar",
		testHeaderBlock("only.bin", 100),
		contentBlocks(100),
	)

	entries := scanAll(t, "nofooter.tar")
	if len(entries) != 1 || entries[0].Path() != "only.bin" {
		t.Fatalf("unexpected entries: %v", entries)
	}
}

func TestScanTruncatedBlock(t *testing.T) {

	testChdir(t, t.TempDir())

	writeRawArchive(t, "cut.tar",
		testHeaderBlock("cut.bin", 100),
		contentBlocks(100),
		zeroBlock[:100],
	)

	scanner, err := OpenScanner("cut.tar")
	if err != nil {
		t.Fatal(err)
	}
	defer scanner.Close()

	if _, err := scanner.Next(); err != nil {
		t.Fatal(err)
	}

	_, err = scanner.Next()

	var truncErr *minitar.TruncatedArchiveError
	if !errors.As(err, &truncErr) {
		t.Fatalf("expected TruncatedArchiveError, have %v", err)
	}

	// The scanner must stay failed
	if _, again := scanner.Next(); !errors.As(again, &truncErr) {
		t.Fatalf("expected scanner to stay failed, have %v", again)
	}
}

func TestScanDoneIsSticky(t *testing.T) {

	testChdir(t, t.TempDir())

	writeRawArchive(t, "done.tar", zeroBlock[:], zeroBlock[:])

	scanner, err := OpenScanner("done.tar")
	if err != nil {
		t.Fatal(err)
	}
	defer scanner.Close()

	for i := 0; i < 3; i++ {
		if _, err := scanner.Next(); err != io.EOF {
			t.Fatalf("expected io.EOF, have %v", err)
		}
	}
}
