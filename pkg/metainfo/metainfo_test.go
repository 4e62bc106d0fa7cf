package metainfo

import (
	"errors"
	"testing"
)

const singleFileTorrent = "d8:announce14:http://tracker4:infod6:lengthi1024e4:name10:ubuntu.iso12:piece lengthi16384e6:pieces20:12345678901234567890ee"

const multiFileTorrent = "d8:announce14:http://tracker4:infod5:filesld6:lengthi100e4:pathl5:a.txteee4:name5:multi12:piece lengthi16384e6:pieces20:12345678901234567890ee"

func TestParseMetainfo_SingleFile(t *testing.T) {
	m, err := ParseMetainfo([]byte(singleFileTorrent))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Announce != "http://tracker" {
		t.Fatalf("announce = %q", m.Announce)
	}
	if m.Info.Name != "ubuntu.iso" {
		t.Fatalf("name = %q", m.Info.Name)
	}
	if m.Info.PieceLength != 16384 {
		t.Fatalf("piece length = %d", m.Info.PieceLength)
	}
	if m.Info.Length != 1024 {
		t.Fatalf("length = %d", m.Info.Length)
	}
	if len(m.Info.Files) != 0 {
		t.Fatalf("files = %v, want none", m.Info.Files)
	}
	if len(m.Info.Pieces) != 1 {
		t.Fatalf("pieces = %d, want 1", len(m.Info.Pieces))
	}
	if m.Size() != 1024 {
		t.Fatalf("Size() = %d, want 1024", m.Size())
	}
}

func TestParseMetainfo_MultiFile(t *testing.T) {
	m, err := ParseMetainfo([]byte(multiFileTorrent))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Info.Name != "multi" {
		t.Fatalf("name = %q", m.Info.Name)
	}
	if len(m.Info.Files) != 1 {
		t.Fatalf("files = %d, want 1", len(m.Info.Files))
	}
	f := m.Info.Files[0]
	if f.Length != 100 {
		t.Fatalf("file length = %d", f.Length)
	}
	if len(f.Path) != 1 || f.Path[0] != "a.txt" {
		t.Fatalf("file path = %v", f.Path)
	}
	if m.Size() != 100 {
		t.Fatalf("Size() = %d, want 100", m.Size())
	}
}

func TestParseMetainfo_Rehash(t *testing.T) {
	m, err := ParseMetainfo([]byte(singleFileTorrent))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rehashed, err := m.Rehash()
	if err != nil {
		t.Fatalf("Rehash error: %v", err)
	}
	if rehashed != m.Info.Hash {
		t.Fatalf("Rehash() = %x, want %x", rehashed, m.Info.Hash)
	}
}

func TestParseMetainfo_TopLevelNotDict(t *testing.T) {
	_, err := ParseMetainfo([]byte("i1e"))
	if !errors.Is(err, ErrTopLevelNotDict) {
		t.Fatalf("err = %v, want ErrTopLevelNotDict", err)
	}
}

func TestParseMetainfo_AnnounceMissing(t *testing.T) {
	in := "d4:infod6:lengthi1024e4:name4:ubnt12:piece lengthi16384e6:pieces20:12345678901234567890ee"
	_, err := ParseMetainfo([]byte(in))
	if !errors.Is(err, ErrAnnounceMissing) {
		t.Fatalf("err = %v, want ErrAnnounceMissing", err)
	}
}

func TestParseMetainfo_InfoMissing(t *testing.T) {
	in := "d8:announce14:http://trackere"
	_, err := ParseMetainfo([]byte(in))
	if !errors.Is(err, ErrInfoMissing) {
		t.Fatalf("err = %v, want ErrInfoMissing", err)
	}
}

func TestParseMetainfo_PieceLengthNonPositive(t *testing.T) {
	in := "d8:announce14:http://tracker4:infod6:lengthi1024e4:name4:ubnt12:piece lengthi0e6:pieces20:12345678901234567890ee"
	_, err := ParseMetainfo([]byte(in))
	if !errors.Is(err, ErrPieceLenNonPositive) {
		t.Fatalf("err = %v, want ErrPieceLenNonPositive", err)
	}
}

func TestParseMetainfo_PiecesLengthInvalid(t *testing.T) {
	in := "d8:announce14:http://tracker4:infod6:lengthi1024e4:name4:ubnt12:piece lengthi16384e6:pieces3:abcee"
	_, err := ParseMetainfo([]byte(in))
	if !errors.Is(err, ErrPiecesLenInvalid) {
		t.Fatalf("err = %v, want ErrPiecesLenInvalid", err)
	}
}

func TestParseMetainfo_LayoutInvalidWhenNeitherPresent(t *testing.T) {
	in := "d8:announce14:http://tracker4:infod4:name4:ubnt12:piece lengthi16384e6:pieces20:12345678901234567890ee"
	_, err := ParseMetainfo([]byte(in))
	if !errors.Is(err, ErrLayoutInvalid) {
		t.Fatalf("err = %v, want ErrLayoutInvalid", err)
	}
}

func TestParseMetainfo_LayoutInvalidWhenBothPresent(t *testing.T) {
	in := "d8:announce14:http://tracker4:infod5:filesld6:lengthi100e4:pathl5:a.txteee6:lengthi1024e4:name4:ubnt12:piece lengthi16384e6:pieces20:12345678901234567890ee"
	_, err := ParseMetainfo([]byte(in))
	if !errors.Is(err, ErrLayoutInvalid) {
		t.Fatalf("err = %v, want ErrLayoutInvalid", err)
	}
}
