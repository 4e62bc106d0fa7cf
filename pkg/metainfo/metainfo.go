// Package metainfo parses BitTorrent .torrent files and magnet links on top
// of pkg/bencode: a concrete consumer of the codec against real, untrusted
// input, the way spec.md §6 describes ("torrent files on disk are simply
// byte buffers passed through decode").
package metainfo

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"time"

	"github.com/prxssh/bencode/pkg/bencode"
	"golang.org/x/sync/errgroup"
)

// Metainfo is the parsed form of a .torrent file's top-level dict.
type Metainfo struct {
	Info         *Info
	Announce     string
	AnnounceList [][]string
	CreationDate time.Time
	CreatedBy    string
	Comment      string
	Encoding     string

	// infoValue is the exact Value the "info" key decoded to, retained so
	// Rehash can encode it again.
	infoValue bencode.Value
}

// Info is the parsed form of a .torrent file's "info" dict.
type Info struct {
	Hash        [sha1.Size]byte
	Name        string
	PieceLength int64
	Pieces      [][sha1.Size]byte
	Private     bool
	Length      int64
	Files       []*File
}

// File describes one entry of a multi-file torrent's "files" list.
type File struct {
	Length int64
	Path   []string
}

var (
	ErrTopLevelNotDict     = errors.New("metainfo: top-level is not a dict")
	ErrAnnounceMissing     = errors.New("metainfo: both announce and announce-list missing")
	ErrInfoMissing         = errors.New("metainfo: 'info' missing")
	ErrInfoNotDict         = errors.New("metainfo: 'info' is not a dict")
	ErrNameMissing         = errors.New("metainfo: 'info' name missing")
	ErrPieceLenMissing     = errors.New("metainfo: 'info' piece length missing")
	ErrPieceLenNonPositive = errors.New("metainfo: 'info' piece length must be > 0")
	ErrPiecesMissing       = errors.New("metainfo: 'info' pieces missing")
	ErrPiecesLenInvalid    = errors.New("metainfo: 'info' pieces length not multiple of 20")
	ErrLayoutInvalid       = errors.New("metainfo: invalid single/multi-file layout")
	ErrCreationDateInvalid = errors.New("metainfo: invalid creation date")
)

// Size returns the torrent's total content length: Info.Length for a
// single-file torrent, or the sum of the Info.Files lengths for a
// multi-file one.
func (m *Metainfo) Size() int64 {
	if len(m.Info.Files) == 0 {
		return m.Info.Length
	}

	var sum int64
	for _, f := range m.Info.Files {
		sum += f.Length
	}
	return sum
}

// Rehash recomputes the info-hash by encoding the retained "info" Value
// again with bencode.Encode and hashing the result. It walks the whole info
// dict on every call; no bencode.Precomputed fragment is used.
func (m *Metainfo) Rehash() ([sha1.Size]byte, error) {
	encodedInfo, err := bencode.Encode(m.infoValue)
	if err != nil {
		return [sha1.Size]byte{}, err
	}
	return sha1.Sum(encodedInfo), nil
}

// ParseMetainfo decodes a .torrent file's bytes into a Metainfo.
func ParseMetainfo(data []byte) (*Metainfo, error) {
	root, err := bencode.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if root.Kind() != bencode.KindDict {
		return nil, ErrTopLevelNotDict
	}

	announce, err := optionalString(root, "announce")
	if err != nil {
		return nil, err
	}
	announceList, err := parseAnnounceList(root)
	if err != nil {
		return nil, err
	}
	if announce == "" && len(announceList) == 0 {
		return nil, ErrAnnounceMissing
	}

	var creationDate time.Time
	if cd, ok := root.Get("creation date"); ok {
		secs, ok := cd.Int64()
		if !ok || secs < 0 {
			return nil, ErrCreationDateInvalid
		}
		creationDate = time.Unix(secs, 0).UTC()
	}

	createdBy, err := optionalString(root, "created by")
	if err != nil {
		return nil, err
	}
	comment, err := optionalString(root, "comment")
	if err != nil {
		return nil, err
	}
	encoding, err := optionalString(root, "encoding")
	if err != nil {
		return nil, err
	}

	infoValue, ok := root.Get("info")
	if !ok {
		return nil, ErrInfoMissing
	}
	info, err := parseInfo(infoValue)
	if err != nil {
		return nil, err
	}

	return &Metainfo{
		Info:         info,
		Announce:     announce,
		AnnounceList: announceList,
		CreationDate: creationDate,
		CreatedBy:    createdBy,
		Comment:      comment,
		Encoding:     encoding,
		infoValue:    infoValue,
	}, nil
}

func parseInfo(infoValue bencode.Value) (*Info, error) {
	if infoValue.Kind() != bencode.KindDict {
		return nil, ErrInfoNotDict
	}

	var out Info

	encoded, err := bencode.Encode(infoValue)
	if err != nil {
		return nil, fmt.Errorf("metainfo: info hash: %w", err)
	}
	out.Hash = sha1.Sum(encoded)

	nameVal, ok := infoValue.Get("name")
	if !ok {
		return nil, ErrNameMissing
	}
	out.Name, ok = nameVal.String()
	if !ok || out.Name == "" {
		return nil, fmt.Errorf("metainfo: invalid 'name'")
	}

	plVal, ok := infoValue.Get("piece length")
	if !ok {
		return nil, ErrPieceLenMissing
	}
	pl, ok := plVal.Int64()
	if !ok || pl <= 0 {
		return nil, ErrPieceLenNonPositive
	}
	out.PieceLength = pl

	piecesVal, ok := infoValue.Get("pieces")
	if !ok {
		return nil, ErrPiecesMissing
	}
	out.Pieces, err = parsePieces(piecesVal)
	if err != nil {
		return nil, err
	}

	if privVal, ok := infoValue.Get("private"); ok {
		p, ok := privVal.Int64()
		if !ok || (p != 0 && p != 1) {
			return nil, fmt.Errorf("metainfo: invalid 'private' flag")
		}
		out.Private = p == 1
	}

	lengthVal, hasLength := infoValue.Get("length")
	filesVal, hasFiles := infoValue.Get("files")

	switch {
	case hasLength && !hasFiles:
		ln, ok := lengthVal.Int64()
		if !ok || ln < 0 {
			return nil, fmt.Errorf("metainfo: invalid 'length'")
		}
		out.Length = ln
	case hasFiles && !hasLength:
		out.Files, err = parseFiles(filesVal)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrLayoutInvalid
	}

	return &out, nil
}

// parseFiles validates each entry of a multi-file torrent's "files" list
// concurrently: each entry is independent, so an errgroup fans the
// validation work out instead of a sequential loop.
func parseFiles(v bencode.Value) ([]*File, error) {
	arr, ok := v.List()
	if !ok || len(arr) == 0 {
		return nil, fmt.Errorf("metainfo: invalid or empty 'files'")
	}

	files := make([]*File, len(arr))

	var g errgroup.Group
	for i, it := range arr {
		i, it := i, it
		g.Go(func() error {
			f, err := parseFile(it)
			if err != nil {
				return fmt.Errorf("metainfo: files[%d]: %w", i, err)
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

func parseFile(v bencode.Value) (*File, error) {
	if v.Kind() != bencode.KindDict {
		return nil, errors.New("not a dict")
	}

	flVal, ok := v.Get("length")
	if !ok {
		return nil, errors.New("length missing")
	}
	ln, ok := flVal.Int64()
	if !ok || ln < 0 {
		return nil, errors.New("invalid length")
	}

	pathVal, ok := v.Get("path")
	if !ok {
		return nil, errors.New("path missing")
	}
	pathItems, ok := pathVal.List()
	if !ok || len(pathItems) == 0 {
		return nil, errors.New("invalid path")
	}

	segments := make([]string, len(pathItems))
	for i, p := range pathItems {
		s, ok := p.String()
		if !ok {
			return nil, fmt.Errorf("path[%d]: not a byte string", i)
		}
		segments[i] = s
	}

	return &File{Length: ln, Path: segments}, nil
}

func parseAnnounceList(root bencode.Value) ([][]string, error) {
	v, ok := root.Get("announce-list")
	if !ok {
		return [][]string{}, nil
	}
	tiers, ok := v.List()
	if !ok {
		return nil, errors.New("metainfo: invalid announce-list")
	}

	out := make([][]string, 0, len(tiers))
	for i, tierVal := range tiers {
		tierItems, ok := tierVal.List()
		if !ok {
			return nil, fmt.Errorf("metainfo: announce-list[%d]: not a list", i)
		}

		tier := make([]string, 0, len(tierItems))
		for j, s := range tierItems {
			str, ok := s.String()
			if !ok {
				return nil, fmt.Errorf("metainfo: announce-list[%d][%d]: not a byte string", i, j)
			}
			tier = append(tier, str)
		}
		if len(tier) > 0 {
			out = append(out, tier)
		}
	}
	return out, nil
}

func optionalString(v bencode.Value, key string) (string, error) {
	val, ok := v.Get(key)
	if !ok {
		return "", nil
	}
	s, ok := val.String()
	if !ok {
		return "", fmt.Errorf("metainfo: %q: not a byte string", key)
	}
	return s, nil
}

func parsePieces(v bencode.Value) ([][sha1.Size]byte, error) {
	b, ok := v.Bytes()
	if !ok {
		return nil, fmt.Errorf("metainfo: 'pieces': not a byte string")
	}
	if len(b)%sha1.Size != 0 {
		return nil, ErrPiecesLenInvalid
	}

	n := len(b) / sha1.Size
	out := make([][sha1.Size]byte, n)
	for i := 0; i < n; i++ {
		copy(out[i][:], b[i*sha1.Size:(i+1)*sha1.Size])
	}
	return out, nil
}
