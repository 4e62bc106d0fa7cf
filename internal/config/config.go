// Package config holds runtime defaults for cmd/bencat: decoder limits and
// tracker-client behavior, grouped the way the teacher groups its client
// Config.
package config

import (
	"crypto/rand"
	"crypto/sha1"
	"time"
)

// Config defines behavior and resource limits shared by the decoder and the
// tracker client.
type Config struct {
	// ========== Decoder ==========

	// MaxDepth caps nested list/dict recursion during decode.
	MaxDepth int

	// Sloppy allows decoding a value while ignoring trailing bytes.
	Sloppy bool

	// ========== Identity ==========

	// PeerID uniquely identifies this client instance to trackers.
	PeerID [sha1.Size]byte

	// ========== Tracker / Announce ==========

	// NumWant is the number of peers to request per announce.
	NumWant uint32

	// Port is the TCP port advertised to the tracker for incoming
	// connections.
	Port uint16

	// RequestTimeout bounds a whole announce, including all of its retry
	// attempts and backoff waits.
	RequestTimeout time.Duration

	// MaxAnnounceAttempts caps retry attempts for a failed announce.
	MaxAnnounceAttempts int

	// AnnounceBackoffInitial is the first retry delay; each subsequent
	// delay doubles up to AnnounceBackoffMax.
	AnnounceBackoffInitial time.Duration

	// AnnounceBackoffMax caps the exponential backoff between retries.
	AnnounceBackoffMax time.Duration
}

// Default returns sensible defaults for most use cases.
func Default() (Config, error) {
	peerID, err := generatePeerID()
	if err != nil {
		return Config{}, err
	}

	return Config{
		MaxDepth:               100,
		Sloppy:                 false,
		PeerID:                 peerID,
		NumWant:                50,
		Port:                   6881,
		RequestTimeout:         30 * time.Second,
		MaxAnnounceAttempts:    3,
		AnnounceBackoffInitial: 500 * time.Millisecond,
		AnnounceBackoffMax:     5 * time.Second,
	}, nil
}

func generatePeerID() ([sha1.Size]byte, error) {
	var peerID [sha1.Size]byte

	prefix := []byte("-BC0001-")
	copy(peerID[:], prefix)

	if _, err := rand.Read(peerID[len(prefix):]); err != nil {
		return [sha1.Size]byte{}, err
	}

	return peerID, nil
}
