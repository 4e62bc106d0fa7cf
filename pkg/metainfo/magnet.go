package metainfo

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Magnet is the parsed form of a magnet: URI (BEP 9's xt/dn/tr params).
type Magnet struct {
	InfoHash [sha1.Size]byte
	Name     string
	Trackers []string
}

// ParseMagnet parses a magnet: URI into a Magnet.
func ParseMagnet(magnetURL string) (*Magnet, error) {
	u, err := url.Parse(magnetURL)
	if err != nil {
		return nil, fmt.Errorf("magnet: url parse failed: %w", err)
	}
	if u.Scheme != "magnet" {
		return nil, fmt.Errorf("magnet: invalid scheme %q", u.Scheme)
	}

	params, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("magnet: params parse failed: %w", err)
	}

	m := &Magnet{}

	xt, ok := params["xt"]
	if !ok || len(xt) == 0 {
		return nil, fmt.Errorf("magnet: missing 'xt'")
	}
	xtVal := xt[0]
	if !strings.HasPrefix(xtVal, "urn:btih:") {
		return nil, fmt.Errorf("magnet: invalid 'xt' value: must be 'urn:btih:<hash>'")
	}

	hashString := strings.TrimPrefix(xtVal, "urn:btih:")
	if len(hashString) != sha1.Size*2 {
		return nil, fmt.Errorf("magnet: invalid info-hash length")
	}
	hashBytes, err := hex.DecodeString(hashString)
	if err != nil {
		return nil, fmt.Errorf("magnet: failed to decode info-hash: %w", err)
	}
	copy(m.InfoHash[:], hashBytes)

	if dn, ok := params["dn"]; ok && len(dn) > 0 {
		m.Name = dn[0]
	}
	if tr, ok := params["tr"]; ok {
		m.Trackers = tr
	}

	return m, nil
}
