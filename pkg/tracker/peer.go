package tracker

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"github.com/prxssh/bencode/pkg/bencode"
)

// decodePeers handles both tracker peer list shapes: the BEP 23 compact
// encoding (a single byte string of fixed-size peer records) and the
// original non-compact encoding (a list of {ip, port} dicts).
func decodePeers(v bencode.Value, ipv6 bool) ([]netip.AddrPort, error) {
	if b, ok := v.Bytes(); ok {
		if ipv6 {
			return decodeCompactPeersV6(b)
		}
		return decodeCompactPeersV4(b)
	}
	if items, ok := v.List(); ok {
		return decodeDictPeers(items)
	}
	return nil, fmt.Errorf("invalid peers kind %v", v.Kind())
}

func decodeCompactPeersV4(b []byte) ([]netip.AddrPort, error) {
	if len(b)%strideV4 != 0 {
		return nil, errors.New("peer length not multiple of 6")
	}

	n := len(b) / strideV4
	peers := make([]netip.AddrPort, n)

	for i, off := 0, 0; i < n; i, off = i+1, off+strideV4 {
		a := netip.AddrFrom4([4]byte{b[off], b[off+1], b[off+2], b[off+3]})
		p := binary.BigEndian.Uint16(b[off+4 : off+6])
		peers[i] = netip.AddrPortFrom(a, p)
	}

	return peers, nil
}

func decodeCompactPeersV6(b []byte) ([]netip.AddrPort, error) {
	if len(b)%strideV6 != 0 {
		return nil, errors.New("peer length not multiple of 18")
	}

	n := len(b) / strideV6
	peers := make([]netip.AddrPort, n)

	for i, off := 0, 0; i < n; i, off = i+1, off+strideV6 {
		var a16 [16]byte
		copy(a16[:], b[off:off+16])

		a := netip.AddrFrom16(a16)
		p := binary.BigEndian.Uint16(b[off+16 : off+18])
		peers[i] = netip.AddrPortFrom(a, p)
	}

	return peers, nil
}

func decodeDictPeers(list []bencode.Value) ([]netip.AddrPort, error) {
	peers := make([]netip.AddrPort, 0, len(list))

	for i, it := range list {
		if it.Kind() != bencode.KindDict {
			return nil, fmt.Errorf("peer[%d] not dict", i)
		}

		ipVal, ok := it.Get("ip")
		if !ok {
			return nil, fmt.Errorf("peer[%d]: missing ip", i)
		}

		ipStr, ok := ipVal.String()
		if !ok {
			return nil, fmt.Errorf("peer[%d]: unsupported ip kind %v", i, ipVal.Kind())
		}
		addr, err := netip.ParseAddr(ipStr)
		if err != nil {
			return nil, fmt.Errorf("peer[%d]: bad ip %q: %w", i, ipStr, err)
		}

		portVal, ok := it.Get("port")
		if !ok {
			return nil, fmt.Errorf("peer[%d]: missing port", i)
		}
		p64, ok := portVal.Int64()
		if !ok || p64 < 1 || p64 > 65535 {
			return nil, fmt.Errorf("peer[%d]: invalid port", i)
		}

		peers = append(peers, netip.AddrPortFrom(addr, uint16(p64)))
	}

	return peers, nil
}
