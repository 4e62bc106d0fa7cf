package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// TestAnnounce_CompactPeers simulates a tracker response with a compact
// peer string (BEP 23): two IPv4 peers packed as 6-byte records.
func TestAnnounce_CompactPeers(t *testing.T) {
	compactPeers := []byte{
		0x7f, 0x00, 0x00, 0x01, 0x1a, 0xe1, // 127.0.0.1:6881
		0xc0, 0xa8, 0x00, 0x01, 0x1a, 0xe1, // 192.168.0.1:6881
	}
	response := "d8:intervali1800e5:peers12:" + string(compactPeers) + "e"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(response))
	}))
	defer ts.Close()

	baseURL, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr, err := NewHTTPTracker(baseURL, nil, 3, 500*time.Millisecond, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := tr.Announce(context.Background(), &AnnounceParams{Port: 6881})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Peers) != 2 {
		t.Fatalf("got %d peers, want 2", len(resp.Peers))
	}
	if resp.Peers[0].String() != "127.0.0.1:6881" {
		t.Fatalf("peer 0 = %s", resp.Peers[0])
	}
	if resp.Peers[1].String() != "192.168.0.1:6881" {
		t.Fatalf("peer 1 = %s", resp.Peers[1])
	}
	if resp.Interval.Seconds() != 1800 {
		t.Fatalf("interval = %v, want 1800s", resp.Interval)
	}
}

// TestAnnounce_DictPeers exercises the non-compact peer list shape: a list
// of {ip, port} dicts.
func TestAnnounce_DictPeers(t *testing.T) {
	response := "d8:intervali1800e5:peersld2:ip9:127.0.0.14:porti6881eeee"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(response))
	}))
	defer ts.Close()

	baseURL, _ := url.Parse(ts.URL)
	tr, err := NewHTTPTracker(baseURL, nil, 3, 500*time.Millisecond, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := tr.Announce(context.Background(), &AnnounceParams{Port: 6881})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Peers) != 1 {
		t.Fatalf("got %d peers, want 1", len(resp.Peers))
	}
	if resp.Peers[0].String() != "127.0.0.1:6881" {
		t.Fatalf("peer 0 = %s", resp.Peers[0])
	}
}

// TestAnnounce_FailureReason exercises the tracker's "failure reason" dict
// key, which must surface as an error rather than a partial response.
func TestAnnounce_FailureReason(t *testing.T) {
	response := "d14:failure reason11:unreachablee"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(response))
	}))
	defer ts.Close()

	baseURL, _ := url.Parse(ts.URL)
	tr, err := NewHTTPTracker(baseURL, nil, 3, 500*time.Millisecond, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = tr.Announce(context.Background(), &AnnounceParams{Port: 6881})
	if err == nil {
		t.Fatal("expected error, got none")
	}
}

// TestAnnounce_HTTPError exercises retry exhaustion against a server that
// always returns a non-2xx status.
func TestAnnounce_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer ts.Close()

	baseURL, _ := url.Parse(ts.URL)
	tr, err := NewHTTPTracker(baseURL, nil, 1, time.Millisecond, time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = tr.Announce(context.Background(), &AnnounceParams{Port: 6881})
	if err == nil {
		t.Fatal("expected error, got none")
	}
}
