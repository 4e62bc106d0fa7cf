package tracker

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"time"

	"github.com/prxssh/bencode/pkg/bencode"
	"github.com/prxssh/bencode/pkg/retry"
)

// HTTPTracker announces to a single BitTorrent HTTP tracker.
type HTTPTracker struct {
	baseURL   *url.URL
	client    *http.Client
	trackerID string
	log       *slog.Logger
	retry     []retry.Option
}

// NewHTTPTracker builds a tracker client for the given announce URL. Failed
// announces are retried with exponential backoff via retry.Do, up to
// maxAttempts times, starting at initialDelay and capped at maxDelay.
func NewHTTPTracker(
	baseURL *url.URL,
	log *slog.Logger,
	maxAttempts int,
	initialDelay, maxDelay time.Duration,
) (*HTTPTracker, error) {
	if log == nil {
		log = slog.Default()
	}

	t := &http.Transport{
		MaxIdleConns:          100,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}

	return &HTTPTracker{
		log:     log,
		baseURL: baseURL,
		client:  &http.Client{Transport: t, Timeout: 30 * time.Second},
		retry:   retry.WithExponentialBackoff(maxAttempts, initialDelay, maxDelay),
	}, nil
}

// Announce performs an announce request. Every failed attempt (transport
// error, non-200 status, undecodable body, or a "failure reason" or
// "warning reason" response) is retried with the configured backoff.
func (ht *HTTPTracker) Announce(ctx context.Context, params *AnnounceParams) (*AnnounceResponse, error) {
	var resp *AnnounceResponse

	err := retry.Do(ctx, func(ctx context.Context) error {
		r, err := ht.announceOnce(ctx, params)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}, ht.retry...)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (ht *HTTPTracker) announceOnce(ctx context.Context, params *AnnounceParams) (*AnnounceResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ht.buildAnnounceURL(params), nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ht.log.Info(
		"announce.begin",
		slog.String("info_hash", hex.EncodeToString(params.InfoHash[:])),
		slog.String("event", params.Event.String()),
		slog.Uint64("uploaded", params.Uploaded),
		slog.Uint64("downloaded", params.Downloaded),
		slog.Uint64("left", params.Left),
		slog.Uint64("numwant", uint64(params.NumWant)),
	)

	httpResp, err := ht.client.Do(req)
	lat := time.Since(start)

	if err != nil {
		ht.log.Warn("announce.error", slog.Duration("latency", lat), slog.String("err", err.Error()))
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		ht.log.Warn("announce.http_status", slog.Int("status", httpResp.StatusCode))

		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 1024))
		return nil, fmt.Errorf("tracker: announce returned non-ok status %d: %s", httpResp.StatusCode, string(body))
	}

	r, err := parseAnnounceResponse(httpResp.Body)
	if err != nil {
		ht.log.Warn("announce.decode.error", slog.Duration("latency", lat), slog.String("err", err.Error()))
		return nil, err
	}

	if r.TrackerID != "" {
		ht.trackerID = r.TrackerID
	}

	ht.log.Info(
		"announce.ok",
		slog.Duration("latency", lat),
		slog.String("trackerId", r.TrackerID),
		slog.Duration("interval", r.Interval),
		slog.Duration("minInterval", r.MinInterval),
		slog.Int64("seeders", r.Seeders),
		slog.Int64("leechers", r.Leechers),
		slog.Int("peers", len(r.Peers)),
	)

	return r, nil
}

func (ht *HTTPTracker) buildAnnounceURL(params *AnnounceParams) string {
	u := *ht.baseURL
	q := u.Query()

	q.Set("info_hash", string(params.InfoHash[:]))
	q.Set("peer_id", string(params.PeerID[:]))
	q.Set("port", strconv.Itoa(int(params.Port)))
	q.Set("uploaded", strconv.FormatUint(params.Uploaded, 10))
	q.Set("downloaded", strconv.FormatUint(params.Downloaded, 10))
	q.Set("left", strconv.FormatUint(params.Left, 10))
	q.Set("compact", "1")

	if params.NumWant > 0 {
		q.Set("numwant", strconv.Itoa(int(params.NumWant)))
	}
	if params.Key != 0 {
		q.Set("key", strconv.FormatUint(uint64(params.Key), 10))
	}
	if params.Event != EventNone {
		q.Set("event", params.Event.String())
	}
	if ht.trackerID != "" {
		q.Set("trackerid", ht.trackerID)
	}

	u.RawQuery = q.Encode()
	return u.String()
}

func parseAnnounceResponse(r io.Reader) (*AnnounceResponse, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	dict, err := bencode.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if dict.Kind() != bencode.KindDict {
		return nil, fmt.Errorf("tracker: announce response is not a dict")
	}

	if failure, ok := dict.Get("failure reason"); ok {
		s, _ := failure.String()
		return nil, fmt.Errorf("tracker: announce failure: %s", s)
	}
	if warning, ok := dict.Get("warning reason"); ok {
		s, _ := warning.String()
		return nil, fmt.Errorf("tracker: announce warning: %s", s)
	}

	intervalVal, ok := dict.Get("interval")
	if !ok {
		return nil, fmt.Errorf("tracker: 'interval' missing")
	}
	interval, ok := intervalVal.Int64()
	if !ok {
		return nil, fmt.Errorf("tracker: 'interval' is not an integer")
	}

	peers, err := parsePeers(dict)
	if err != nil {
		return nil, fmt.Errorf("tracker: invalid peers: %w", err)
	}

	var minInterval, seeders, leechers int64
	if v, ok := dict.Get("min interval"); ok {
		minInterval, _ = v.Int64()
	}
	if v, ok := dict.Get("complete"); ok {
		seeders, _ = v.Int64()
	}
	if v, ok := dict.Get("incomplete"); ok {
		leechers, _ = v.Int64()
	}

	var trackerID string
	if v, ok := dict.Get("tracker id"); ok {
		trackerID, _ = v.String()
	}

	return &AnnounceResponse{
		TrackerID:   trackerID,
		Seeders:     seeders,
		Leechers:    leechers,
		Peers:       peers,
		Interval:    time.Duration(interval) * time.Second,
		MinInterval: time.Duration(minInterval) * time.Second,
	}, nil
}

func parsePeers(dict bencode.Value) ([]netip.AddrPort, error) {
	var out []netip.AddrPort

	if v, ok := dict.Get("peers"); ok {
		ps, err := decodePeers(v, false)
		if err != nil {
			return nil, err
		}
		out = append(out, ps...)
	}

	if v6, ok := dict.Get("peers6"); ok {
		ps, err := decodePeers(v6, true)
		if err != nil {
			return nil, err
		}
		out = append(out, ps...)
	}

	return out, nil
}
