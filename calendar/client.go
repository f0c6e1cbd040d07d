/*
client.go - Remote holiday calendar client

PURPOSE:

	Performs exactly one fetch of one year from the remote calendar API.
	Retries, caching and deduplication live in resolver.go.

WIRE FORMAT:

	GET <endpoint>/<year>

	{
	  "code": 0,
	  "holiday": {
	    "2025-01-01": {"holiday": true,  "name": "New Year", "wage": 3, "date": "2025-01-01"},
	    "2025-01-26": {"holiday": false, "name": "Spring Festival (makeup)", "after": false, "wage": 1, ...}
	  }
	}

	Keys are ISO dates; some deployments use "MM-DD" keys with the full date
	inside the entry, so the entry's own "date" wins when present.

CLASSIFICATION:

	holiday == true                                  -> Holiday
	holiday == false && after == false && wage == 3  -> MakeupWorkday
	anything else                                    -> ignored

FAILURES:

	Non-200 (429 distinctly), HTML body, malformed JSON, code != 0 or missing
	holiday map, and the per-request timeout all fail the attempt.
*/
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/rs/zerolog"
)

const (
	DefaultEndpoint       = "http://timor.tech/api/holiday/year"
	DefaultRequestTimeout = 15 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Fetcher retrieves one year of calendar data in a single attempt.
type Fetcher interface {
	Fetch(ctx context.Context, year int) (YearCalendar, error)
}

// Client is the HTTP implementation of Fetcher.
type Client struct {
	Endpoint string
	Timeout  time.Duration

	http *http.Client
	log  zerolog.Logger
}

// NewClient creates a client for endpoint. An empty endpoint selects
// DefaultEndpoint.
func NewClient(endpoint string, log zerolog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint: strings.TrimSuffix(endpoint, "/"),
		Timeout:  DefaultRequestTimeout,
		// Compression is negotiated by hand (br is not supported by the
		// transport), so transparent gzip is disabled.
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:              http.ProxyFromEnvironment,
				DisableCompression: true,
			},
		},
		log: log.With().Str("client", "calendar").Logger(),
	}
}

// Fetch issues one GET for year and parses the response.
func (c *Client) Fetch(ctx context.Context, year int) (YearCalendar, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	url := c.Endpoint + "/" + strconv.Itoa(year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return YearCalendar{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Cache-Control", "no-cache")

	c.log.Debug().Str("url", url).Msg("Requesting holiday calendar")

	resp, err := c.http.Do(req)
	if err != nil {
		return YearCalendar{}, c.requestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return YearCalendar{}, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := readBody(resp)
	if err != nil {
		return YearCalendar{}, c.requestError(ctx, err)
	}

	c.log.Debug().
		Int("bytes", len(body)).
		Str("encoding", resp.Header.Get("Content-Encoding")).
		Msg("Holiday calendar response received")

	return parseYear(year, body)
}

func (c *Client) requestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrTimeout, c.Timeout, err)
	}
	return fmt.Errorf("calendar request failed: %w", err)
}

// =============================================================================
// RESPONSE DECODING
// =============================================================================

func readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return decode(strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))), raw)
}

// decode undoes the Content-Encoding. HTTP "deflate" is meant to be
// zlib-wrapped but some servers send raw deflate, so both are accepted.
// Unknown encodings pass through untouched and JSON parsing decides.
func decode(encoding string, raw []byte) ([]byte, error) {
	switch encoding {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case "deflate":
		if r, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer r.Close()
			return io.ReadAll(r)
		}
		r := flate.NewReader(bytes.NewReader(raw))
		defer r.Close()
		return io.ReadAll(r)
	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
	default:
		return raw, nil
	}
}

// =============================================================================
// PAYLOAD PARSING
// =============================================================================

type yearPayload struct {
	Code    *int                    `json:"code"`
	Holiday map[string]entryPayload `json:"holiday"`
}

type entryPayload struct {
	Holiday bool     `json:"holiday"`
	Name    string   `json:"name"`
	After   *bool    `json:"after"`
	Wage    *float64 `json:"wage"`
	Date    string   `json:"date"`
}

func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	head := strings.ToLower(string(trimmed[:min(len(trimmed), 16)]))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

func parseYear(year int, body []byte) (YearCalendar, error) {
	if looksLikeHTML(body) {
		return YearCalendar{}, ErrHTMLResponse
	}

	var payload yearPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return YearCalendar{}, fmt.Errorf("failed to parse calendar JSON: %w", err)
	}
	if payload.Code == nil || *payload.Code != 0 {
		return YearCalendar{}, fmt.Errorf("%w: code %s", ErrUnexpectedPayload, codeString(payload.Code))
	}
	if payload.Holiday == nil {
		return YearCalendar{}, fmt.Errorf("%w: missing holiday mapping", ErrUnexpectedPayload)
	}

	entries := make([]Entry, 0, len(payload.Holiday))
	for key, info := range payload.Holiday {
		kind, ok := classifyEntry(info)
		if !ok {
			continue
		}
		date, ok := entryDate(year, key, info.Date)
		if !ok || date.Year != year {
			continue
		}
		label := info.Name
		if label == "" {
			label = defaultLabel(kind)
		}
		entries = append(entries, Entry{Date: date, Kind: kind, Label: label})
	}

	return NewYearCalendar(year, entries), nil
}

// classifyEntry applies the upstream heuristic as-is: a makeup workday is a
// non-holiday that does not follow a holiday and pays triple wage.
func classifyEntry(info entryPayload) (Kind, bool) {
	if info.Holiday {
		return KindHoliday, true
	}
	if info.After != nil && !*info.After && info.Wage != nil && *info.Wage == 3 {
		return KindMakeupWorkday, true
	}
	return "", false
}

func entryDate(year int, key, field string) (Date, bool) {
	for _, s := range []string{field, key} {
		if s == "" {
			continue
		}
		if d, err := ParseDate(s); err == nil {
			return d, true
		}
		if d, err := ParseDate(fmt.Sprintf("%04d-%s", year, s)); err == nil {
			return d, true
		}
	}
	return Date{}, false
}

func defaultLabel(kind Kind) string {
	if kind == KindMakeupWorkday {
		return "makeup workday"
	}
	return "holiday"
}

func codeString(code *int) string {
	if code == nil {
		return "missing"
	}
	return strconv.Itoa(*code)
}
