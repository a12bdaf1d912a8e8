// Package feeds fetches auxiliary data from the zbMATH Open API.
package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/miku/zbkg"
	"github.com/miku/zbkg/msc"
	"github.com/segmentio/encoding/json"
	"github.com/sethgrid/pester"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the zbMATH Open API.
	DefaultEndpoint = "https://api.zbmath.org/v1"
	// DefaultPageSize is the maximum the API hands out per page.
	DefaultPageSize = 500
	// DefaultLevel selects the depth of the classification tree.
	DefaultLevel = 2
	// DefaultWait is the pause between two requests.
	DefaultWait = 500 * time.Millisecond
)

var bNewline = []byte("\n")

// Doer abstracts https://pkg.go.dev/net/http#Client.Do.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// MSCHarvester pages through the classification search and writes the
// lookup table used by the converter.
type MSCHarvester struct {
	Client    Doer
	Endpoint  string
	PageSize  int
	Level     int
	UserAgent string
	Limiter   *rate.Limiter
	Logger    log.FieldLogger
}

// NewMSCHarvester returns a harvester with a retrying client and a polite
// request rate.
func NewMSCHarvester() *MSCHarvester {
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = 3
	client.RetryOnHTTP429 = true
	client.Timeout = 30 * time.Second
	return &MSCHarvester{
		Client:    client,
		Endpoint:  DefaultEndpoint,
		PageSize:  DefaultPageSize,
		Level:     DefaultLevel,
		UserAgent: fmt.Sprintf("%s/%s", zbkg.AppName, zbkg.Version),
		Limiter:   rate.NewLimiter(rate.Every(DefaultWait), 1),
		Logger:    log.StandardLogger(),
	}
}

// searchResponse is a page of the structured classification search, only
// the parts we need.
type searchResponse struct {
	Result []msc.Entry `json:"result"`
	Status struct {
		NbTotalResults int `json:"nb_total_results"`
	} `json:"status"`
}

func (h *MSCHarvester) pageURL(page int) string {
	vs := url.Values{}
	vs.Set("page", strconv.Itoa(page))
	vs.Set("results_per_page", strconv.Itoa(h.PageSize))
	vs.Set("Level", strconv.Itoa(h.Level))
	return fmt.Sprintf("%s/classification/_structured_search?%s",
		strings.TrimRight(h.Endpoint, "/"), vs.Encode())
}

func (h *MSCHarvester) fetchPage(ctx context.Context, page int) (*searchResponse, error) {
	if h.Limiter != nil {
		if err := h.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	link := h.pageURL(page)
	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	// A missing page ends the walk, like an empty one.
	if resp.StatusCode == http.StatusNotFound {
		return &searchResponse{}, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("msc: HTTP %d while fetching %s", resp.StatusCode, link)
	}
	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("msc: decode page %d: %w", page, err)
	}
	return &sr, nil
}

// WriteEntries fetches pages starting at zero until a page comes back empty
// and writes one entry per line. Returns the number of entries written.
func (h *MSCHarvester) WriteEntries(ctx context.Context, w io.Writer) (int, error) {
	var (
		n      int
		logger = h.Logger
	)
	if logger == nil {
		logger = log.StandardLogger()
	}
	for page := 0; ; page++ {
		logger.WithField("page", page).Debug("fetching classification page")
		sr, err := h.fetchPage(ctx, page)
		if err != nil {
			return n, err
		}
		if len(sr.Result) == 0 {
			break
		}
		for _, e := range sr.Result {
			if strings.TrimSpace(e.Code) == "" {
				continue
			}
			b, err := json.Marshal(e)
			if err != nil {
				return n, err
			}
			b = append(b, bNewline...)
			if _, err := w.Write(b); err != nil {
				return n, err
			}
			n++
		}
		logger.WithFields(log.Fields{
			"page":  page,
			"seen":  n,
			"total": sr.Status.NbTotalResults,
		}).Info("msc")
	}
	return n, nil
}
