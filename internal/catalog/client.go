package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	DefaultImageSize    = "w500"
	DefaultTimeout      = 3 * time.Second
)

type Config struct {
	BaseURL      string
	ImageBaseURL string
	ImageSize    string
	APIKey       string
	// Timeout bounds search requests only; image downloads are unbounded.
	Timeout time.Duration
	// RateLimit is the allowed requests per second; zero disables pacing.
	RateLimit float64
	// MaxImageWidth downsizes wider images; zero keeps the original size.
	MaxImageWidth int
}

type Query struct {
	Title string
	Year  string
	IsTV  bool
}

type Match struct {
	Title        string
	Year         string
	Overview     string
	Rating       float64
	PosterPath   string
	BackdropPath string
}

type Client struct {
	cfg     Config
	search  *resty.Client
	images  *resty.Client
	limiter *rate.Limiter
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	if cfg.ImageSize == "" {
		cfg.ImageSize = DefaultImageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		cfg: cfg,
		search: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(cfg.Timeout),
		images:  resty.New(),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Configured reports whether an API key is set. Without one every search
// would be rejected, so callers skip the catalog entirely.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
}

// Search looks q up under /search/movie or /search/tv and returns the first
// result.
func (c *Client) Search(ctx context.Context, q Query) (*Match, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RemoteError{Op: "search", Err: err}
	}

	kind := "movie"
	params := map[string]string{
		"api_key": c.cfg.APIKey,
		"query":   q.Title,
	}
	if q.IsTV {
		kind = "tv"
	} else if q.Year != "" {
		params["year"] = q.Year
	}

	resp, err := c.search.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetHeader("Accept", "application/json").
		Get("/search/" + kind)
	if err != nil {
		return nil, &RemoteError{Op: "search", Err: err}
	}
	if resp.IsError() {
		return nil, &RemoteError{Op: "search", Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}

	var out searchResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &RemoteError{Op: "search", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Results) == 0 {
		return nil, ErrNoResults
	}

	r := out.Results[0]
	m := &Match{
		Title:        r.Title,
		Overview:     r.Overview,
		Rating:       r.VoteAverage,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
	}
	date := r.ReleaseDate
	if q.IsTV {
		m.Title = r.Name
		date = r.FirstAirDate
	}
	if len(date) >= 4 {
		m.Year = date[:4]
	}

	return m, nil
}

// FetchImage downloads ref at the configured size and re-encodes it as JPEG,
// downsized to MaxImageWidth when wider.
func (c *Client) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty image reference")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RemoteError{Op: "image", Err: err}
	}

	url := strings.TrimRight(c.cfg.ImageBaseURL, "/") + "/" + c.cfg.ImageSize + "/" + strings.TrimLeft(ref, "/")

	resp, err := c.images.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &RemoteError{Op: "image", Err: err}
	}
	if resp.IsError() {
		return nil, &RemoteError{Op: "image", Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}

	img, err := imaging.Decode(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", ref, err)
	}

	if w := c.cfg.MaxImageWidth; w > 0 && img.Bounds().Dx() > w {
		img = imaging.Resize(img, w, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image %s: %w", ref, err)
	}

	return buf.Bytes(), nil
}
