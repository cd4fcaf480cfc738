package stockphoto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/platelens/backend/internal/domain"
)

const (
	defaultPexelsBaseURL   = "https://api.pexels.com"
	defaultUnsplashBaseURL = "https://api.unsplash.com"

	// Per-request page caps imposed by the providers
	pexelsMaxPerPage   = 15
	unsplashMaxPerPage = 30
)

// Config holds configuration for the stock-photo client. Base URLs
// default to the public provider endpoints when empty.
type Config struct {
	PexelsAPIKey      string
	UnsplashAccessKey string
	Timeout           time.Duration
	PexelsBaseURL     string
	UnsplashBaseURL   string
}

// Client searches Pexels first and Unsplash for the remainder. A search
// fails (returns an error) only when every configured provider fails or
// no provider is configured; fewer results than requested is not a
// failure.
type Client struct {
	httpClient      *http.Client
	pexelsKey       string
	unsplashKey     string
	pexelsBaseURL   string
	unsplashBaseURL string
	rateLimiter     *rate.Limiter
}

// NewClient creates a new stock-photo client.
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	pexelsBaseURL := config.PexelsBaseURL
	if pexelsBaseURL == "" {
		pexelsBaseURL = defaultPexelsBaseURL
	}
	unsplashBaseURL := config.UnsplashBaseURL
	if unsplashBaseURL == "" {
		unsplashBaseURL = defaultUnsplashBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		pexelsKey:       config.PexelsAPIKey,
		unsplashKey:     config.UnsplashAccessKey,
		pexelsBaseURL:   pexelsBaseURL,
		unsplashBaseURL: unsplashBaseURL,
		// Both providers throttle free keys around 200 requests/hour
		rateLimiter: rate.NewLimiter(rate.Limit(2), 5),
	}
}

// Search returns up to count images for the given dish term. Results keep
// provider attribution so clients can credit photographers.
func (c *Client) Search(ctx context.Context, term string, count int) ([]domain.ImageRecord, error) {
	if count <= 0 {
		return []domain.ImageRecord{}, nil
	}

	var images []domain.ImageRecord
	var failures []error
	configured := false

	if c.pexelsKey != "" {
		configured = true
		records, err := c.searchPexels(ctx, term, count)
		if err != nil {
			log.Printf("[IMAGES] pexels search for %q failed: %v", term, err)
			failures = append(failures, err)
		} else {
			images = append(images, records...)
		}
	}

	if len(images) < count && c.unsplashKey != "" {
		configured = true
		records, err := c.searchUnsplash(ctx, term, count-len(images))
		if err != nil {
			log.Printf("[IMAGES] unsplash search for %q failed: %v", term, err)
			failures = append(failures, err)
		} else {
			images = append(images, records...)
		}
	}

	if !configured {
		return nil, fmt.Errorf("%w: no image providers configured", domain.ErrImageSearchFailure)
	}
	if len(images) == 0 && len(failures) > 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageSearchFailure, errors.Join(failures...))
	}

	if len(images) > count {
		images = images[:count]
	}
	return images, nil
}

type pexelsResponse struct {
	Photos []struct {
		Src struct {
			Medium string `json:"medium"`
		} `json:"src"`
		Photographer    string `json:"photographer"`
		PhotographerURL string `json:"photographer_url"`
	} `json:"photos"`
}

func (c *Client) searchPexels(ctx context.Context, term string, count int) ([]domain.ImageRecord, error) {
	params := url.Values{}
	params.Add("query", term+" food")
	params.Add("per_page", strconv.Itoa(min(count, pexelsMaxPerPage)))
	params.Add("orientation", "landscape")

	body, err := c.doRequest(ctx, c.pexelsBaseURL+"/v1/search?"+params.Encode(), c.pexelsKey)
	if err != nil {
		return nil, err
	}

	var parsed pexelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	records := make([]domain.ImageRecord, 0, count)
	for _, photo := range parsed.Photos {
		if len(records) == count {
			break
		}
		records = append(records, domain.ImageRecord{
			URL:             photo.Src.Medium,
			Source:          "pexels",
			Photographer:    photo.Photographer,
			PhotographerURL: photo.PhotographerURL,
		})
	}
	return records, nil
}

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		User struct {
			Name  string `json:"name"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"user"`
	} `json:"results"`
}

func (c *Client) searchUnsplash(ctx context.Context, term string, count int) ([]domain.ImageRecord, error) {
	params := url.Values{}
	params.Add("query", term+" food")
	params.Add("per_page", strconv.Itoa(min(count, unsplashMaxPerPage)))
	params.Add("orientation", "landscape")

	body, err := c.doRequest(ctx, c.unsplashBaseURL+"/search/photos?"+params.Encode(), "Client-ID "+c.unsplashKey)
	if err != nil {
		return nil, err
	}

	var parsed unsplashResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	records := make([]domain.ImageRecord, 0, count)
	for _, photo := range parsed.Results {
		if len(records) == count {
			break
		}
		records = append(records, domain.ImageRecord{
			URL:             photo.URLs.Regular,
			Source:          "unsplash",
			Photographer:    photo.User.Name,
			PhotographerURL: photo.User.Links.HTML,
		})
	}
	return records, nil
}

// doRequest executes a GET against a provider and returns the body for
// 200 responses.
func (c *Client) doRequest(ctx context.Context, reqURL, authorization string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("User-Agent", "PlateLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}
