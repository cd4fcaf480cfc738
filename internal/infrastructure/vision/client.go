package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/platelens/backend/internal/domain"
)

// extractionPrompt instructs the vision model to return structured menu
// data as a single JSON object.
const extractionPrompt = `Analyze this menu image and extract all food items with their details.
Return the data in the following JSON format:

{
    "products": [
        {
            "name": "Food item name as it appears on the menu (original language)",
            "nameEnglish": "English translation of the food item name (for image search)",
            "price": "Price if visible (e.g., '$12.99', or empty string if not visible)",
            "description": "Brief description if available (or empty string)",
            "parsingError": "Any issue parsing this specific item (or empty string if no issues)"
        }
    ],
    "error": ""
}

Instructions:
- Extract ALL food items: main dishes, appetizers, soups, salads, beverages, desserts
- Keep original names in 'name' exactly as they appear on the menu
- Provide an English translation in 'nameEnglish' for better image search
- If the original name is already in English, use the same name for both fields
- Clean item names: remove numbering, prices, and extra formatting
- Include prices only if clearly visible and associated with items
- Use parsingError for items that are hard to read or unclear
- Use the main error field only for overall parsing problems
- If you can't read the menu at all, set the main error field
- Return valid JSON`

// Client calls an OpenAI-compatible chat-completions endpoint with a
// vision-capable model to extract structured dish data from menu photos.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new vision client.
func NewClient(apiKey, baseURL, model string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		// Modest ceiling so a burst of uploads cannot exhaust the API quota
		rateLimiter: rate.NewLimiter(rate.Limit(1), 5),
	}
}

// SetDebug enables verbose request/response logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[VISION] "+format, args...)
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract sends a menu photo to the vision model and parses the
// structured response. Recoverable failures (API errors, malformed model
// output, unreadable image) are reported via Extraction.Error with an
// empty item list; a non-nil error means the endpoint was unreachable or
// the context expired.
func (c *Client) Extract(ctx context.Context, image []byte) (*domain.Extraction, error) {
	if len(image) == 0 {
		return &domain.Extraction{Error: "empty image content - please upload a valid image"}, nil
	}

	mimeType := sniffImageMIME(image)
	c.debugLog("detected image format: %s", mimeType)

	encoded := base64.StdEncoding.EncodeToString(image)
	payload := chatRequest{
		Model:       c.model,
		MaxTokens:   2000,
		Temperature: 0.1,
		ResponseFormat: &responseFormat{
			Type: "json_object",
		},
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []chatContent{
					{Type: "text", Text: extractionPrompt},
					{
						Type: "image_url",
						ImageURL: &chatImageURL{
							URL: fmt.Sprintf("data:%s;base64,%s", mimeType, encoded),
						},
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	// Retry transient failures; 4xx responses other than 429 are final.
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[VISION] request error (attempt %d): %v", attempt, err)
			lastErr = err
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Printf("[VISION] API error (attempt %d) - status %d: %s", attempt, resp.StatusCode, truncate(respBody, 200))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return &domain.Extraction{Error: fmt.Sprintf("AI service error: status %d", resp.StatusCode)}, nil
			}
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		var completion chatResponse
		if err := json.Unmarshal(respBody, &completion); err != nil || len(completion.Choices) == 0 {
			return &domain.Extraction{Error: "failed to parse menu data - invalid response format"}, nil
		}

		return parseExtraction(completion.Choices[0].Message.Content), nil
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrVisionAPIFailure, lastErr)
}

// parseExtraction decodes and cleans the model's JSON content. If the
// model ignored the JSON instruction and returned plain text, dish names
// are salvaged line by line instead of discarding the whole response.
func parseExtraction(content string) *domain.Extraction {
	var extraction domain.Extraction
	if err := json.Unmarshal([]byte(content), &extraction); err != nil {
		log.Printf("[VISION] failed to parse model output, falling back to line parser: %v", err)

		names := ParseDishNames(content)
		if len(names) == 0 {
			return &domain.Extraction{Error: "failed to parse menu data - invalid response format"}
		}

		items := make([]domain.ExtractedItem, 0, len(names))
		for _, name := range names {
			items = append(items, domain.ExtractedItem{
				Name:         name,
				ParsingError: "recovered from unstructured model output",
			})
		}
		return &domain.Extraction{Items: items}
	}

	cleaned := make([]domain.ExtractedItem, 0, len(extraction.Items))
	for _, item := range extraction.Items {
		item.Name = strings.TrimSpace(item.Name)
		item.NameEnglish = strings.TrimSpace(item.NameEnglish)
		item.Price = strings.TrimSpace(item.Price)
		item.Description = strings.TrimSpace(item.Description)
		item.ParsingError = strings.TrimSpace(item.ParsingError)

		// Single-character names are OCR noise
		if utf8.RuneCountInString(item.Name) <= 1 {
			continue
		}
		cleaned = append(cleaned, item)
	}
	extraction.Items = cleaned

	log.Printf("[VISION] extracted %d items", len(cleaned))
	return &extraction
}

// sniffImageMIME detects the image format from its magic bytes, defaulting
// to JPEG when the format is unrecognized.
func sniffImageMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "image/png"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "image/gif"
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) >= 12 && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
