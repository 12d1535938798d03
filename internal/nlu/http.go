package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const datetimeEntityPrefix = "builtin.datetimeV2."

// HTTPRecognizer calls a hosted LUIS-style classification endpoint.
type HTTPRecognizer struct {
	endpoint string
	appID    string
	key      string
	client   *http.Client
}

// NewHTTPRecognizer validates the connection settings up front so a
// misconfigured bot fails at startup, not mid-conversation.
func NewHTTPRecognizer(endpoint, appID, key string) (*HTTPRecognizer, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("recognizer endpoint is required")
	}
	if appID == "" {
		return nil, fmt.Errorf("recognizer application id is required")
	}
	return &HTTPRecognizer{
		endpoint: strings.TrimRight(endpoint, "/"),
		appID:    appID,
		key:      key,
		client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (r *HTTPRecognizer) Recognize(ctx context.Context, text string) (*Result, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("verbose", "true")
	if r.key != "" {
		params.Set("subscription-key", r.key)
	}

	reqURL := fmt.Sprintf("%s/apps/%s?%s", r.endpoint, r.appID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call recognizer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognizer status %d", resp.StatusCode)
	}

	var payload struct {
		Query            string `json:"query"`
		TopScoringIntent *struct {
			Intent string  `json:"intent"`
			Score  float64 `json:"score"`
		} `json:"topScoringIntent"`
		Intents []struct {
			Intent string  `json:"intent"`
			Score  float64 `json:"score"`
		} `json:"intents"`
		Entities []struct {
			Entity     string `json:"entity"`
			Type       string `json:"type"`
			Resolution struct {
				Values []struct {
					Timex string `json:"timex"`
					Type  string `json:"type"`
					Value string `json:"value"`
				} `json:"values"`
			} `json:"resolution"`
		} `json:"entities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode recognizer response: %w", err)
	}

	result := &Result{
		Text:     payload.Query,
		Entities: make(map[string][]string),
	}
	for _, intent := range payload.Intents {
		result.Intents = append(result.Intents, Intent{Name: intent.Intent, Score: intent.Score})
	}
	// Non-verbose responses only carry the winner.
	if len(result.Intents) == 0 && payload.TopScoringIntent != nil {
		result.Intents = append(result.Intents, Intent{
			Name:  payload.TopScoringIntent.Intent,
			Score: payload.TopScoringIntent.Score,
		})
	}

	for _, entity := range payload.Entities {
		if strings.HasPrefix(entity.Type, datetimeEntityPrefix) {
			spec := DateTimeSpec{Type: strings.TrimPrefix(entity.Type, datetimeEntityPrefix)}
			for _, value := range entity.Resolution.Values {
				if value.Timex != "" {
					spec.Timex = append(spec.Timex, value.Timex)
				}
			}
			result.DateTimes = append(result.DateTimes, spec)
			continue
		}
		result.Entities[entity.Type] = append(result.Entities[entity.Type], entity.Entity)
	}

	return result, nil
}
