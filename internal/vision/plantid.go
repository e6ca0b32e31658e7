package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/agroecology/cropvision/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultPlantIDBaseURL = "https://api.plant.id/v2"
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = time.Second
	DefaultAttemptTimeout = 30 * time.Second

	// attemptTimeoutStep extends the timeout of each retry.
	attemptTimeoutStep = 10 * time.Second

	APISourcePlantID = "plant_id"

	userAgent        = "CropVision-PestIdentification/1.0"
	maxResponseBytes = 8 << 20
)

// Error types reported in APIError.Type.
const (
	ErrTypeRateLimit       = "rate_limit_exceeded"
	ErrTypeAuthentication  = "authentication_error"
	ErrTypeQuotaExceeded   = "quota_exceeded"
	ErrTypeUnavailable     = "service_unavailable"
	ErrTypeTimeout         = "timeout_error"
	ErrTypeNetwork         = "network_error"
	ErrTypeAPI             = "api_error"
	ErrTypeInvalidResponse = "invalid_response"
)

// APIError is a failed call to a remote vision API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Retryable  bool
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

type identifyRequest struct {
	APIKey         string   `json:"api_key"`
	Images         []string `json:"images"`
	Modifiers      []string `json:"modifiers"`
	DiseaseDetails []string `json:"disease_details"`
	PlantDetails   []string `json:"plant_details,omitempty"`
	Location       string   `json:"location,omitempty"`
}

type identifyResponse struct {
	ID                 string                     `json:"id"`
	Suggestions        *[]domain.VisionSuggestion `json:"suggestions"`
	IsPlantProbability float64                    `json:"is_plant_probability"`
}

// PlantIDClient calls the Plant.id identification API. Transient failures
// (429, 5xx, timeouts, network errors) are retried with exponential
// backoff; authentication and quota failures are returned immediately.
type PlantIDClient struct {
	apiKey     string
	httpClient *http.Client
	quota      *Quota
	logger     *zap.Logger

	BaseURL        string
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
}

func NewPlantIDClient(apiKey string, quota *Quota, logger *zap.Logger) *PlantIDClient {
	if quota == nil {
		quota = NewQuota(DefaultMaxRequestsPerMinute, DefaultMaxRequestsPerDay)
	}
	return &PlantIDClient{
		apiKey:         apiKey,
		httpClient:     &http.Client{},
		quota:          quota,
		logger:         logger,
		BaseURL:        DefaultPlantIDBaseURL,
		MaxAttempts:    DefaultMaxAttempts,
		BaseDelay:      DefaultBaseDelay,
		AttemptTimeout: DefaultAttemptTimeout,
	}
}

func (c *PlantIDClient) RateLimitStatus() domain.RateLimitStatus {
	return c.quota.Status()
}

func (c *PlantIDClient) Identify(ctx context.Context, req domain.VisionRequest) (*domain.VisionResponse, error) {
	body, err := json.Marshal(c.payload(req))
	if err != nil {
		return nil, fmt.Errorf("marshal identify request: %w", err)
	}

	data, err := c.doWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}

	var parsed identifyResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &APIError{Type: ErrTypeInvalidResponse, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if parsed.Suggestions == nil {
		return nil, &APIError{Type: ErrTypeInvalidResponse, Message: "missing suggestions"}
	}

	suggestions := *parsed.Suggestions
	level := confidenceLevel(suggestions)
	c.logger.Info("plant.id identification completed",
		zap.String("confidence_level", string(level)),
		zap.Int("suggestions", len(suggestions)))

	return &domain.VisionResponse{
		Success:            true,
		Suggestions:        suggestions,
		ConfidenceLevel:    level,
		APISource:          APISourcePlantID,
		IsPlantProbability: parsed.IsPlantProbability,
	}, nil
}

func (c *PlantIDClient) payload(req domain.VisionRequest) identifyRequest {
	p := identifyRequest{
		APIKey:         c.apiKey,
		Images:         []string{base64.StdEncoding.EncodeToString(req.Image)},
		Modifiers:      []string{"crops_fast", "similar_images", "disease_details"},
		DiseaseDetails: []string{"cause", "common_names", "classification", "description", "treatment", "url"},
		Location:       req.Location,
	}
	if req.CropType != "" {
		p.PlantDetails = []string{req.CropType}
	}
	return p
}

func (c *PlantIDClient) doWithRetry(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * c.BaseDelay
			c.logger.Info("retrying plant.id request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.quota.Reserve(); err != nil {
			c.logger.Warn("plant.id request refused by local quota",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			return nil, &APIError{StatusCode: http.StatusTooManyRequests, Type: ErrTypeRateLimit, Message: err.Error()}
		}

		data, err := c.attempt(ctx, attempt, body)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *PlantIDClient) attempt(ctx context.Context, n int, body []byte) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.AttemptTimeout+time.Duration(n)*attemptTimeoutStep)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, strings.TrimSuffix(c.BaseURL, "/")+"/identify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create identify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, &APIError{Type: ErrTypeTimeout, Message: "request timed out", Retryable: true}
		}
		return nil, &APIError{Type: ErrTypeNetwork, Message: err.Error(), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Type: ErrTypeNetwork, Message: err.Error(), Retryable: true}
	}

	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		return data, nil
	case code == http.StatusUnauthorized:
		return nil, &APIError{StatusCode: code, Type: ErrTypeAuthentication, Message: "Invalid API key - please check your Plant.id API configuration"}
	case code == http.StatusPaymentRequired:
		return nil, &APIError{StatusCode: code, Type: ErrTypeQuotaExceeded, Message: "API quota exceeded - please upgrade your Plant.id plan or try again later"}
	case code == http.StatusTooManyRequests:
		return nil, &APIError{StatusCode: code, Type: ErrTypeRateLimit, Message: "Rate limit exceeded - please try again later", Retryable: true}
	case code >= http.StatusInternalServerError:
		return nil, &APIError{StatusCode: code, Type: ErrTypeUnavailable, Message: "Plant.id service temporarily unavailable", Retryable: true}
	default:
		detail := strings.TrimSpace(string(data))
		if detail == "" {
			detail = "unknown error"
		}
		return nil, &APIError{StatusCode: code, Type: ErrTypeAPI, Message: detail}
	}
}

// confidenceLevel buckets the highest disease probability of the top
// suggestion.
func confidenceLevel(suggestions []domain.VisionSuggestion) domain.ConfidenceLevel {
	if len(suggestions) == 0 || suggestions[0].Disease == nil {
		return domain.ConfidenceLow
	}
	var best float64
	for _, d := range suggestions[0].Disease.Suggestions {
		best = max(best, d.Probability)
	}
	return domain.ComputeConfidenceLevel(best)
}
