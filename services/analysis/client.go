package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTimeout is the HTTP client timeout for analysis calls. A
	// compliance pass walks every indicator of the scoped catalog, so
	// it is generous.
	DefaultTimeout = 2 * time.Minute
	// TokenTTL bounds the lifetime of the per-request service token.
	TokenTTL = 5 * time.Minute
)

// Client calls the external compliance analysis service. The engine
// treats the analysis result as opaque: it seeds evaluated-indicator
// rows and is never recomputed locally.
type Client struct {
	baseURL    string
	jwtSecret  []byte
	jwtIssuer  string
	httpClient *http.Client
}

// Config holds configuration for the analysis client
type Config struct {
	BaseURL   string
	JWTSecret string
	JWTIssuer string
	Timeout   time.Duration
}

// NewClient creates a new analysis service client
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.JWTIssuer == "" {
		config.JWTIssuer = "aula-cert-api"
	}

	return &Client{
		baseURL:   config.BaseURL,
		jwtSecret: []byte(config.JWTSecret),
		jwtIssuer: config.JWTIssuer,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// AnalyzeRequest identifies the evaluation scope sent to the service.
type AnalyzeRequest struct {
	ClassroomID  uint   `json:"classroom_id"`
	CycleID      uint   `json:"cycle_id"`
	AreaID       uint   `json:"area_id"`
	EvaluationID uint   `json:"evaluation_id"`
	RequestID    string `json:"request_id"`
}

// ResourceDetail is one analyzed indicator outcome.
type ResourceDetail struct {
	IndicatorID uint   `json:"indicator_id"`
	Result      int    `json:"result"` // 0 or 1
	Observation string `json:"observation"`
}

// Summary is the service's verdict over the whole scope.
type Summary struct {
	Status         string `json:"status"` // "processing" or "completed"
	CompliantCount int    `json:"compliant_count"`
	TotalCount     int    `json:"total_count"`
}

// AnalyzeResponse is the full analysis payload.
type AnalyzeResponse struct {
	ResourceDetails []ResourceDetail `json:"resource_details"`
	Summary         Summary          `json:"summary"`
	Raw             json.RawMessage  `json:"-"`
}

// Analyze runs a compliance pass for one (classroom, cycle, area)
// scope. The request carries a fresh idempotency key and a short-lived
// signed service token.
func (c *Client) Analyze(ctx context.Context, classroomID, cycleID, areaID, evaluationID uint) (*AnalyzeResponse, error) {
	req := AnalyzeRequest{
		ClassroomID:  classroomID,
		CycleID:      cycleID,
		AreaID:       areaID,
		EvaluationID: evaluationID,
		RequestID:    uuid.NewString(),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analyze request: %w", err)
	}

	token, err := c.signServiceToken()
	if err != nil {
		return nil, fmt.Errorf("failed to sign service token: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("X-Request-Id", req.RequestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result AnalyzeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	result.Raw = respBody

	return &result, nil
}

// signServiceToken issues a short-lived HS256 token identifying this
// service to the analysis backend.
func (c *Client) signServiceToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.jwtIssuer,
		Subject:   "compliance-analysis",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.jwtSecret)
}
