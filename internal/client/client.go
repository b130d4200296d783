// Package client is a small HTTP client for the prediction service.
package client

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"parkinson-insight/internal/common"
	"parkinson-insight/internal/ml"
)

// Retry defaults for rate limited requests.
const (
	defaultRetries      = 5
	defaultMaxRetryWait = 10 * time.Second
	minRetryWait        = 50 * time.Millisecond
)

// Client talks to a running prediction service.
type Client struct {
	base string
	rest *resty.Client
}

// New creates a client for the service at base. apiKey may be empty when
// the service runs without authentication. Requests rejected with 429 are
// retried after the server's Retry-After delay.
func New(base, apiKey string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	if apiKey != "" {
		r.SetHeader(common.APIKeyHeader, apiKey)
	}
	r.SetHeader("Content-Type", "application/json")

	r.AddRetryCondition(func(resp *resty.Response, err error) bool {
		return err == nil && resp.StatusCode() == http.StatusTooManyRequests
	})
	r.SetRetryAfter(retryAfter)

	c := &Client{base: strings.TrimRight(base, "/"), rest: r}
	return c.SetRetry(defaultRetries, defaultMaxRetryWait)
}

// SetRetry sets how many times a rate limited request is retried and the
// longest single wait. A count of zero disables retries.
func (c *Client) SetRetry(count int, maxWait time.Duration) *Client {
	c.rest.SetRetryCount(count)
	c.rest.SetRetryWaitTime(minRetryWait)
	c.rest.SetRetryMaxWaitTime(maxWait)
	return c
}

// retryAfter reads the Retry-After header in seconds. Returning zero lets
// resty fall back to its jittered backoff.
func retryAfter(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
	secs, err := strconv.Atoi(resp.Header().Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0, nil
	}
	return time.Duration(secs) * time.Second, nil
}

type predictReq struct {
	Features ml.FeatureVector `json:"features"`
	Model    string           `json:"model,omitempty"`
	UserID   string           `json:"userId,omitempty"`
}

type assessReq struct {
	Symptoms ml.ClinicalSymptoms  `json:"clinicalSymptoms"`
	Voice    *ml.AcousticFeatures `json:"voiceFeatures,omitempty"`
	UserID   string               `json:"userId,omitempty"`
}

type errorResp struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Predict scores fv with the named model. An empty model lets the service
// choose.
func (c *Client) Predict(fv ml.FeatureVector, model ml.ModelID, userID string) (ml.PredictionResult, error) {
	var res ml.PredictionResult
	err := c.post("/predict", predictReq{Features: fv, Model: string(model), UserID: userID}, &res)
	return res, err
}

// PredictEnsemble runs every model on the service and returns the aggregate.
func (c *Client) PredictEnsemble(fv ml.FeatureVector, userID string) (ml.EnsembleResult, error) {
	var res ml.EnsembleResult
	err := c.post("/predict/ensemble", predictReq{Features: fv, UserID: userID}, &res)
	return res, err
}

// AssessClinical submits a symptom checklist, optionally with voice features.
func (c *Client) AssessClinical(s ml.ClinicalSymptoms, voice *ml.AcousticFeatures, userID string) (ml.Assessment, error) {
	var res ml.Assessment
	err := c.post("/assess/clinical", assessReq{Symptoms: s, Voice: voice, UserID: userID}, &res)
	return res, err
}

// Models fetches the model catalogue.
func (c *Client) Models() (ml.CatalogueInfo, error) {
	var res ml.CatalogueInfo
	err := c.get("/models", &res)
	return res, err
}

// Health checks that the service is up.
func (c *Client) Health() (HealthStatus, error) {
	var res HealthStatus
	err := c.get("/health", &res)
	return res, err
}

func (c *Client) post(path string, body, result any) error {
	apiErr := &errorResp{}
	resp, err := c.rest.R().
		SetBody(body).
		SetResult(result).
		SetError(apiErr).
		Post(c.base + path)
	return check(path, resp, apiErr, err)
}

func (c *Client) get(path string, result any) error {
	apiErr := &errorResp{}
	resp, err := c.rest.R().
		SetResult(result).
		SetError(apiErr).
		Get(c.base + path)
	return check(path, resp, apiErr, err)
}

func check(path string, resp *resty.Response, apiErr *errorResp, err error) error {
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return fmt.Errorf("API error %d on %s: %s", resp.StatusCode(), path, apiErr.Error)
		}
		return fmt.Errorf("API error %d on %s: %s", resp.StatusCode(), path, resp.String())
	}
	return nil
}
