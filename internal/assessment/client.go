// Package assessment wraps the external pronunciation-assessment API.
// The service scores an utterance against a reference text along four
// axes, with per-word and per-phoneme detail. It is treated as an opaque
// collaborator: this client only shapes requests and decodes responses.
package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"accentclash/internal/models"
)

// ErrNotConfigured is returned when the assessment service credentials
// are missing from the environment
var ErrNotConfigured = errors.New("assessment service not configured")

const requestTimeout = 30 * time.Second

// Result is the assessment of one recorded utterance
type Result struct {
	Transcript   string
	Scores       models.AxisScores
	OverallScore *float64
	WordResults  []models.WordResult
}

// Client calls the pronunciation-assessment API, authenticating with
// OAuth2 client credentials
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an assessment client. With an empty base URL the
// client is disabled and Assess returns ErrNotConfigured.
func NewClient(baseURL, tokenURL, clientID, clientSecret string) *Client {
	if baseURL == "" {
		return &Client{}
	}

	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := cc.Client(context.Background())
	httpClient.Timeout = requestTimeout

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// IsEnabled reports whether the client is configured to make calls
func (c *Client) IsEnabled() bool {
	return c.baseURL != ""
}

// assessmentResponse is the wire shape of the assessment API
type assessmentResponse struct {
	Transcript   string   `json:"transcript"`
	Accuracy     *float64 `json:"accuracyScore"`
	Fluency      *float64 `json:"fluencyScore"`
	Completeness *float64 `json:"completenessScore"`
	Prosody      *float64 `json:"prosodyScore"`
	Overall      *float64 `json:"pronunciationScore"`
	Words        []struct {
		Word      string  `json:"word"`
		Correct   bool    `json:"correct"`
		Accuracy  float64 `json:"accuracyScore"`
		ErrorType string  `json:"errorType"`
		Phonemes  []struct {
			Phoneme string  `json:"phoneme"`
			Score   float64 `json:"accuracyScore"`
		} `json:"phonemes"`
	} `json:"words"`
}

// Assess submits a recording and its reference text for scoring
func (c *Client) Assess(ctx context.Context, referenceText string, audio io.Reader, filename string) (*Result, error) {
	if !c.IsEnabled() {
		return nil, ErrNotConfigured
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("referenceText", referenceText); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/assess", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assessment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for diagnostics
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("assessment service returned %d: %s", resp.StatusCode, snippet)
	}

	var decoded assessmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode assessment response: %w", err)
	}

	return decoded.toResult(), nil
}

func (r *assessmentResponse) toResult() *Result {
	result := &Result{
		Transcript: r.Transcript,
		Scores: models.AxisScores{
			Accuracy:     r.Accuracy,
			Fluency:      r.Fluency,
			Completeness: r.Completeness,
			Prosody:      r.Prosody,
		},
		OverallScore: r.Overall,
	}

	for _, w := range r.Words {
		errorType := models.WordErrorType(w.ErrorType)
		if w.ErrorType == "" {
			errorType = models.WordErrorNone
		}
		wr := models.WordResult{
			Word:      w.Word,
			Correct:   w.Correct,
			Accuracy:  w.Accuracy,
			ErrorType: errorType,
		}
		for _, p := range w.Phonemes {
			wr.Phonemes = append(wr.Phonemes, models.PhonemeResult{
				Phoneme: p.Phoneme,
				Score:   p.Score,
			})
		}
		result.WordResults = append(result.WordResults, wr)
	}

	return result
}
