package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultCheckURL is the public LanguageTool check endpoint.
const DefaultCheckURL = "https://api.languagetoolplus.com/v2/check"

// Penalty per flagged issue, by issue type.
const (
	penaltyGrammar       = 15
	penaltyAgreement     = 12
	penaltyTypographical = 5
	penaltyOther         = 10
)

// LanguageToolScorer grades sentences against a LanguageTool-compatible
// check endpoint. A perfect sentence scores MaxScore; each flagged issue
// subtracts a penalty by issue type, floored at MinScore.
type LanguageToolScorer struct {
	checkURL string
	language string
	client   *http.Client
	logger   *slog.Logger
}

// NewLanguageToolScorer creates a scorer against the given endpoint. Every
// request is bounded by the given timeout.
func NewLanguageToolScorer(checkURL, language string, timeout time.Duration, logger *slog.Logger) *LanguageToolScorer {
	return &LanguageToolScorer{
		checkURL: checkURL,
		language: language,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// checkResponse is the subset of the LanguageTool response we read.
type checkResponse struct {
	Matches []struct {
		Rule struct {
			IssueType string `json:"issueType"`
		} `json:"rule"`
	} `json:"matches"`
}

// Score implements Scorer.
func (s *LanguageToolScorer) Score(ctx context.Context, sentence string) (int, error) {
	form := url.Values{}
	form.Set("text", sentence)
	form.Set("language", s.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.checkURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("building check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("grammar check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("grammar check returned status %d", resp.StatusCode)
	}

	var result checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decoding check response: %w", err)
	}

	score := scoreFromMatches(result)
	s.logger.Debug("sentence scored", "score", score, "issues", len(result.Matches))

	return score, nil
}

// scoreFromMatches applies the penalty model. Only a sentence with no
// flagged issues scores MaxScore.
func scoreFromMatches(result checkResponse) int {
	if len(result.Matches) == 0 {
		return MaxScore
	}

	penalty := 0
	for _, match := range result.Matches {
		switch match.Rule.IssueType {
		case "grammar":
			penalty += penaltyGrammar
		case "agreement":
			penalty += penaltyAgreement
		case "typographical":
			penalty += penaltyTypographical
		default:
			penalty += penaltyOther
		}
	}

	score := MaxScore - penalty
	if score < MinScore {
		return MinScore
	}
	return score
}
