package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/customHttpClient"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

type lookupRequest struct {
	Claim string `json:"claim"`
}

// httpLookup talks to the external fact-check service. Every failure mode
// maps onto ErrVerificationUnavailable so the verifier degrades instead of
// failing the query.
type httpLookup struct {
	client  *http.Client
	baseURL string
	logger  *logger_i.Logger
}

func GetHTTPLookup() Lookup {
	baseURL := os.Getenv("FACT_LOOKUP_URL")
	if baseURL == "" {
		baseURL = config.FactLookupURL
	}
	if baseURL == "" {
		return nil
	}
	return &httpLookup{
		client:  customHttpClient.GetPooledClient(),
		baseURL: baseURL,
		logger:  logger_i.NewLogger("fact_lookup"),
	}
}

func (l *httpLookup) Lookup(ctx context.Context, claim string) (policyModel.LookupResult, error) {
	body, err := json.Marshal(lookupRequest{Claim: claim})
	if err != nil {
		return policyModel.LookupResult{}, fmt.Errorf("marshaling lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/lookup", bytes.NewReader(body))
	if err != nil {
		return policyModel.LookupResult{}, fmt.Errorf("building lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Warn("lookup backend unreachable", "error", err)
		return policyModel.LookupResult{}, policyModel.ErrVerificationUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.logger.Warn("lookup backend rejected claim", "status", resp.StatusCode)
		return policyModel.LookupResult{}, policyModel.ErrVerificationUnavailable
	}

	var result policyModel.LookupResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return policyModel.LookupResult{}, policyModel.ErrVerificationUnavailable
	}
	return result, nil
}

// unavailableLookup stands in when no backend is configured; everything it
// touches stays inconclusive.
type unavailableLookup struct{}

func UnavailableLookup() Lookup { return unavailableLookup{} }

func (unavailableLookup) Lookup(ctx context.Context, claim string) (policyModel.LookupResult, error) {
	return policyModel.LookupResult{}, policyModel.ErrVerificationUnavailable
}
