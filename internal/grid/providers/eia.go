package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/gridwatch/internal/grid"
)

// DefaultEIABaseURL is the hourly region-data route of the EIA v2 API.
const DefaultEIABaseURL = "https://api.eia.gov/v2/electricity/rto/region-data/data/"

// EIAConfig holds the fixed fetch parameters.
type EIAConfig struct {
	BaseURL    string
	APIKey     string
	Respondent string
	PageLength int
}

// EIAProvider implements the grid.Provider interface for the EIA statistics API.
type EIAProvider struct {
	name    string
	cfg     EIAConfig
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewEIAProvider(client *http.Client, cfg EIAConfig, logger *zap.Logger) *EIAProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultEIABaseURL
	}
	if cfg.PageLength <= 0 {
		cfg.PageLength = 24
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         "eia",
		MaxRequests:  1,
		Interval:     5 * time.Minute,
		Timeout:      2 * time.Minute,
		IsSuccessful: func(err error) bool {
			return !countsAsFailure(err)
		},
	})

	return &EIAProvider{
		name:    "eia",
		cfg:     cfg,
		httpCfg: HTTPClientConfig{Client: client},
		circuit: cb,
		logger:  logger.Named("eia"),
	}
}

func (p *EIAProvider) Name() string {
	return p.name
}

func (p *EIAProvider) Respondent() string {
	return p.cfg.Respondent
}

// Fetch pulls the newest page of hourly readings for the configured respondent.
func (p *EIAProvider) Fetch(ctx context.Context) (grid.FetchResult, error) {
	if p.cfg.APIKey == "" {
		return grid.FetchResult{}, grid.ErrMissingAPIKey
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("api_key", p.cfg.APIKey)
		values.Set("frequency", "hourly")
		values.Set("data[0]", "value")
		values.Set("facets[respondent][]", p.cfg.Respondent)
		values.Set("sort[0][column]", "period")
		values.Set("sort[0][direction]", "desc")
		values.Set("offset", "0")
		values.Set("length", strconv.Itoa(p.cfg.PageLength))

		u := fmt.Sprintf("%s?%s", p.cfg.BaseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	body, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return grid.FetchResult{}, err
	}

	result, problems := grid.ParseResponse(body)
	for _, problem := range problems {
		p.logger.Warn("skipping upstream data", zap.Error(problem))
	}
	return result, nil
}
