// Package ebay searches the eBay Browse API and turns item summaries into
// listing records.
package ebay

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	ApiBaseUrl           = "https://api.ebay.com"
	TokenUrl             = "https://api.ebay.com/identity/v1/oauth2/token"
	DefaultMarketplaceID = "EBAY_US"

	apiScope   = "https://api.ebay.com/oauth/api_scope"
	searchPath = "/buy/browse/v1/item_summary/search"

	// PageSize is the number of item summaries requested per result page.
	PageSize = 200
	// SampleSize is the number of item summaries fetched to derive an
	// automatic price range.
	SampleSize = 100

	defaultRequestsPerSecond = 5
	defaultTimeout           = 30 * time.Second
)

type ClientOpts struct {
	BaseURL       string
	TokenURL      string
	ClientID      string
	ClientSecret  string
	MarketplaceID string
	// RequestsPerSecond caps outgoing search calls. Zero uses the default.
	RequestsPerSecond float64
	Timeout           time.Duration
}

type Client struct {
	httpClient    *resty.Client
	limiter       *rate.Limiter
	marketplaceID string
}

// NewClient creates a Browse API client. Application tokens are fetched with
// the client credentials grant and refreshed when they expire.
func NewClient(opts ClientOpts) *Client {
	baseURL := ApiBaseUrl
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	tokenURL := TokenUrl
	if opts.TokenURL != "" {
		tokenURL = opts.TokenURL
	}
	marketplaceID := DefaultMarketplaceID
	if opts.MarketplaceID != "" {
		marketplaceID = opts.MarketplaceID
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	creds := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{apiScope},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	oauthClient := oauth2.NewClient(tokenCtx, bearerTokenSource{creds.TokenSource(tokenCtx)})
	oauthClient.Timeout = timeout

	c := &Client{
		limiter:       rate.NewLimiter(rate.Limit(rps), 1),
		marketplaceID: marketplaceID,
	}
	c.httpClient = resty.NewWithClient(oauthClient).
		SetDebug(false).
		SetBaseURL(baseURL).
		SetHeaders(map[string]string{
			"Accept":                  "application/json",
			"X-EBAY-C-MARKETPLACE-ID": marketplaceID,
		})

	return c
}

// bearerTokenSource sends eBay application tokens as bearer tokens. The
// token endpoint reports the type "Application Access Token", which the
// Browse API does not accept in the Authorization header.
type bearerTokenSource struct {
	src oauth2.TokenSource
}

func (s bearerTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	t := *tok
	t.TokenType = "Bearer"
	return &t, nil
}

// SearchParams are the parameters of one item summary search.
type SearchParams struct {
	Query       string
	CategoryID  string
	ConditionID string
	MinPrice    *float64
	MaxPrice    *float64
	// Page starts at 1.
	Page int
	// Limit is the page size. Zero uses PageSize.
	Limit int
}

var conditionFilters = map[string]string{
	"new":  "conditionIds:{1000|1500}",
	"used": "conditionIds:{2750|2990|3000|4000|5000|6000}",
}

func formatBound(v *float64, fallback string) string {
	if v == nil {
		return fallback
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func (p SearchParams) values() map[string]string {
	filters := []string{
		fmt.Sprintf("price:[%s..%s]", formatBound(p.MinPrice, "0"), formatBound(p.MaxPrice, "")),
		"priceCurrency:USD",
	}
	if f, ok := conditionFilters[p.ConditionID]; ok {
		filters = append(filters, f)
	}

	limit := p.Limit
	if limit <= 0 {
		limit = PageSize
	}
	page := max(p.Page, 1)

	values := map[string]string{
		"q":            p.Query,
		"filter":       strings.Join(filters, ","),
		"auto_correct": "KEYWORD",
		"limit":        strconv.Itoa(limit),
		"offset":       strconv.Itoa(PageSize * (page - 1)),
	}
	if p.CategoryID != "" {
		values["category_ids"] = p.CategoryID
	}
	return values
}

// SearchResponse is one page of item summaries.
type SearchResponse struct {
	Total         int           `json:"total"`
	Limit         int           `json:"limit"`
	Offset        int           `json:"offset"`
	ItemSummaries []ItemSummary `json:"itemSummaries"`
}

type apiErrorBody struct {
	Errors []struct {
		ErrorID  int    `json:"errorId"`
		Message  string `json:"message"`
		LongMsg  string `json:"longMessage"`
		Category string `json:"category"`
	} `json:"errors"`
}

// APIError is a non-2xx response from the Browse API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ebay search failed (status: %d)", e.StatusCode)
	}
	return fmt.Sprintf("ebay search failed (status: %d): %s", e.StatusCode, e.Message)
}

// Search fetches one page of item summaries.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result := &SearchResponse{}
	errBody := &apiErrorBody{}
	res, err := c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetQueryParams(params.values()).
		SetResult(result).
		SetError(errBody).
		Get(searchPath)
	if err != nil {
		return nil, fmt.Errorf("ebay search request failed: %w", err)
	}
	if res.IsError() {
		apiErr := &APIError{StatusCode: res.StatusCode()}
		if len(errBody.Errors) > 0 {
			apiErr.Message = errBody.Errors[0].Message
		}
		return nil, apiErr
	}

	return result, nil
}

// ValidateCredentials requests an application token with the given keys and
// reports whether eBay accepted them.
func ValidateCredentials(ctx context.Context, opts ClientOpts) error {
	tokenURL := TokenUrl
	if opts.TokenURL != "" {
		tokenURL = opts.TokenURL
	}
	creds := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{apiScope},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	if _, err := creds.Token(ctx); err != nil {
		return fmt.Errorf("failed to fetch application token: %w", err)
	}
	return nil
}
