package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

var (
	ErrOutOfStock  = errors.New("supplier has no numbers for this product and region")
	ErrNoFunds     = errors.New("supplier account has no funds")
	ErrUnavailable = errors.New("supplier has no price for this product and region")
)

// UnexpectedResponseError is any purchase answer that is neither a number nor
// a known refusal.
type UnexpectedResponseError struct {
	Body string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected supplier response: %q", e.Body)
}

type Activation struct {
	ID    string
	Phone string
}

type StatusKind int

const (
	Waiting StatusKind = iota
	CodeReceived
	SupplierCancelled
)

type Status struct {
	Kind StatusKind
	Code string
}

type CancelOutcome int

const (
	CancelUnknown CancelOutcome = iota
	CancelConfirmed
	CancelDeniedTooEarly
)

type CancelResult struct {
	Outcome CancelOutcome
	Raw     string
}

type SupplierClientI interface {
	Purchase(ctx context.Context, service, country string) (*Activation, error)
	Quote(ctx context.Context, service, country string) (decimal.Decimal, error)
	PollStatus(ctx context.Context, activationID string) (Status, error)
	RequestAnotherCode(ctx context.Context, activationID string) error
	Finalize(ctx context.Context, activationID string) error
	Cancel(ctx context.Context, activationID string) (CancelResult, error)
}

// Client talks to an sms-activate compatible handler API. It never retries.
type Client struct {
	httpClient *http.Client
	address    string
	apiKey     string
}

func NewClient(address, apiKey string) *Client {
	return &Client{address: address, apiKey: apiKey, httpClient: &http.Client{Timeout: requestTimeout}}
}

func (client *Client) Purchase(ctx context.Context, service, country string) (*Activation, error) {
	body, err := client.call(ctx, "getNumber", url.Values{"service": {service}, "country": {country}})
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(body, "ACCESS_NUMBER"):
		parts := strings.Split(body, ":")
		if len(parts) < 3 || parts[1] == "" || parts[2] == "" {
			return nil, &UnexpectedResponseError{Body: body}
		}
		return &Activation{ID: parts[1], Phone: parts[2]}, nil
	case strings.Contains(body, "NO_NUMBERS"):
		return nil, ErrOutOfStock
	case strings.Contains(body, "NO_BALANCE"):
		return nil, ErrNoFunds
	default:
		return nil, &UnexpectedResponseError{Body: body}
	}
}

type priceEntry struct {
	Cost  decimal.Decimal `json:"cost"`
	Count json.Number     `json:"count"`
}

// Quote returns the current supplier cost. A missing entry is ErrUnavailable,
// never a zero cost.
func (client *Client) Quote(ctx context.Context, service, country string) (decimal.Decimal, error) {
	params := url.Values{"service": {service}, "country": {country}, "freePrice": {"0"}}
	body, err := client.call(ctx, "getPrices", params)
	if err != nil {
		return decimal.Zero, err
	}

	var prices map[string]map[string]priceEntry
	if err = json.Unmarshal([]byte(body), &prices); err != nil {
		logger.Log.Warn("supplier prices are not JSON", zap.String("body", body), zap.Error(err))
		return decimal.Zero, ErrUnavailable
	}

	entry, ok := prices[country][service]
	if !ok {
		return decimal.Zero, ErrUnavailable
	}
	return entry.Cost, nil
}

func (client *Client) PollStatus(ctx context.Context, activationID string) (Status, error) {
	body, err := client.call(ctx, "getStatus", url.Values{"id": {activationID}})
	if err != nil {
		return Status{Kind: Waiting}, err
	}

	switch {
	case strings.HasPrefix(body, "STATUS_OK:"):
		return Status{Kind: CodeReceived, Code: strings.TrimPrefix(body, "STATUS_OK:")}, nil
	case strings.Contains(body, "STATUS_CANCEL"):
		return Status{Kind: SupplierCancelled}, nil
	default:
		return Status{Kind: Waiting}, nil
	}
}

func (client *Client) RequestAnotherCode(ctx context.Context, activationID string) error {
	_, err := client.setStatus(ctx, activationID, "3")
	return err
}

func (client *Client) Finalize(ctx context.Context, activationID string) error {
	_, err := client.setStatus(ctx, activationID, "6")
	return err
}

// Cancel asks the supplier to drop the activation. An unknown answer is
// returned as CancelUnknown with the raw body, not as an error.
func (client *Client) Cancel(ctx context.Context, activationID string) (CancelResult, error) {
	body, err := client.setStatus(ctx, activationID, "8")
	if err != nil {
		return CancelResult{Outcome: CancelUnknown}, err
	}

	switch {
	case strings.Contains(body, "ACCESS_CANCEL"), strings.Contains(body, "ACCESS_ACTIVATION_CANCELED"):
		return CancelResult{Outcome: CancelConfirmed, Raw: body}, nil
	case strings.Contains(body, "EARLY_CANCEL_DENIED"):
		return CancelResult{Outcome: CancelDeniedTooEarly, Raw: body}, nil
	default:
		return CancelResult{Outcome: CancelUnknown, Raw: body}, nil
	}
}

func (client *Client) setStatus(ctx context.Context, activationID, status string) (string, error) {
	return client.call(ctx, "setStatus", url.Values{"id": {activationID}, "status": {status}})
}

func (client *Client) call(ctx context.Context, action string, params url.Values) (string, error) {
	params.Set("api_key", client.apiKey)
	params.Set("action", action)
	address := client.address + "?" + params.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return "", err
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("supplier %s failed: %w", action, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logger.Log.Warn("error closing response body", zap.Error(err))
		}
	}()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("supplier %s answered with status code %d", action, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		logger.Log.Error("Error reading response body", zap.Error(err))
		return "", err
	}

	text := strings.TrimSpace(string(body))
	logger.Log.Debug("supplier answer", zap.String("action", action), zap.String("body", text))
	return text, nil
}
