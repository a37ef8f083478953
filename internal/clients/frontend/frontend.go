package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

var ErrUnknownRequester = errors.New("requester is unknown to the front-end")

type Requester struct {
	AccountID int64  `json:"id"`
	Name      string `json:"name"`
}

type MessageKind string

const (
	OrderCreated     MessageKind = "order_created"
	CodeDelivered    MessageKind = "code_delivered"
	OrderFinished    MessageKind = "order_finished"
	OrderRefunded    MessageKind = "order_refunded"
	OrderReplaced    MessageKind = "order_replaced"
	PackStepStarted  MessageKind = "pack_step"
	PackFailed       MessageKind = "pack_failed"
	SalesReport      MessageKind = "sales_report"
	NotificationInfo MessageKind = "info"
)

// Message is what the front-end renders to a requester. Actions lists the
// buttons the requester may press for the order.
type Message struct {
	Kind    MessageKind `json:"kind"`
	OrderID string      `json:"order_id,omitempty"`
	Text    string      `json:"text"`
	Code    string      `json:"code,omitempty"`
	Actions []string    `json:"actions"`
}

type FrontendClientI interface {
	Resolve(ctx context.Context, accountID int64) (*Requester, error)
	Notify(ctx context.Context, accountID int64, message Message) error
}

type Client struct {
	httpClient *http.Client
	address    string
	token      string
}

func NewClient(address, token string) *Client {
	return &Client{address: address, token: token, httpClient: &http.Client{Timeout: requestTimeout}}
}

// Resolve checks that the requester can still be reached.
func (client *Client) Resolve(ctx context.Context, accountID int64) (*Requester, error) {
	url := fmt.Sprintf("%s/users/%d", client.address, accountID)

	response, err := client.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer closeBody(response)

	if response.StatusCode == http.StatusNotFound {
		return nil, ErrUnknownRequester
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolve requester %d: status code %d", accountID, response.StatusCode)
	}

	var requester Requester
	if err = json.NewDecoder(response.Body).Decode(&requester); err != nil {
		return nil, fmt.Errorf("resolve requester %d: %w", accountID, err)
	}
	if requester.AccountID == 0 {
		requester.AccountID = accountID
	}
	return &requester, nil
}

func (client *Client) Notify(ctx context.Context, accountID int64, message Message) error {
	url := fmt.Sprintf("%s/users/%d/messages", client.address, accountID)
	if message.Actions == nil {
		message.Actions = []string{}
	}

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	response, err := client.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	defer closeBody(response)

	if response.StatusCode == http.StatusNotFound {
		return ErrUnknownRequester
	}
	if response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notify requester %d: status code %d", accountID, response.StatusCode)
	}
	return nil
}

func (client *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if client.token != "" {
		request.Header.Set("Authorization", "Bearer "+client.token)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("front-end request %s %s failed: %w", method, url, err)
	}
	return response, nil
}

func closeBody(response *http.Response) {
	if err := response.Body.Close(); err != nil {
		logger.Log.Warn("error closing response body", zap.Error(err))
	}
}
