package courier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"camwatch/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultBaseUrl = "https://api.courier.com"

var ErrMissingApiKey = errors.New("courier api key is not configured")

// StatusError is any response other than the 202 Accepted that Courier
// answers a queued send with. The body carries Courier's error detail.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("courier returned status %d: %s", e.StatusCode, e.Body)
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	ApiKey  string
}

type Client struct {
	http *resty.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ApiKey == "" {
		return nil, ErrMissingApiKey
	}
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetAuthToken(opts.ApiKey)
	client.SetTimeout(time.Second * 30)
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{http: client}, nil
}

type recipient struct {
	Email string `json:"email"`
}

type content struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type routing struct {
	Method   string   `json:"method"`
	Channels []string `json:"channels"`
}

type message struct {
	To      recipient `json:"to"`
	Content content   `json:"content"`
	Routing routing   `json:"routing"`
}

type sendRequest struct {
	Message message `json:"message"`
}

type sendResponse struct {
	RequestId string `json:"requestId"`
}

// SendEmail queues one transactional email through Courier and returns
// the request id it was queued under.
func (c *Client) SendEmail(ctx context.Context, to, title, bodyHtml string) (string, error) {
	ctx, span := tracer.Start(ctx, "SendEmail", trace.WithAttributes(
		attribute.String("to", to),
	))
	defer span.End()

	var out sendResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{
			Message: message{
				To:      recipient{Email: to},
				Content: content{Title: title, Body: bodyHtml},
				Routing: routing{Method: "single", Channels: []string{"email"}},
			},
		}).
		SetResult(&out).
		Post("/send")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send request failed")
		return "", fmt.Errorf("courier send to %s: %w", to, err)
	}
	if res.StatusCode() != http.StatusAccepted {
		err := StatusError{StatusCode: res.StatusCode(), Body: res.String()}
		span.RecordError(err)
		span.SetStatus(codes.Error, "send not accepted")
		return "", err
	}

	return out.RequestId, nil
}
