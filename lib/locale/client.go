package locale

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unidocs-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("lib/locale")

// Client fetches per-language phrase dictionaries off the backend.
type Client struct {
	http *resty.Client
}

func NewClient(baseUrl string) *Client {
	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "lib/locale/http")

	return &Client{http: client}
}

func (c *Client) FetchDictionary(ctx context.Context, language string) (Dictionary, error) {
	ctx, span := tracer.Start(ctx, "FetchDictionary")
	defer span.End()
	span.SetAttributes(attribute.String("language", language))

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("lang", language).
		Get("/dictionary")
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch dictionary: status %d", res.StatusCode())
	}

	var dict Dictionary
	err = json.Unmarshal(res.Body(), &dict)
	if err != nil {
		return nil, err
	}
	return dict, nil
}
