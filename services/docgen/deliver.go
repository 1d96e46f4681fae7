package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unidocs-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

// DocumentLink is the backend-issued identity of one shareable
// document slot.
type DocumentLink struct {
	Key string `json:"key"`
	Id  string `json:"id"`
	Url string `json:"url"`
}

// DeliveryClient talks to the institution backend: link issuance,
// multipart upload of the produced pdf and link resolution. no
// retries, the caller re-runs the whole pipeline on failure.
type DeliveryClient struct {
	http *resty.Client
}

func NewDeliveryClient(baseUrl, accessToken string) *DeliveryClient {
	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 30)
	if accessToken != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	}

	telemetry.InstrumentResty(client, "services/docgen/delivery")

	return &DeliveryClient{http: client}
}

func (c *DeliveryClient) IssueLink(ctx context.Context, studentId string) (DocumentLink, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(map[string]string{"id": studentId}).
		Post("/document-link")
	if err != nil {
		return DocumentLink{}, err
	}
	if res.StatusCode() != 200 {
		return DocumentLink{}, fmt.Errorf("issue document link: status %d", res.StatusCode())
	}

	var link DocumentLink
	err = json.Unmarshal(res.Body(), &link)
	if err != nil {
		return DocumentLink{}, err
	}
	return link, nil
}

// Trigger tells the backend a generation started for the link. the
// acknowledgement body is ignored.
func (c *DeliveryClient) Trigger(ctx context.Context, linkId string) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(map[string]string{"id": linkId}).
		Post("/document-generate")
	if err != nil {
		return err
	}
	if res.StatusCode() != 200 {
		return fmt.Errorf("trigger generation: status %d", res.StatusCode())
	}
	return nil
}

func (c *DeliveryClient) Upload(ctx context.Context, pdf []byte, filename, linkId, studentId string) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(pdf)).
		SetFormData(map[string]string{
			"id":         linkId,
			"id_student": studentId,
		}).
		Post("/document-upload")
	if err != nil {
		return &UploadError{Err: err}
	}
	if res.StatusCode() != 200 {
		return &UploadError{Err: fmt.Errorf("status %d", res.StatusCode())}
	}
	return nil
}

func (c *DeliveryClient) Resolve(ctx context.Context, key string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", key).
		Get("/document-link/resolve")
	if err != nil {
		return "", &ResolveError{Err: err}
	}
	if res.StatusCode() != 200 {
		return "", &ResolveError{Err: fmt.Errorf("status %d", res.StatusCode())}
	}

	var resolved struct {
		Url string `json:"url"`
	}
	err = json.Unmarshal(res.Body(), &resolved)
	if err != nil {
		return "", &ResolveError{Err: err}
	}
	return resolved.Url, nil
}
