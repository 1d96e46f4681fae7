package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
	"unidocs-backend/lib/htmlutil"
	"unidocs-backend/lib/restyutil"
	"unidocs-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/bundle")

// FetchError wraps any transport failure or non-2xx response while
// pulling an asset. callers decide whether it aborts the pipeline.
type FetchError struct {
	Url        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s", e.Url, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.Url, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client pulls script/text assets off the target site. it carries a
// cookie jar so any session cookies the site sets survive across
// fetches and can later seed the execution host.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	BaseUrl string
	// defaults to a desktop chrome user agent
	UserAgent string
	// when set, every upstream exchange is rendered into it
	DebugOutput restyutil.Output
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "lib/bundle/http")
	restyutil.DumpExchanges(client, opts.DebugOutput)

	return &Client{BaseUrl: baseUrl, Http: client}, nil
}

// Resolve turns a possibly-relative asset path into an absolute url
// against the client's base.
func (c *Client) Resolve(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	return c.BaseUrl.ResolveReference(parsed).String()
}

// FetchText pulls the raw text of an asset. no retries, errors
// propagate immediately.
func (c *Client) FetchText(ctx context.Context, link string) (string, error) {
	ctx, span := tracer.Start(ctx, "FetchText")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return "", &FetchError{Url: link, Err: err}
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		span.SetStatus(codes.Error, "non-2xx status")
		return "", &FetchError{Url: link, StatusCode: res.StatusCode()}
	}
	return string(res.Body()), nil
}

// Cookies reports the session cookies currently held for the target
// site, so the execution host can seed its document.cookie shim.
func (c *Client) Cookies() []*http.Cookie {
	jar := c.Http.GetClient().Jar
	if jar == nil {
		return nil
	}
	return jar.Cookies(c.BaseUrl)
}

// FindBundleScripts fetches the SPA's index page and extracts every
// <script src> asset path. the main bundle's filename carries a build
// hash that rotates per deployment, so discovery has to go through
// the page rather than a fixed url.
func (c *Client) FindBundleScripts(ctx context.Context, pageUrl string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "FindBundleScripts")
	defer span.End()

	page, err := c.FetchText(ctx, pageUrl)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	scripts := htmlutil.ScriptSources(ctx, doc)
	if len(scripts) == 0 {
		// distinguishes "page rendered but script-less" from "not the
		// page we expected" when discovery comes back empty
		slog.WarnContext(
			ctx, "index page served no script tags",
			"url", pageUrl,
			"stylesheets", len(htmlutil.StylesheetSources(ctx, doc)),
		)
	}

	span.SetAttributes(attribute.Int("count", len(scripts)))
	return scripts, nil
}
