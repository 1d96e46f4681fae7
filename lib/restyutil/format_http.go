package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
)

func writeHeaders(b *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(b, "%s: %s\n", k, v)
		}
	}
}

func requestBody(req *http.Request) string {
	if req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("<failed to get request body: %s>", err)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("<failed to read request body: %s>", err)
	}
	return string(raw)
}

// FormatExchange renders one completed request/response pair as a
// plain-text transcript, for dumping upstream traffic while chasing a
// fingerprint mismatch.
func FormatExchange(res *resty.Response) string {
	var b strings.Builder

	fmt.Fprintf(&b, "---- REQUEST ----\n\n%s %s\n\n", res.Request.Method, res.Request.URL)
	writeHeaders(&b, res.Request.RawRequest.Header)
	b.WriteString("\n")
	b.WriteString(requestBody(res.Request.RawRequest))
	b.WriteString("\n")

	responseUrl := res.Request.URL
	if redirected, err := res.RawResponse.Location(); err == nil {
		responseUrl = redirected.String()
	}
	fmt.Fprintf(&b, "\n---- RESPONSE ----\n\n%d %s\n\n", res.StatusCode(), responseUrl)
	writeHeaders(&b, res.Header())
	b.WriteString("\n")
	b.WriteString(res.String())

	return b.String()
}
