package restyutil

import (
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// DumpExchanges registers hooks that render every completed exchange
// into the output, numbered in completion order. a nil output is a
// no-op. tracing stays out of here, the telemetry middleware owns it.
func DumpExchanges(client *resty.Client, output Output) {
	if output == nil {
		return
	}

	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := strconv.FormatUint(atomic.AddUint64(&counter, 1), 10)
		output.Write(id, FormatExchange(res))
		slog.DebugContext(
			res.Request.Context(), "dumped http exchange",
			"id", id,
			"method", res.Request.Method,
			"url", res.Request.URL,
		)
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		slog.ErrorContext(
			req.Context(), "request failed",
			"method", req.Method,
			"url", req.URL,
			"err", err,
		)
	})
}
