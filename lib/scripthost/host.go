package scripthost

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"unidocs-backend/lib/timezone"

	"github.com/dop251/goja"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/scripthost")

// DateHelperName is the date-formatting helper the host injects into
// every runtime. the stub generator must never shadow it.
const DateHelperName = "formatDate"

// ExecutionError means the executed script reported an error through
// the bridge or threw. terminal for the generation attempt.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("script execution: %s", e.Message)
}

// SerializationError means the layout library produced output the
// bridge could not decode into bytes.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("document serialization: %s", e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

type Options struct {
	// layout library source, executed before anything else. treated
	// as a black box consuming a document definition and producing
	// binary output.
	LayoutLibrary string
	// session cookies seeded into the runtime's document.cookie shim
	Cookies []*http.Cookie
	// clock for the injected date helper, defaults to time.Now.
	// fixing it makes the produced document reproducible.
	Now func() time.Time
}

// Host is a single-use isolated script runtime. one instance per
// generation call, never shared: the engine's global scope would
// otherwise leak state between unrelated requests.
type Host struct {
	opts Options

	mu   sync.Mutex
	used bool
}

func New(opts Options) *Host {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Host{opts: opts}
}

type outcome struct {
	payload []byte
	err     error
}

// Run executes the given scripts in order inside a fresh runtime and
// suspends until the bridge resolves, the scripts finish without
// resolving, or ctx is done. the bridge resolves at most once: a late
// callback after cancellation or after a prior callback is ignored.
func (h *Host) Run(ctx context.Context, scripts ...string) ([]byte, error) {
	h.mu.Lock()
	if h.used {
		h.mu.Unlock()
		return nil, fmt.Errorf("script host is single-use")
	}
	h.used = true
	h.mu.Unlock()

	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	vm := goja.New()

	results := make(chan outcome, 1)
	var once sync.Once
	resolve := func(o outcome) {
		once.Do(func() { results <- o })
	}

	err := h.setupRuntime(ctx, vm, resolve)
	if err != nil {
		return nil, err
	}

	go func() {
		if h.opts.LayoutLibrary != "" {
			_, err := vm.RunString(h.opts.LayoutLibrary)
			if err != nil {
				resolve(outcome{err: &ExecutionError{Message: fmt.Sprintf("layout library: %s", err)}})
				return
			}
		}
		for _, src := range scripts {
			_, err := vm.RunString(src)
			if err != nil {
				if _, interrupted := err.(*goja.InterruptedError); interrupted {
					resolve(outcome{err: ctx.Err()})
					return
				}
				resolve(outcome{err: &ExecutionError{Message: err.Error()}})
				return
			}
		}
		resolve(outcome{err: &ExecutionError{
			Message: "script completed without invoking the bridge",
		}})
	}()

	select {
	case o := <-results:
		if o.err != nil {
			span.RecordError(o.err)
			span.SetStatus(codes.Error, "script run failed")
			return nil, o.err
		}
		span.SetAttributes(attribute.Int("payload_bytes", len(o.payload)))
		return o.payload, nil
	case <-ctx.Done():
		vm.Interrupt("canceled")
		return nil, ctx.Err()
	}
}

func (h *Host) setupRuntime(ctx context.Context, vm *goja.Runtime, resolve func(outcome)) error {
	global := vm.GlobalObject()
	err := vm.Set("window", global)
	if err != nil {
		return err
	}
	err = vm.Set("self", global)
	if err != nil {
		return err
	}
	err = vm.Set("globalThis", global)
	if err != nil {
		return err
	}

	// residual upstream logic may consult ambient session state, so
	// the document shim carries the real session cookies
	document := vm.NewObject()
	err = document.Set("cookie", cookieHeader(h.opts.Cookies))
	if err != nil {
		return err
	}
	err = vm.Set("document", document)
	if err != nil {
		return err
	}

	// the layout library schedules work with setTimeout, run it inline
	err = vm.Set("setTimeout", func(fn goja.Callable, _ ...goja.Value) {
		_, err := fn(goja.Undefined())
		if err != nil {
			resolve(outcome{err: &ExecutionError{Message: err.Error()}})
		}
	})
	if err != nil {
		return err
	}

	err = vm.Set(DateHelperName, func() string {
		return h.opts.Now().In(timezone.Location).Format("02.01.2006")
	})
	if err != nil {
		return err
	}

	// goja has no web apis, the layout library expects these two
	err = vm.Set("btoa", func(s string) string {
		return base64.StdEncoding.EncodeToString([]byte(s))
	})
	if err != nil {
		return err
	}
	err = vm.Set("atob", func(s string) (string, error) {
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	})
	if err != nil {
		return err
	}

	bridge := vm.NewObject()
	err = bridge.Set("returnSuccess", func(payload string) {
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			resolve(outcome{err: &SerializationError{Err: err}})
			return
		}
		resolve(outcome{payload: raw})
	})
	if err != nil {
		return err
	}
	err = bridge.Set("returnError", func(message string) {
		resolve(outcome{err: &ExecutionError{Message: message}})
	})
	if err != nil {
		return err
	}
	// diagnostics only, never alters control flow
	err = bridge.Set("log", func(message string) {
		slog.DebugContext(ctx, "script log", "message", message)
	})
	if err != nil {
		return err
	}
	return vm.Set("host", bridge)
}

func cookieHeader(cookies []*http.Cookie) string {
	pairs := make([]string, len(cookies))
	for i, c := range cookies {
		pairs[i] = c.Name + "=" + c.Value
	}
	return strings.Join(pairs, "; ")
}
