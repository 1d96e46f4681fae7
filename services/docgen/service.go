package docgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unidocs-backend/lib/artifactstore"
	"unidocs-backend/lib/bundle"
	"unidocs-backend/lib/jslink"
	"unidocs-backend/lib/locale"
	"unidocs-backend/lib/restyutil"
	"unidocs-backend/lib/scripthost"
	"unidocs-backend/lib/textutil"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/docgen")

type Options struct {
	// base url of the third-party spa whose bundles get mined
	PortalUrl string
	// base url of the institution backend api
	ApiUrl      string
	AccessToken string
	// language the upstream documents are natively written in,
	// defaults to "ru"
	NativeLanguage string
	// document-layout library source preloaded into every execution
	// host. treated as a black box.
	LayoutLibrary string
	// directory generated pdfs are persisted to before upload; empty
	// disables persistence
	OutputDir string
	// directory upstream http exchanges are dumped to; empty disables
	// dumping
	DebugHttpDir string
	// clock injected into the execution host, defaults to time.Now
	Now func() time.Time
}

// Service owns the whole generation pipeline. extraction artifacts
// and dictionaries are memoized in-process (and in the artifact
// store) with populate-once semantics: a concurrent late caller may
// redundantly repopulate, which is acceptable.
type Service struct {
	opts     Options
	bundles  *bundle.Client
	linker   *jslink.Linker
	locales  *locale.Client
	delivery *DeliveryClient
	store    artifactstore.Store

	artifacts *expirable.LRU[string, *Artifact]

	dictMu sync.Mutex
	dicts  map[string]locale.Dictionary
}

func NewService(opts Options, store artifactstore.Store) (*Service, error) {
	if opts.NativeLanguage == "" {
		opts.NativeLanguage = "ru"
	}

	var debugOutput restyutil.Output
	if opts.DebugHttpDir != "" {
		debugOutput = restyutil.NewFilesystemOutput(opts.DebugHttpDir)
	}
	bundles, err := bundle.NewClient(bundle.ClientOptions{
		BaseUrl:     opts.PortalUrl,
		DebugOutput: debugOutput,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		opts:      opts,
		bundles:   bundles,
		linker:    jslink.NewLinker(bundles),
		locales:   locale.NewClient(opts.ApiUrl),
		delivery:  NewDeliveryClient(opts.ApiUrl, opts.AccessToken),
		store:     store,
		artifacts: expirable.NewLRU[string, *Artifact](16, nil, time.Hour),
		dicts:     map[string]locale.Dictionary{},
	}, nil
}

func (s *Service) Delivery() *DeliveryClient {
	return s.delivery
}

// LoadArtifact returns the assembled script (plus extracted statics) for
// a document type, reusing the in-memory cache, then the on-disk
// store, then rebuilding from the live upstream.
func (s *Service) LoadArtifact(ctx context.Context, docType DocumentType, language string) (*Artifact, error) {
	key := fmt.Sprintf("%s:%s", docType, language)

	if cached, hit := s.artifacts.Get(key); hit {
		return cached, nil
	}

	stored, hit, err := s.store.Get(ctx, artifactstore.KindAssembledScript, key)
	if err != nil {
		slog.WarnContext(ctx, "artifact store read failed", "err", err)
	}
	if hit {
		var art Artifact
		err = json.Unmarshal([]byte(stored), &art)
		if err == nil {
			s.artifacts.Add(key, &art)
			return &art, nil
		}
		slog.WarnContext(ctx, "stored artifact is corrupt, rebuilding", "key", key, "err", err)
	}

	art, err := s.buildArtifact(ctx, docType)
	if err != nil {
		return nil, err
	}

	s.artifacts.Add(key, art)
	encoded, err := json.Marshal(art)
	if err == nil {
		err = s.store.Put(ctx, artifactstore.KindAssembledScript, key, string(encoded))
	}
	if err != nil {
		slog.WarnContext(ctx, "artifact store write failed", "err", err)
	}
	return art, nil
}

func (s *Service) dictionary(ctx context.Context, language string) (locale.Dictionary, error) {
	if language == s.opts.NativeLanguage {
		return nil, nil
	}

	s.dictMu.Lock()
	cached, hit := s.dicts[language]
	s.dictMu.Unlock()
	if hit {
		return cached, nil
	}

	stored, hit, err := s.store.Get(ctx, artifactstore.KindDictionary, language)
	if err == nil && hit {
		var dict locale.Dictionary
		err = json.Unmarshal([]byte(stored), &dict)
		if err == nil {
			s.dictMu.Lock()
			s.dicts[language] = dict
			s.dictMu.Unlock()
			return dict, nil
		}
	}

	dict, err := s.locales.FetchDictionary(ctx, language)
	if err != nil {
		return nil, err
	}

	s.dictMu.Lock()
	s.dicts[language] = dict
	s.dictMu.Unlock()

	encoded, err := json.Marshal(dict)
	if err == nil {
		err = s.store.Put(ctx, artifactstore.KindDictionary, language, string(encoded))
	}
	if err != nil {
		slog.WarnContext(ctx, "dictionary store write failed", "err", err)
	}
	return dict, nil
}

// Generate runs one full generation attempt and returns the produced
// pdf. errors are terminal for the attempt, nothing is retried here.
func (s *Service) Generate(ctx context.Context, req GenerationRequest) (GeneratedDocument, error) {
	ctx, span := tracer.Start(ctx, "Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("document_type", string(req.Type)),
		attribute.String("language", req.Language),
	)

	art, err := s.LoadArtifact(ctx, req.Type, req.Language)
	if err != nil {
		return GeneratedDocument{}, err
	}

	dict, err := s.dictionary(ctx, req.Language)
	if err != nil {
		return GeneratedDocument{}, err
	}

	payload := s.buildPayload(req, art, dict)
	stats := ComputeStats(req.Rows)

	driver, err := buildDriverScript(payload, stats, req.QrUrl)
	if err != nil {
		return GeneratedDocument{}, err
	}

	host := scripthost.New(scripthost.Options{
		LayoutLibrary: s.opts.LayoutLibrary,
		Cookies:       s.bundles.Cookies(),
		Now:           s.opts.Now,
	})
	pdf, err := host.Run(ctx, art.Script, driver)
	if err != nil {
		return GeneratedDocument{}, err
	}

	suffix, err := random.String(8)
	if err != nil {
		return GeneratedDocument{}, err
	}
	doc := GeneratedDocument{
		Bytes:    pdf,
		Filename: fmt.Sprintf("%s_%s_%s.pdf", req.Type, textutil.NormalizeToken(req.StudentId), suffix),
	}

	if s.opts.OutputDir != "" {
		err = os.MkdirAll(s.opts.OutputDir, 0755)
		if err != nil {
			return GeneratedDocument{}, err
		}
		doc.Path = filepath.Join(s.opts.OutputDir, doc.Filename)
		err = os.WriteFile(doc.Path, pdf, 0644)
		if err != nil {
			return GeneratedDocument{}, err
		}
	}

	span.SetAttributes(attribute.Int("pdf_bytes", len(pdf)))
	return doc, nil
}

// buildPayload prepares the json object handed to the recovered
// document-definition builder, translating locale-sensitive fields
// when the target language differs from the document's native one.
func (s *Service) buildPayload(req GenerationRequest, art *Artifact, dict locale.Dictionary) map[string]any {
	student := map[string]any{}
	for k, v := range req.StudentInfo {
		student[k] = v
	}
	if dict != nil {
		student = dict.TranslateValues(student).(map[string]any)
	}

	rows := make([]map[string]any, len(req.Rows))
	for i, row := range req.Rows {
		subject := row.Subject
		control := row.ControlType
		label := fmt.Sprintf("%d-й семестр", row.Semester)
		if dict != nil {
			subject = dict.Translate(subject)
			control = dict.Translate(control)
			label = dict.TranslateLabel(label)
		}
		rows[i] = map[string]any{
			"semester":       row.Semester,
			"semester_label": label,
			"subject":        subject,
			"control_type":   control,
			"credits":        row.Credits,
			"grade":          row.Grade,
		}
	}

	payload := map[string]any{
		"student":  student,
		"rows":     rows,
		"language": req.Language,
		"link_id":  req.LinkId,
		"stamp":    art.StampImage,
	}
	if dict != nil {
		payload["dictionary"] = dict
	}
	return payload
}

// Deliver uploads a generated document against a previously issued
// link and resolves the final shareable url.
func (s *Service) Deliver(ctx context.Context, doc GeneratedDocument, link DocumentLink, studentId string) (string, error) {
	ctx, span := tracer.Start(ctx, "Deliver")
	defer span.End()

	err := s.delivery.Upload(ctx, doc.Bytes, doc.Filename, link.Id, studentId)
	if err != nil {
		return "", err
	}
	url, err := s.delivery.Resolve(ctx, link.Key)
	if err != nil {
		return "", err
	}

	// the durable copy served its purpose once the upload stuck
	if doc.Path != "" {
		err = os.Remove(doc.Path)
		if err != nil {
			slog.WarnContext(ctx, "failed to remove local document copy", "path", doc.Path, "err", err)
		}
	}
	return url, nil
}
