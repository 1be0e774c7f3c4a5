package assembly

import (
	"context"
	"log/slog"
	"path"

	"github.com/JaimeStill/courier-sign/internal/compose"
	"github.com/JaimeStill/courier-sign/internal/diagnostics"
	"github.com/JaimeStill/courier-sign/internal/inspect"
	"github.com/JaimeStill/courier-sign/internal/raster"
	"github.com/JaimeStill/courier-sign/internal/requests"
	"github.com/JaimeStill/courier-sign/internal/summary"
	"github.com/JaimeStill/courier-sign/pkg/metrics"
	"github.com/JaimeStill/courier-sign/pkg/storage"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// System defines the artifact operations of a signing request.
type System interface {
	Master(ctx context.Context, token string) (*Artifact, error)
	HTMLPackage(ctx context.Context, token string) (*Artifact, error)
	Summary(ctx context.Context, token string, withAppendix bool) (*Artifact, error)

	// Inspect lists the form fields of the document at ref, or of the configured
	// source document when ref is empty. Only refs on allowed hosts are fetched.
	Inspect(ctx context.Context, ref string) (*Inspection, error)

	// InspectUpload keeps data under inspect/ in the blob store and lists its form fields.
	InspectUpload(ctx context.Context, data []byte) (*Inspection, error)
}

// Finder loads signing requests.
type Finder interface {
	Find(ctx context.Context, token string) (*requests.Request, error)
}

// Source fetches base documents.
type Source interface {
	DefaultURL() string
	Resolve(ref string) (string, error)
	FetchDefault(ctx context.Context) ([]byte, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Assembler builds the HTML package of a request.
type Assembler interface {
	Assemble(ctx context.Context, req *requests.Request, diags *diagnostics.List) ([]byte, error)
}

// Inspection is an inspection result along with where the document came from.
type Inspection struct {
	inspect.Result
	Source string `json:"source"`
}

type system struct {
	requests   Finder
	source     Source
	compositor *compose.Compositor
	pipeline   Assembler
	summaries  *summary.Generator
	storage    storage.System
	logger     *slog.Logger
}

func New(
	finder Finder,
	src Source,
	compositor *compose.Compositor,
	pipeline Assembler,
	summaries *summary.Generator,
	store storage.System,
	logger *slog.Logger,
) System {
	return &system{
		requests:   finder,
		source:     src,
		compositor: compositor,
		pipeline:   pipeline,
		summaries:  summaries,
		storage:    store,
		logger:     logger.With("system", "assembly"),
	}
}

func (s *system) Master(ctx context.Context, token string) (*Artifact, error) {
	req, err := s.requests.Find(ctx, token)
	if err != nil {
		return nil, err
	}

	base, err := s.source.FetchDefault(ctx)
	if err != nil {
		return nil, s.fail(KindMaster, err)
	}

	diags := s.diagnostics(KindMaster, token)
	data, err := s.compositor.Compose(base, req, diags)
	if err != nil {
		return nil, s.fail(KindMaster, err)
	}

	return s.finish(ctx, req, KindMaster, compose.Name(req), data, diags)
}

func (s *system) HTMLPackage(ctx context.Context, token string) (*Artifact, error) {
	req, err := s.requests.Find(ctx, token)
	if err != nil {
		return nil, err
	}

	diags := s.diagnostics(KindHTML, token)
	data, err := s.pipeline.Assemble(ctx, req, diags)
	if err != nil {
		s.countDegraded(KindHTML, diags)
		return nil, s.fail(KindHTML, err)
	}

	return s.finish(ctx, req, KindHTML, raster.Name(req), data, diags)
}

func (s *system) Summary(ctx context.Context, token string, withAppendix bool) (*Artifact, error) {
	req, err := s.requests.Find(ctx, token)
	if err != nil {
		return nil, err
	}

	kind := KindSummary
	if withAppendix {
		kind = KindSummaryAppendix
	}

	diags := s.diagnostics(kind, token)
	data, err := s.summaries.Generate(req, withAppendix, diags)
	if err != nil {
		return nil, s.fail(kind, err)
	}

	return s.finish(ctx, req, kind, summary.Name(req), data, diags)
}

func (s *system) Inspect(ctx context.Context, ref string) (*Inspection, error) {
	target, err := s.source.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return &Inspection{
		Result: inspect.URL(ctx, s.source, target),
		Source: target,
	}, nil
}

func (s *system) InspectUpload(ctx context.Context, data []byte) (*Inspection, error) {
	key := path.Join("inspect", uuid.New().String()+".pdf")
	if err := s.storage.Store(ctx, key, data); err != nil {
		return nil, errors.Wrap(err, "store inspected upload")
	}

	return &Inspection{
		Result: inspect.Bytes(data),
		Source: key,
	}, nil
}

func (s *system) diagnostics(kind, token string) *diagnostics.List {
	return diagnostics.New(s.logger.With("artifact", kind, "token", token))
}

func (s *system) finish(ctx context.Context, req *requests.Request, kind, name string, data []byte, diags *diagnostics.List) (*Artifact, error) {
	key := Key(req.Token, name)
	if err := s.storage.Store(ctx, key, data); err != nil {
		return nil, s.fail(kind, errors.Wrapf(err, "store %s artifact", kind))
	}

	metrics.ArtifactsGenerated.WithLabelValues(kind).Inc()
	s.countDegraded(kind, diags)

	s.logger.Info("artifact generated",
		"kind", kind,
		"token", req.Token,
		"key", key,
		"bytes", len(data),
		"degraded", diags.Len(),
	)

	return &Artifact{
		Kind:        kind,
		Name:        name,
		ContentType: contentTypePDF,
		Key:         key,
		Data:        data,
		Diagnostics: diags.Items(),
	}, nil
}

func (s *system) countDegraded(kind string, diags *diagnostics.List) {
	byScope := lo.CountValuesBy(diags.Items(), func(it diagnostics.ItemError) string {
		return it.Scope
	})
	for scope, n := range byScope {
		metrics.DegradedItems.WithLabelValues(kind, scope).Add(float64(n))
	}
}

func (s *system) fail(kind string, err error) error {
	metrics.ArtifactFailures.WithLabelValues(kind).Inc()
	s.logger.Error("artifact failed", "kind", kind, "error", err)
	return err
}
