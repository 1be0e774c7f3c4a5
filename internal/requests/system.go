// Package requests manages signing requests: creation, signer info, per-document
// signatures and the derived status.
package requests

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/courier-sign/internal/catalog"
	"github.com/JaimeStill/courier-sign/internal/dataurl"
	"github.com/JaimeStill/courier-sign/pkg/metrics"
	"github.com/JaimeStill/courier-sign/pkg/pagination"
	"github.com/JaimeStill/courier-sign/pkg/validation"
	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
)

// TokenPrefix starts every request token.
const TokenPrefix = "REQ_"

// System defines the interface for signing request operations.
type System interface {
	// Create starts a pending request for the selected documents.
	Create(ctx context.Context, cmd CreateCommand) (*Request, error)

	// Find returns the request identified by token.
	Find(ctx context.Context, token string) (*Request, error)

	// List returns requests newest first, filtered by the page's search term.
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[*Request], error)

	// SaveInfo updates signer details and stamps savedAt and the client address.
	SaveInfo(ctx context.Context, token string, cmd SaveInfoCommand) (*Request, error)

	// Sign records the evidence for one selected document, replacing any previous signature.
	Sign(ctx context.Context, token, code string, cmd SignCommand) (*Request, error)

	// Delete removes a request.
	Delete(ctx context.Context, token string) error
}

type system struct {
	store      Store
	catalog    *catalog.Catalog
	logger     *slog.Logger
	pagination pagination.Config
	maxUpload  int64
	now        func() time.Time
}

// New creates the request system over store. maxUpload bounds each decoded upload in bytes;
// zero disables the check.
func New(store Store, cat *catalog.Catalog, logger *slog.Logger, pagination pagination.Config, maxUpload int64) System {
	return &system{
		store:      store,
		catalog:    cat,
		logger:     logger.With("system", "requests"),
		pagination: pagination,
		maxUpload:  maxUpload,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// NewToken returns a fresh request token.
func NewToken() string {
	return TokenPrefix + ulid.MustNew(ulid.Now(), rand.Reader).String()
}

func (s *system) Create(ctx context.Context, cmd CreateCommand) (*Request, error) {
	cmd.Email = strings.TrimSpace(cmd.Email)
	if len(cmd.SelectedDocs) == 0 {
		return nil, ErrNoDocuments
	}
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	codes := lo.Uniq(cmd.SelectedDocs)
	if unknown := lo.Reject(codes, func(c string, _ int) bool { return s.catalog.Known(c) }); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, strings.Join(unknown, ", "))
	}

	now := s.now()
	req := &Request{
		Token:         NewToken(),
		Email:         cmd.Email,
		AdSoyad:       strings.TrimSpace(cmd.AdSoyad),
		Ek1Plaka:      cmd.Ek1Plaka,
		Ek1MarkaModel: cmd.Ek1MarkaModel,
		Ek1ModelYili:  cmd.Ek1ModelYili,
		Ek1SasiNo:     cmd.Ek1SasiNo,
		Ek1MotorNo:    cmd.Ek1MotorNo,
		SelectedDocs:  codes,
		Signatures:    map[string]Signature{},
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Put(ctx, req); err != nil {
		return nil, fmt.Errorf("store request: %w", err)
	}

	s.logger.Info("signing request created", "token", req.Token, "documents", len(codes))
	return req, nil
}

func (s *system) Find(ctx context.Context, token string) (*Request, error) {
	return s.store.Get(ctx, token)
}

func (s *system) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[*Request], error) {
	page.Normalize(s.pagination)

	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	matched := lo.Filter(all, func(r *Request, _ int) bool {
		return page.Matches(r.Token, r.Email, r.AdSoyad, r.TcKimlik)
	})

	result := pagination.Slice(matched, page)
	return &result, nil
}

func (s *system) SaveInfo(ctx context.Context, token string, cmd SaveInfoCommand) (*Request, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	req, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	assign := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	assign(&req.AdSoyad, cmd.AdSoyad)
	assign(&req.Email, cmd.Email)
	assign(&req.CepNumarasi, cmd.CepNumarasi)
	assign(&req.TcKimlik, cmd.TcKimlik)
	assign(&req.Adres, cmd.Adres)
	assign(&req.SurucuBelgesiTarihi, cmd.SurucuBelgesiTarihi)
	assign(&req.SurucuSicilNo, cmd.SurucuSicilNo)

	now := s.now()
	req.SavedAt = &now
	req.UpdatedAt = now
	if cmd.IPAddress != "" {
		req.IPAddress = cmd.IPAddress
	}

	if err := s.store.Put(ctx, req); err != nil {
		return nil, fmt.Errorf("store request: %w", err)
	}

	s.logger.Info("signer info saved", "token", token)
	return req, nil
}

func (s *system) Sign(ctx context.Context, token, code string, cmd SignCommand) (*Request, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	def, err := s.catalog.Find(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, code)
	}

	if err := s.checkUploads(&cmd); err != nil {
		return nil, err
	}
	if err := checkKind(def.Kind, &cmd); err != nil {
		return nil, fmt.Errorf("%s: %w", code, err)
	}

	req, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(req.SelectedDocs, code) {
		return nil, fmt.Errorf("%w: %s", ErrNotSelected, code)
	}

	now := s.now()
	req.Signatures[code] = Signature{
		DocCode:          code,
		SignedAt:         now,
		SignaturePNG:     cmd.SignaturePNG,
		FrontImage:       cmd.FrontImage,
		BackImage:        cmd.BackImage,
		TaxPlatePDF:      cmd.TaxPlatePDF,
		UploadedDocument: cmd.UploadedDocument,
		ConsentChecked:   cmd.ConsentChecked,
		FormData:         cmd.FormData,
	}
	req.Status = req.DeriveStatus()
	req.UpdatedAt = now

	if err := s.store.Put(ctx, req); err != nil {
		return nil, fmt.Errorf("store request: %w", err)
	}

	metrics.SignaturesRecorded.WithLabelValues(string(def.Kind)).Inc()
	s.logger.Info("document signed", "token", token, "code", code, "status", req.Status)
	return req, nil
}

func (s *system) Delete(ctx context.Context, token string) error {
	if err := s.store.Delete(ctx, token); err != nil {
		return err
	}
	s.logger.Info("signing request deleted", "token", token)
	return nil
}

func (s *system) checkUploads(cmd *SignCommand) error {
	for field, v := range cmd.uploads() {
		if v == "" {
			continue
		}
		if s.maxUpload > 0 && dataurl.DecodedSize(v) > s.maxUpload {
			return fmt.Errorf("%w: %s", ErrTooLarge, field)
		}
		if _, _, err := dataurl.Decode(v); err != nil {
			return fmt.Errorf("%w: %s", ErrMalformed, field)
		}
	}
	return nil
}

// checkKind rejects evidence the kind does not honor and requires the evidence it does.
func checkKind(kind catalog.Kind, cmd *SignCommand) error {
	present := lo.PickBy(cmd.uploads(), func(_ string, v string) bool { return v != "" })

	var allowed []string
	switch {
	case kind.AcceptsSignature():
		allowed = []string{"signaturePng"}
	case kind.AcceptsPhotos():
		allowed = []string{"frontImage", "backImage"}
	case kind == catalog.KindTaxPlate:
		allowed = []string{"taxPlatePdf"}
	case kind.AcceptsUpload():
		allowed = []string{"uploadedDocument"}
	}

	if extra := lo.Without(lo.Keys(present), allowed...); len(extra) > 0 {
		return fmt.Errorf("%w: %s", ErrNotAccepted, strings.Join(sorted(extra), ", "))
	}
	if len(present) == 0 {
		return ErrMissingEvidence
	}
	if kind == catalog.KindTaxPlate && !dataurl.IsPDF(cmd.TaxPlatePDF) && dataurl.MediaType(cmd.TaxPlatePDF) != "" {
		return fmt.Errorf("%w: taxPlatePdf must be a PDF", ErrNotAccepted)
	}
	return nil
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	slices.Sort(out)
	return out
}
