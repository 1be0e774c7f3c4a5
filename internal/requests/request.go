package requests

import (
	"maps"
	"slices"
	"time"
)

// Status summarizes signing progress over the selected documents.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusCompleted Status = "completed"
)

// FormData echoes signer input captured with a signature.
type FormData struct {
	AdSoyad  string `json:"adSoyad,omitempty" validate:"max=200"`
	TcKimlik string `json:"tcKimlik,omitempty" validate:"max=20"`
	// KkdRows lists the protective equipment rows (1-10) marked as received.
	KkdRows []int `json:"kkdRows,omitempty" validate:"max=10,dive,min=1,max=10"`
}

// Signature is the evidence captured for one document of a request.
type Signature struct {
	DocCode          string    `json:"docCode"`
	SignedAt         time.Time `json:"signedAt"`
	SignaturePNG     string    `json:"signaturePng,omitempty"`
	FrontImage       string    `json:"frontImage,omitempty"`
	BackImage        string    `json:"backImage,omitempty"`
	TaxPlatePDF      string    `json:"taxPlatePdf,omitempty"`
	UploadedDocument string    `json:"uploadedDocument,omitempty"`
	ConsentChecked   bool      `json:"consentChecked"`
	FormData         *FormData `json:"formData,omitempty"`
}

// Request is one signer's unit of work. Signatures holds at most one entry per selected code.
type Request struct {
	Token               string               `json:"token"`
	Email               string               `json:"email"`
	AdSoyad             string               `json:"adSoyad,omitempty"`
	CepNumarasi         string               `json:"cepNumarasi,omitempty"`
	TcKimlik            string               `json:"tcKimlik,omitempty"`
	Adres               string               `json:"adres,omitempty"`
	SurucuBelgesiTarihi string               `json:"surucuBelgesiTarihi,omitempty"`
	SurucuSicilNo       string               `json:"surucuSicilNo,omitempty"`
	Ek1Plaka            string               `json:"ek1Plaka,omitempty"`
	Ek1MarkaModel       string               `json:"ek1MarkaModel,omitempty"`
	Ek1ModelYili        string               `json:"ek1ModelYili,omitempty"`
	Ek1SasiNo           string               `json:"ek1SasiNo,omitempty"`
	Ek1MotorNo          string               `json:"ek1MotorNo,omitempty"`
	SelectedDocs        []string             `json:"selectedDocs"`
	Signatures          map[string]Signature `json:"signatures"`
	Status              Status               `json:"status"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
	SavedAt             *time.Time           `json:"savedAt,omitempty"`
	IPAddress           string               `json:"ipAddress,omitempty"`
}

// DeriveStatus computes the status from the signature count.
func (r *Request) DeriveStatus() Status {
	switch n := len(r.Signatures); {
	case n == 0:
		return StatusPending
	case n < len(r.SelectedDocs):
		return StatusPartial
	default:
		return StatusCompleted
	}
}

// Signature returns the signature recorded for code, if any.
func (r *Request) Signature(code string) (Signature, bool) {
	sig, ok := r.Signatures[code]
	return sig, ok
}

// Clone returns a copy that shares no mutable state with r.
func (r *Request) Clone() *Request {
	c := *r
	c.SelectedDocs = slices.Clone(r.SelectedDocs)
	c.Signatures = maps.Clone(r.Signatures)
	if c.Signatures == nil {
		c.Signatures = map[string]Signature{}
	}
	for code, sig := range c.Signatures {
		if sig.FormData != nil {
			fd := *sig.FormData
			fd.KkdRows = slices.Clone(fd.KkdRows)
			sig.FormData = &fd
			c.Signatures[code] = sig
		}
	}
	if r.SavedAt != nil {
		t := *r.SavedAt
		c.SavedAt = &t
	}
	return &c
}
