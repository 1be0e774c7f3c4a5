package templating

import (
	"fmt"
	"slices"
	"time"

	"github.com/JaimeStill/courier-sign/internal/requests"
	"github.com/JaimeStill/courier-sign/internal/textfmt"
)

// KkdRows is the number of protective equipment rows on the receipt template.
const KkdRows = 10

// ReceivedMark marks a protective equipment row as received.
const ReceivedMark = "✓"

// Variables builds the substitution map for one request. sig may be nil for a document
// that has not been signed yet.
func Variables(req *requests.Request, sig *requests.Signature, loc *time.Location) map[string]string {
	tarih := textfmt.FormatShortDate(req.CreatedAt, loc)

	vkn := req.TcKimlik
	adSoyad := req.AdSoyad
	if sig != nil && sig.FormData != nil {
		if sig.FormData.AdSoyad != "" && adSoyad == "" {
			adSoyad = sig.FormData.AdSoyad
		}
		if sig.FormData.TcKimlik != "" && vkn == "" {
			vkn = sig.FormData.TcKimlik
		}
	}

	vars := map[string]string{
		"adSoyad":             adSoyad,
		"vergiDairesiVkn":     vkn,
		"tcKimlik":            vkn,
		"adres":               req.Adres,
		"email":               req.Email,
		"tarih":               tarih,
		"cepTelefonu":         req.CepNumarasi,
		"surucuBelgesiTarihi": req.SurucuBelgesiTarihi,
		"surucuSicilNo":       req.SurucuSicilNo,
		"plaka":               req.Ek1Plaka,
		"markaModel":          req.Ek1MarkaModel,
		"modelYili":           req.Ek1ModelYili,
		"sasiNo":              req.Ek1SasiNo,
		"motorNo":             req.Ek1MotorNo,
	}

	var received []int
	rowDate := tarih
	if sig != nil {
		if sig.FormData != nil {
			received = sig.FormData.KkdRows
		}
		if !sig.SignedAt.IsZero() {
			rowDate = textfmt.FormatShortDate(sig.SignedAt, loc)
		}
	}

	for n := 1; n <= KkdRows; n++ {
		mark, date := "", ""
		if slices.Contains(received, n) {
			mark, date = ReceivedMark, rowDate
		}
		vars[fmt.Sprintf("kkdRow%d", n)] = mark
		vars[fmt.Sprintf("kkdRow%dTarih", n)] = date
	}

	return vars
}

// Render substitutes the request's variables into markup and injects the signature.
func (e Engine) Render(markup string, req *requests.Request, sig *requests.Signature, loc *time.Location) (string, error) {
	out, err := e.Substitute(markup, Variables(req, sig, loc))
	if err != nil {
		return "", err
	}
	if sig != nil {
		out = InjectSignature(out, sig.SignaturePNG)
	}
	return out, nil
}
