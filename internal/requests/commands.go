package requests

// CreateCommand starts a signing request for a signer.
type CreateCommand struct {
	Email         string   `json:"email" validate:"required,email,max=254"`
	AdSoyad       string   `json:"adSoyad" validate:"max=200"`
	SelectedDocs  []string `json:"selectedDocs" validate:"required,min=1,dive,required"`
	Ek1Plaka      string   `json:"ek1Plaka" validate:"max=20"`
	Ek1MarkaModel string   `json:"ek1MarkaModel" validate:"max=100"`
	Ek1ModelYili  string   `json:"ek1ModelYili" validate:"max=10"`
	Ek1SasiNo     string   `json:"ek1SasiNo" validate:"max=50"`
	Ek1MotorNo    string   `json:"ek1MotorNo" validate:"max=50"`
}

// SaveInfoCommand updates signer details. Nil fields are left unchanged.
type SaveInfoCommand struct {
	AdSoyad             *string `json:"adSoyad" validate:"omitnil,max=200"`
	Email               *string `json:"email" validate:"omitnil,email,max=254"`
	CepNumarasi         *string `json:"cepNumarasi" validate:"omitnil,max=20"`
	TcKimlik            *string `json:"tcKimlik" validate:"omitnil,max=20"`
	Adres               *string `json:"adres" validate:"omitnil,max=1000"`
	SurucuBelgesiTarihi *string `json:"surucuBelgesiTarihi" validate:"omitnil,max=50"`
	SurucuSicilNo       *string `json:"surucuSicilNo" validate:"omitnil,max=50"`
	IPAddress           string  `json:"ipAddress" validate:"omitempty,ip"`
}

// SignCommand records the evidence for one document.
type SignCommand struct {
	SignaturePNG     string    `json:"signaturePng"`
	FrontImage       string    `json:"frontImage"`
	BackImage        string    `json:"backImage"`
	TaxPlatePDF      string    `json:"taxPlatePdf"`
	UploadedDocument string    `json:"uploadedDocument"`
	ConsentChecked   bool      `json:"consentChecked"`
	FormData         *FormData `json:"formData"`
}

func (c *SignCommand) uploads() map[string]string {
	return map[string]string{
		"signaturePng":     c.SignaturePNG,
		"frontImage":       c.FrontImage,
		"backImage":        c.BackImage,
		"taxPlatePdf":      c.TaxPlatePDF,
		"uploadedDocument": c.UploadedDocument,
	}
}
