package render

import (
	"bytes"
	"html/template"
	"strings"
)

// ContractCommand is the body of a contract summary render.
type ContractCommand struct {
	AdSoyad      string `json:"adSoyad" validate:"max=200"`
	Email        string `json:"email" validate:"required,email"`
	TcKimlik     string `json:"tcKimlik" validate:"max=20"`
	CepNumarasi  string `json:"cepNumarasi" validate:"max=20"`
	Adres        string `json:"adres" validate:"max=1000"`
	Tarih        string `json:"tarih" validate:"max=50"`
	SignaturePNG string `json:"signaturePng"`
}

var contractTemplate = template.Must(template.New("contract").Parse(`<!DOCTYPE html>
<html lang="tr">
<head>
  <meta charset="UTF-8" />
  <style>
@page { size: A4; margin: 18mm; }
body { font-family: system-ui, -apple-system, sans-serif; font-size: 12px; line-height: 1.5; color: #222; margin: 0; padding: 0; }
.no-break { page-break-inside: avoid; }
.signature-img { max-width: 120px; max-height: 50px; object-fit: contain; }
h1 { font-size: 16px; margin: 0 0 12px 0; }
table { width: 100%; border-collapse: collapse; margin: 12px 0; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background: #f5f5f5; }
  </style>
</head>
<body>
  <h1>Sozlesme Ozeti</h1>
  <table class="no-break">
    <tr><th>Ad Soyad</th><td>{{.AdSoyad}}</td></tr>
    <tr><th>E-posta</th><td>{{.Email}}</td></tr>
    <tr><th>TC Kimlik</th><td>{{.TcKimlik}}</td></tr>
    <tr><th>Cep Numarasi</th><td>{{.CepNumarasi}}</td></tr>
    <tr><th>Adres</th><td>{{.Adres}}</td></tr>
    <tr><th>Tarih</th><td>{{.Tarih}}</td></tr>
  </table>
  <div class="no-break">
    <p><strong>Imza:</strong></p>
    {{if .Signature}}<img src="{{.Signature}}" alt="Imza" class="signature-img" />{{else}}<p>-</p>{{end}}
  </div>
</body>
</html>`))

// ContractHTML renders cmd into the A4 contract summary page.
func ContractHTML(cmd ContractCommand) (string, error) {
	data := struct {
		ContractCommand
		Signature template.URL
	}{ContractCommand: cmd}

	if sig := strings.TrimSpace(cmd.SignaturePNG); sig != "" {
		if !strings.HasPrefix(sig, "data:") {
			sig = "data:image/png;base64," + sig
		}
		if strings.HasPrefix(sig, "data:image/") {
			data.Signature = template.URL(sig)
		}
	}

	var buf bytes.Buffer
	if err := contractTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
