package templating

import (
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/courier-sign/internal/catalog"
	"github.com/JaimeStill/courier-sign/internal/requests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sig = "data:image/png;base64,iVBORw0KGgo="

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		vars   map[string]string
		want   string
	}{
		{"mapped", "<p>{{adSoyad}} / {{email}}</p>", map[string]string{"adSoyad": "Ayşe", "email": "a@b.co"}, "<p>Ayşe / a@b.co</p>"},
		{"unknown becomes empty", "<p>[{{nope}}]</p>", map[string]string{}, "<p>[]</p>"},
		{"repeated", "{{x}}{{x}}", map[string]string{"x": "1"}, "11"},
		{"escaped", "{{adres}}", map[string]string{"adres": `<b>&"`}, "&lt;b&gt;&amp;&#34;"},
		{"not an identifier", "{{ spaced }} {{a-b}}", map[string]string{}, "{{ spaced }} {{a-b}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Engine{}.Substitute(tt.markup, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubstitute_Idempotent(t *testing.T) {
	vars := map[string]string{"adSoyad": "Mehmet Öz", "tarih": "17.02.2026"}
	markup := "<h1>{{adSoyad}}</h1><p>{{tarih}}</p>"

	once, err := Engine{}.Substitute(markup, vars)
	require.NoError(t, err)
	twice, err := Engine{}.Substitute(once, vars)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.NotContains(t, once, "{{")
	assert.Contains(t, once, "Mehmet Öz")
	assert.Contains(t, once, "17.02.2026")
}

func TestSubstitute_Strict(t *testing.T) {
	_, err := Engine{Strict: true}.Substitute("{{adSoyad}} {{typo}} {{typo}} {{other}}", map[string]string{"adSoyad": "x"})
	require.ErrorIs(t, err, ErrUnknownVariable)
	assert.Contains(t, err.Error(), "typo, other")

	out, err := Engine{Strict: true}.Substitute("{{adSoyad}}", map[string]string{"adSoyad": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestUnknown(t *testing.T) {
	assert.Equal(t, []string{"b", "c"}, Unknown("{{a}}{{b}}{{c}}{{b}}", map[string]string{"a": ""}))
	assert.Empty(t, Unknown("plain", nil))
}

func TestInjectSignature(t *testing.T) {
	markup := `<p>x</p><div id="signature-placeholder" class="signature-box">
	</div><p>y</p>`

	out := InjectSignature(markup, sig)
	assert.Equal(t, 1, strings.Count(out, "<img "))
	assert.Contains(t, out, `src="`+sig+`"`)
	assert.Contains(t, out, `alt="İmza"`)
	assert.True(t, strings.HasPrefix(out, "<p>x</p>"))
	assert.True(t, strings.HasSuffix(out, "<p>y</p>"))

	assert.Equal(t, out, InjectSignature(out, sig), "filled placeholder is not matched again")
	assert.Equal(t, markup, InjectSignature(markup, ""))
	assert.Equal(t, "<p>none</p>", InjectSignature("<p>none</p>", sig))
}

func TestVariables(t *testing.T) {
	loc := time.UTC
	req := &requests.Request{
		AdSoyad:   "Ayşe Kaya",
		Email:     "a@b.co",
		Ek1Plaka:  "34 ABC 123",
		CreatedAt: time.Date(2026, 2, 17, 10, 0, 0, 0, time.UTC),
	}
	s := &requests.Signature{
		SignedAt: time.Date(2026, 2, 20, 8, 0, 0, 0, time.UTC),
		FormData: &requests.FormData{TcKimlik: "12345678901", KkdRows: []int{2, 10}},
	}

	vars := Variables(req, s, loc)

	assert.Equal(t, "17.02.2026", vars["tarih"])
	assert.Equal(t, "12345678901", vars["vergiDairesiVkn"], "falls back to the signed id")
	assert.Equal(t, "34 ABC 123", vars["plaka"])
	assert.Equal(t, ReceivedMark, vars["kkdRow2"])
	assert.Equal(t, "20.02.2026", vars["kkdRow2Tarih"])
	assert.Equal(t, ReceivedMark, vars["kkdRow10"])
	assert.Empty(t, vars["kkdRow1"])
	assert.Empty(t, vars["kkdRow1Tarih"])

	unsigned := Variables(req, nil, loc)
	assert.Empty(t, unsigned["kkdRow2"])
}

func TestBuiltinTemplatesResolve(t *testing.T) {
	vars := Variables(&requests.Request{CreatedAt: time.Now()}, nil, time.UTC)

	for _, def := range catalog.Default().All() {
		if !def.HasTemplate() {
			continue
		}
		t.Run(def.Code, func(t *testing.T) {
			assert.Empty(t, Unknown(def.Template, vars))
			assert.True(t, placeholderPattern.MatchString(def.Template))
		})
	}
}

func TestRender(t *testing.T) {
	def, err := catalog.Default().Find("KKD_TESLIM_TUTANAGI")
	require.NoError(t, err)

	req := &requests.Request{AdSoyad: "Ali Veli", CreatedAt: time.Now()}
	out, err := Engine{Strict: true}.Render(def.Template, req, &requests.Signature{SignaturePNG: sig, FormData: &requests.FormData{KkdRows: []int{1}}}, time.UTC)
	require.NoError(t, err)

	assert.NotContains(t, out, "{{")
	assert.Contains(t, out, "Ali Veli")
	assert.Contains(t, out, ReceivedMark)
	assert.Equal(t, 1, strings.Count(out, "<img "))
}
