package catalog

import "fmt"

func pages(start, end int) (*int, *int) {
	if end == 0 {
		return &start, nil
	}
	return &start, &end
}

func contract(code, title, description string, order, start, end int) Definition {
	s, e := pages(start, end)
	return Definition{
		Code:        code,
		Title:       title,
		Description: description,
		Kind:        KindContract,
		StartPage:   s,
		EndPage:     e,
		Order:       order,
	}
}

func loadTemplate(name string) string {
	data, err := templates.ReadFile("templates/" + name)
	if err != nil {
		panic(fmt.Sprintf("catalog: missing template %s", name))
	}
	return string(data)
}

func builtin() []Definition {
	return []Definition{
		contract("KVKK_AYDINLATMA", "KVKK Aydınlatma Metni", "Kişisel Verilerin Korunması Kanunu kapsamında aydınlatma metni", 1, 1, 2),
		contract("GIZLILIK_SOZLESMESI", "Gizlilik Sözleşmesi", "Şirket gizlilik politikası ve taahhütname", 2, 3, 4),
		contract("KURYE_SOZLESMESI", "Kurye Hizmet Sözleşmesi", "Kurye hizmetleri kapsamında çalışma şartları ve sözleşme", 3, 5, 7),
		contract("ARAC_KULLANIM_SOZLESMESI", "Araç Kullanım Sözleşmesi", "Şirket aracı kullanım kuralları ve sorumluluklar", 4, 8, 9),
		contract("IS_GUVENLIGI_TAAHHUTNAMESI", "İş Güvenliği Taahhütnamesi", "İş güvenliği kurallarına uyum taahhütnamesi", 5, 10, 11),
		contract("VERGI_SORUMLULUK_TAAHHUTNAMESI", "Vergi Sorumluluk Taahhütnamesi", "Vergi yükümlülükleri ve sorumluluk beyanı", 6, 12, 13),
		contract("SGK_BEYANI", "SGK Beyan Formu", "Sosyal Güvenlik Kurumu beyan ve taahhüt formu", 7, 14, 15),
		contract("ELEKTRONIK_IZIN_FORMU", "Elektronik İletişim İzin Formu", "Elektronik iletişim ve pazarlama izni formu", 8, 16, 0),
		contract("UYUSMAZLIK_COZUM_SOZLESMESI", "Uyuşmazlık Çözüm Sözleşmesi", "İş uyuşmazlıklarında çözüm mekanizması sözleşmesi", 9, 17, 18),
		contract("AYRILMA_PROTOKOLU", "Ayrılma Protokolü", "İş ilişkisi sonlandırma şartları ve protokol", 10, 19, 20),
		{Code: "KIMLIK_KARTI", Title: "Kimlik Kartı", Description: "Ön ve arka yüz fotoğraf yüklemesi", Kind: KindIdentityCard, Order: 11},
		{Code: "EHLIYET", Title: "Ehliyet", Description: "Ön ve arka yüz fotoğraf yüklemesi", Kind: KindDriverLicense, Order: 12},
		{Code: "VERGI_LEVHASI", Title: "Vergi Levhası", Description: "PDF formatında yükleme", Kind: KindTaxPlate, Order: 13},
		{Code: "IKAMETGAH", Title: "İkametgah Belgesi", Description: "Fotoğraf veya PDF yükleme", Kind: KindResidence, Order: 14},
		{Code: "ADLI_SICIL", Title: "Adli Sicil Kaydı", Description: "Fotoğraf veya PDF yükleme", Kind: KindCriminalRecord, Order: 15},
		{
			Code:        "EK1_ODEME_DETAYLARI",
			Title:       "EK-1 B Tipi Ödeme Detayları",
			Description: "Motosiklet bilgileri ve ödeme detayları",
			Kind:        KindContract,
			Order:       16,
			Template:    loadTemplate("ek1_odeme_detaylari.html"),
		},
		{
			Code:        "EK3_TASIT_BILGILERI",
			Title:       "EK-3 B Tipi Taşıt ve Sürücü Bilgileri",
			Description: "Sürücü belgesi ve taşıt bilgileri beyanı",
			Kind:        KindContract,
			Order:       17,
			Template:    loadTemplate("ek3_tasit_bilgileri.html"),
		},
		{
			Code:        "KKD_TESLIM_TUTANAGI",
			Title:       "KKD Teslim Tutanağı",
			Description: "Kişisel koruyucu donanım teslim tutanağı",
			Kind:        KindContract,
			Order:       18,
			Template:    loadTemplate("kkd_teslim_tutanagi.html"),
		},
	}
}
