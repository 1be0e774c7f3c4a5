package catalog

// Kind classifies what a signer provides for a document.
type Kind string

const (
	KindContract       Kind = "contract"
	KindIdentityCard   Kind = "identity_card"
	KindDriverLicense  Kind = "driver_license"
	KindTaxPlate       Kind = "tax_plate"
	KindResidence      Kind = "residence"
	KindCriminalRecord Kind = "criminal_record"
)

// AcceptsSignature reports whether a drawn signature is honored for the kind.
// Definitions without a kind behave as contracts.
func (k Kind) AcceptsSignature() bool {
	return k == KindContract || k == ""
}

// AcceptsPhotos reports whether front and back photos are honored for the kind.
func (k Kind) AcceptsPhotos() bool {
	return k == KindIdentityCard || k == KindDriverLicense
}

// AcceptsUpload reports whether an uploaded document is honored for the kind.
func (k Kind) AcceptsUpload() bool {
	return k == KindTaxPlate || k == KindResidence || k == KindCriminalRecord
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindContract, KindIdentityCard, KindDriverLicense, KindTaxPlate, KindResidence, KindCriminalRecord:
		return true
	}
	return false
}
