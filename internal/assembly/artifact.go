// Package assembly produces the downloadable artifacts of a signing request and keeps a
// copy of each in the blob store.
package assembly

import (
	"path"

	"github.com/JaimeStill/courier-sign/internal/diagnostics"
)

// Artifact kinds, used as metric labels.
const (
	KindMaster          = "master"
	KindHTML            = "html"
	KindSummary         = "summary"
	KindSummaryAppendix = "summary_appendix"
)

const contentTypePDF = "application/pdf"

// Artifact is a generated document together with the items that degraded while building it.
type Artifact struct {
	Kind        string                  `json:"kind"`
	Name        string                  `json:"name"`
	ContentType string                  `json:"contentType"`
	Key         string                  `json:"key"`
	Data        []byte                  `json:"-"`
	Diagnostics []diagnostics.ItemError `json:"diagnostics"`
}

// Key returns the blob store key for an artifact of token.
func Key(token, name string) string {
	return path.Join("artifacts", token, name)
}
