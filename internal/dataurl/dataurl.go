// Package dataurl decodes the base64 data URLs signers upload images and documents as.
package dataurl

import (
	"encoding/base64"
	"errors"
	"strings"
)

// PDFPrefix is the only prefix that qualifies an upload as a PDF document.
const PDFPrefix = "data:application/pdf;base64,"

var ErrMalformed = errors.New("malformed data url")

// Decode returns the media type and payload of a base64 data URL. A bare base64 string
// decodes with an empty media type.
func Decode(s string) (string, []byte, error) {
	mediaType, payload := split(s)
	if payload == "" {
		return mediaType, nil, ErrMalformed
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return mediaType, nil, ErrMalformed
		}
	}
	return mediaType, data, nil
}

// MediaType returns the declared media type, or "" for bare base64.
func MediaType(s string) string {
	mt, _ := split(s)
	return mt
}

// IsPDF reports whether s declares application/pdf with base64 encoding.
func IsPDF(s string) bool {
	return strings.HasPrefix(s, PDFPrefix)
}

// IsImage reports whether s declares an image media type.
func IsImage(s string) bool {
	return strings.HasPrefix(MediaType(s), "image/")
}

// DecodedSize estimates the payload size without decoding it.
func DecodedSize(s string) int64 {
	_, payload := split(s)
	return int64(base64.StdEncoding.DecodedLen(len(payload)))
}

func split(s string) (string, string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return "", s
	}

	header, payload, ok := strings.Cut(s, ",")
	if !ok {
		return "", ""
	}

	meta := strings.TrimPrefix(header, "data:")
	mediaType, params, _ := strings.Cut(meta, ";")
	if !strings.Contains(";"+params, ";base64") {
		return mediaType, ""
	}
	return mediaType, payload
}
