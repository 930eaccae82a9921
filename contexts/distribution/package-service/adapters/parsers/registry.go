package parsers

import (
	domainerrors "hangar/contexts/distribution/package-service/domain/errors"
	"hangar/contexts/distribution/package-service/ports"
)

// format is a probe-then-parse pair. Probing checks the application's
// declared OS first, then inspects content, and only falls back to the file
// extension when the bytes are inconclusive.
type format interface {
	CanParse(fileName, os, platform string, data []byte) bool
	Parse(fileName string, data []byte) (ports.ParsedPackage, error)
}

// Registry implements ports.Parser over the known artifact formats, probed
// in registration order.
type Registry struct {
	formats []format
}

// NewRegistry returns the default registry: IPA first, then APK. The IPA
// probe is the more specific one, so it goes first.
func NewRegistry() *Registry {
	return &Registry{formats: []format{IPAParser{}, APKParser{}}}
}

func (r *Registry) Parse(fileName, os, platform string, data []byte) (ports.ParsedPackage, error) {
	if len(data) == 0 {
		return ports.ParsedPackage{}, domainerrors.ErrMalformedPackage
	}
	for _, f := range r.formats {
		if f.CanParse(fileName, os, platform, data) {
			return f.Parse(fileName, data)
		}
	}
	return ports.ParsedPackage{}, domainerrors.ErrUnsupportedFormat
}
