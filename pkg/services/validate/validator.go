package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/perf-tools/report-lens/pkg/models/domain"
)

// DefaultViewerVersion is the report producer version this viewer was built
// against.
const DefaultViewerVersion = "5.6.0"

// Validator gates candidate payloads before they reach rendering. The only
// structural requirement is the producer version marker; deeper schema
// checks belong to the render pipeline.
type Validator struct {
	viewerVersion string
}

func New(viewerVersion string) *Validator {
	if viewerVersion == "" {
		viewerVersion = DefaultViewerVersion
	}
	return &Validator{viewerVersion: viewerVersion}
}

// Validate rejects payloads without a version marker with domain.ErrSchema
// and otherwise derives the advisory compatibility result. An outdated
// payload never blocks rendering.
func (v *Validator) Validate(payload domain.ReportPayload) (domain.VersionCompatibility, error) {
	if payload.Version == "" {
		return domain.VersionCompatibility{}, fmt.Errorf("%w", domain.ErrSchema)
	}

	compat := domain.VersionCompatibility{
		PayloadVersion: payload.Version,
		ViewerVersion:  v.viewerVersion,
	}

	pMajor, pMinor, pOK := majorMinor(payload.Version)
	vMajor, vMinor, vOK := majorMinor(v.viewerVersion)
	if pOK && vOK {
		compat.Outdated = pMajor < vMajor || (pMajor == vMajor && pMinor < vMinor)
	}
	return compat, nil
}

// majorMinor truncates a semantic version to its first two numeric
// components. Patch and any pre-release suffix are ignored.
func majorMinor(version string) (major, minor int, ok bool) {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(strings.TrimRightFunc(parts[1], func(r rune) bool {
		return r < '0' || r > '9'
	}))
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}
