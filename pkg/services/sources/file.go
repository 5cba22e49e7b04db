package sources

import (
	"fmt"
	"io"

	"github.com/perf-tools/report-lens/pkg/models/domain"
)

// ReadFile consumes a selected file in full and parses it as a report
// payload. Single attempt, no retry; a read or parse failure aborts the
// intake with domain.ErrParse.
func ReadFile(r io.Reader) (domain.ReportPayload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.ReportPayload{}, fmt.Errorf("%w: reading file: %v", domain.ErrParse, err)
	}
	return domain.ParseReport(data)
}
