package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/perf-tools/report-lens/pkg/render"
	"github.com/perf-tools/report-lens/pkg/services/analytics"
	"github.com/perf-tools/report-lens/pkg/services/intake"
	"github.com/perf-tools/report-lens/pkg/services/location"
	"github.com/perf-tools/report-lens/pkg/store"
	"github.com/perf-tools/report-lens/pkg/store/registry"
)

const defaultBaseURL = "https://viewer.local/"

// viewer bundles the intake core for one CLI invocation.
type viewer struct {
	controller *intake.Controller
	container  *render.Container
}

func newViewer(reportStore store.ReportStore, current string) (*viewer, error) {
	container := render.NewContainer()
	renderer, err := render.NewRenderer()
	if err != nil {
		return nil, err
	}
	loc, err := location.NewSync(defaultBaseURL, current)
	if err != nil {
		return nil, err
	}

	controller := intake.NewController(intake.Config{}, intake.Dependencies{
		Pipeline:  renderer,
		Container: container,
		Store:     reportStore,
		Location:  loc,
		Analytics: analytics.LogSink{},
	})
	return &viewer{controller: controller, container: container}, nil
}

// writeDocument writes the rendered HTML to path, or to out when path is
// "-".
func (v *viewer) writeDocument(out io.Writer, path string) error {
	doc := v.container.HTML()
	if len(doc) == 0 {
		return fmt.Errorf("nothing was rendered")
	}
	if path == "-" {
		_, err := out.Write(doc)
		return err
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

func defaultStoresPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "stores.ini"
	}
	return filepath.Join(home, ".report-lens", "stores.ini")
}

func openStore(storesPath, profile string) (store.ReportStore, error) {
	reg, err := registry.NewRegistry(storesPath)
	if err != nil {
		return nil, fmt.Errorf("loading store profiles from %s: %w", storesPath, err)
	}
	reportStore, err := reg.GetStore(context.Background(), profile)
	if err != nil {
		return nil, err
	}
	return reportStore, nil
}
