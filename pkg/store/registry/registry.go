// Package registry selects and constructs a report store backend from an
// INI profile file. Each section names a profile; its `backend` key decides
// which store implementation serves it.
package registry

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/perf-tools/report-lens/pkg/store"
	"github.com/perf-tools/report-lens/pkg/store/gist"
	"github.com/perf-tools/report-lens/pkg/store/s3"
	"github.com/perf-tools/report-lens/pkg/store/sqlite"
)

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetStore(ctx context.Context, profile string) (store.ReportStore, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetStore(_ context.Context, profile string) (store.ReportStore, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	backend := section.Key("backend").String()
	switch backend {
	case "gist":
		return gist.NewClient(gist.Config{
			BaseURL: section.Key("base_url").String(),
			Token:   section.Key("token").String(),
		})
	case "s3":
		return s3.NewStore(s3.Config{
			Endpoint:  section.Key("endpoint").String(),
			Region:    section.Key("region").String(),
			AccessKey: section.Key("access_key").String(),
			SecretKey: section.Key("secret_key").String(),
			Bucket:    section.Key("bucket").String(),
			UseSSL:    section.Key("use_ssl").MustBool(true),
		})
	case "sqlite":
		db, err := sqlite.NewDB(sqlite.Settings{DbPath: section.Key("path").String()})
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(db)
	default:
		return nil, fmt.Errorf("profile %s: unknown backend %q", profile, backend)
	}
}
