package testtracks

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"

	"github.com/okian/cascade/internal/adapters/source"
	"github.com/okian/cascade/internal/domain/model"
	"github.com/okian/cascade/pkg/logger"
)

// ConfigFileName is the run configuration written next to the track files.
const ConfigFileName = "config.yaml"

// runConfig mirrors the keys the service reads from its config file.
type runConfig struct {
	Files        []string `yaml:"files"`
	BudgetPlaces []int    `yaml:"budget_places"`
	MyID         string   `yaml:"my_id"`
}

// Write stores every track of fx under cfg.OutDir together with a config file
// pointing at them, and returns the track URLs in order.
func Write(ctx context.Context, fs afs.Service, cfg Config, fx Fixture) ([]string, error) {
	if fs == nil {
		fs = afs.New()
	}
	urls := make([]string, len(fx.Tracks))
	for i, t := range fx.Tracks {
		data, err := encodeTrack(t.Records, cfg.Encoding)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t.Source, err)
		}
		urls[i] = path.Join(cfg.OutDir, t.Source)
		if err := fs.Upload(ctx, urls[i], file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to write track file %s: %w", urls[i], err)
		}
	}

	data, err := yaml.Marshal(runConfig{Files: urls, BudgetPlaces: fx.Capacities, MyID: fx.MyID})
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	cfgURL := path.Join(cfg.OutDir, ConfigFileName)
	if err := fs.Upload(ctx, cfgURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to write config file %s: %w", cfgURL, err)
	}

	logger.Get().Info(ctx, "fixture written",
		logger.String("dir", cfg.OutDir),
		logger.Int("tracks", len(urls)),
		logger.String("config", cfgURL))
	return urls, nil
}

func encodeTrack(records []model.ApplicantRecord, encoding string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = source.DefaultDelimiter
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := w.Write(r.Raw); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if encoding == EncodingWindows1251 {
		return charmap.Windows1251.NewEncoder().Bytes(buf.Bytes())
	}
	return buf.Bytes(), nil
}
