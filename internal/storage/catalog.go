package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryCatalog is the DSN of a shared in-memory catalog.
const MemoryCatalog = "file::memory:?cache=shared"

// RunRecord is the catalog row of one saved run.
type RunRecord struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	Preset    string `gorm:"index"`
	Frames    int
	SimTime   float64
	Bodies    int
	Failed    int
	Params    datatypes.JSON
	Metrics   datatypes.JSON
}

// RunParams is the scene configuration stored alongside a run.
type RunParams struct {
	Gravity   [3]float32 `json:"gravity"`
	MaxDelta  float32    `json:"max_delta"`
	FrameRate float64    `json:"frame_rate"`
	Bodies    []string   `json:"bodies"`
}

// Catalog indexes runs in SQLite so listing does not walk run directories.
type Catalog struct {
	db *gorm.DB
}

func OpenCatalog(path string) (*Catalog, error) {
	if path == "" {
		path = MemoryCatalog
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Index inserts or replaces the row for meta.
func (c *Catalog) Index(meta RunMetadata) error {
	params, err := json.Marshal(RunParams{
		Gravity:   meta.Gravity,
		MaxDelta:  meta.MaxDelta,
		FrameRate: meta.FrameRate,
		Bodies:    meta.Bodies,
	})
	if err != nil {
		return err
	}
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return err
	}

	rec := RunRecord{
		ID:        meta.ID,
		CreatedAt: meta.Timestamp,
		Preset:    meta.Preset,
		Frames:    meta.Frames,
		SimTime:   meta.SimTime,
		Bodies:    len(meta.Bodies),
		Failed:    len(meta.SetupErrors),
		Params:    datatypes.JSON(params),
		Metrics:   datatypes.JSON(metrics),
	}
	return c.db.Save(&rec).Error
}

// List returns the newest runs first. A limit <= 0 returns all of them.
func (c *Catalog) List(limit int) ([]RunRecord, error) {
	var recs []RunRecord
	q := c.db.Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Catalog) Get(id string) (*RunRecord, error) {
	var rec RunRecord
	err := c.db.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ByPreset lists the runs recorded with one preset.
func (c *Catalog) ByPreset(preset string) ([]RunRecord, error) {
	var recs []RunRecord
	if err := c.db.Where("preset = ?", preset).Order("created_at desc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Decode unpacks the stored parameters and metrics of rec.
func (rec RunRecord) Decode() (RunParams, map[string]float64, error) {
	var p RunParams
	if err := json.Unmarshal(rec.Params, &p); err != nil {
		return p, nil, err
	}
	m := make(map[string]float64)
	if len(rec.Metrics) > 0 {
		if err := json.Unmarshal(rec.Metrics, &m); err != nil {
			return p, nil, err
		}
	}
	return p, m, nil
}

// Sync indexes every run of s that the catalog does not know yet and
// returns how many were added.
func (c *Catalog) Sync(s *Store) (int, error) {
	runs, err := s.List()
	if err != nil {
		return 0, err
	}
	added := 0
	for _, meta := range runs {
		var n int64
		if err := c.db.Model(&RunRecord{}).Where("id = ?", meta.ID).Count(&n).Error; err != nil {
			return added, err
		}
		if n > 0 {
			continue
		}
		if err := c.Index(meta); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
