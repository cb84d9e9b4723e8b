package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ethicalpulse/dashboard/internal/ext"
	"ethicalpulse/dashboard/internal/model"
)

// SQL persists the collections as tables through gorm. The postgres driver
// targets a hosted database; sqlite is used for single-node setups and tests.
type SQL struct {
	db    *gorm.DB
	clock ext.Clock
	ids   ext.IDGenerator
}

func NewSQL(driver, dsn string, clock ext.Clock, ids ext.IDGenerator) (*SQL, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", driver, err)
	}
	if driver == "sqlite" {
		// An in-memory sqlite database exists per connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&model.Vulnerability{}, &model.Scan{}, &model.Project{}, &model.Remediation{}); err != nil {
		return nil, fmt.Errorf("migrating %s store: %w", driver, err)
	}
	return &SQL{db: db, clock: clock, ids: ids}, nil
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *SQL) ListVulnerabilities(ctx context.Context) ([]model.Vulnerability, error) {
	var out []model.Vulnerability
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

func (s *SQL) ListVulnerabilitiesByStatus(ctx context.Context, status model.VulnerabilityStatus) ([]model.Vulnerability, error) {
	var out []model.Vulnerability
	err := s.db.WithContext(ctx).Where("status = ?", status).Order("created_at desc").Find(&out).Error
	return out, err
}

func (s *SQL) ListVulnerabilitiesBySeverity(ctx context.Context, severity model.Severity) ([]model.Vulnerability, error) {
	var out []model.Vulnerability
	err := s.db.WithContext(ctx).Where("severity = ?", severity).Order("created_at desc").Find(&out).Error
	return out, err
}

func (s *SQL) GetVulnerability(ctx context.Context, id string) (model.Vulnerability, error) {
	var v model.Vulnerability
	err := s.db.WithContext(ctx).First(&v, "id = ?", id).Error
	return v, notFound(err)
}

func (s *SQL) InsertVulnerability(ctx context.Context, in model.VulnerabilityInput) (model.Vulnerability, error) {
	v, err := model.NewVulnerability(s.ids.GenerateID(), in, s.clock.Now())
	if err != nil {
		return model.Vulnerability{}, err
	}
	if err := s.db.WithContext(ctx).Create(&v).Error; err != nil {
		return model.Vulnerability{}, err
	}
	return v, nil
}

func (s *SQL) UpdateVulnerability(ctx context.Context, id string, patch model.VulnerabilityPatch) (model.Vulnerability, error) {
	var v model.Vulnerability
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&v, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := patch.Apply(&v, s.clock.Now()); err != nil {
			return err
		}
		return tx.Save(&v).Error
	})
	if err != nil {
		return model.Vulnerability{}, err
	}
	return v, nil
}

func (s *SQL) ListScans(ctx context.Context) ([]model.Scan, error) {
	var out []model.Scan
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

func (s *SQL) ListScansByStatus(ctx context.Context, status model.ScanStatus) ([]model.Scan, error) {
	var out []model.Scan
	err := s.db.WithContext(ctx).Where("status = ?", status).Order("created_at desc").Find(&out).Error
	return out, err
}

func (s *SQL) GetScan(ctx context.Context, id string) (model.Scan, error) {
	var scan model.Scan
	err := s.db.WithContext(ctx).First(&scan, "id = ?", id).Error
	return scan, notFound(err)
}

func (s *SQL) InsertScan(ctx context.Context, in model.ScanInput) (model.Scan, error) {
	scan, err := model.NewScan(s.ids.GenerateID(), in, s.clock.Now())
	if err != nil {
		return model.Scan{}, err
	}
	if err := s.db.WithContext(ctx).Create(&scan).Error; err != nil {
		return model.Scan{}, err
	}
	return scan, nil
}

func (s *SQL) UpdateScan(ctx context.Context, id string, patch model.ScanPatch) (model.Scan, error) {
	return s.updateScan(ctx, id, func(model.Scan) model.ScanPatch { return patch })
}

func (s *SQL) StartScan(ctx context.Context, id string, at time.Time) (model.Scan, error) {
	return s.updateScan(ctx, id, func(model.Scan) model.ScanPatch { return model.StartPatch(at) })
}

func (s *SQL) CompleteScan(ctx context.Context, id string, at time.Time, findings model.FindingsSummary) (model.Scan, error) {
	return s.updateScan(ctx, id, func(scan model.Scan) model.ScanPatch {
		return model.CompletePatch(scan.StartTime, at, findings)
	})
}

func (s *SQL) updateScan(ctx context.Context, id string, patchFor func(model.Scan) model.ScanPatch) (model.Scan, error) {
	var scan model.Scan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&scan, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := patchFor(scan).Apply(&scan); err != nil {
			return err
		}
		return tx.Save(&scan).Error
	})
	if err != nil {
		return model.Scan{}, err
	}
	return scan, nil
}

func (s *SQL) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

func (s *SQL) GetProject(ctx context.Context, id string) (model.Project, error) {
	var p model.Project
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return p, notFound(err)
}

func (s *SQL) InsertProject(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	p := model.NewProject(s.ids.GenerateID(), in, s.clock.Now())
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (s *SQL) ListRemediations(ctx context.Context) ([]model.Remediation, error) {
	var out []model.Remediation
	err := s.db.WithContext(ctx).Order("executed_at desc").Find(&out).Error
	return out, err
}

func (s *SQL) InsertRemediation(ctx context.Context, r model.Remediation) (model.Remediation, error) {
	if r.ID == "" {
		r.ID = s.ids.GenerateID()
	}
	if r.ExecutedAt.IsZero() {
		r.ExecutedAt = s.clock.Now()
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return model.Remediation{}, err
	}
	return r, nil
}

func (s *SQL) ImportVulnerability(ctx context.Context, v model.Vulnerability) error {
	return s.db.WithContext(ctx).Create(&v).Error
}

func (s *SQL) ImportScan(ctx context.Context, scan model.Scan) error {
	return s.db.WithContext(ctx).Create(&scan).Error
}

func (s *SQL) ImportProject(ctx context.Context, p model.Project) error {
	return s.db.WithContext(ctx).Create(&p).Error
}
