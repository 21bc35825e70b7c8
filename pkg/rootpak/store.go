package rootpak

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mirkobrombin/rootpak/pkg/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Recorder keeps track of the container roots rootpak manages.
type Recorder interface {
	// RecordBuilt stores a freshly built root, replacing any previous
	// record for the same path.
	RecordBuilt(container types.Container) error

	// RecordStatus updates the status of the named container. When root
	// is set and unknown a record is created for it.
	RecordStatus(name, root string, status types.ContainerStatus, pid int) error

	// Forget drops the records of a root.
	Forget(root string) error
}

// ErrContainerNotFound is returned when no record matches a lookup.
var ErrContainerNotFound = errors.New("container not found")

type Store struct {
	db *gorm.DB
}

// NewStore opens, creating it if needed, the sqlite database at dbPath.
func NewStore(dbPath string) (s *Store, err error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(dbPath), err)
	}

	err = db.AutoMigrate(&types.Container{})
	if err != nil {
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) RecordBuilt(container types.Container) error {
	var existing types.Container
	err := s.db.Where("root_path = ?", container.RootPath).First(&existing).Error
	switch {
	case err == nil:
		container.Id = existing.Id
		container.Name = existing.Name
		container.CreatedAt = existing.CreatedAt
		return s.db.Save(&container).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		if container.Id == "" {
			container.Id = uuid.New().String()
		}
		return s.db.Create(&container).Error
	}
	return err
}

func (s *Store) RecordStatus(name, root string, status types.ContainerStatus, pid int) error {
	if root == "" {
		return s.db.Model(&types.Container{}).
			Where("name = ?", name).
			Updates(map[string]interface{}{"status": status, "pid": pid, "updated_at": time.Now()}).
			Error
	}

	var existing types.Container
	err := s.db.Where("root_path = ?", root).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&types.Container{
			Id:       uuid.New().String(),
			Name:     name,
			RootPath: root,
			Status:   status,
			Pid:      pid,
		}).Error
	}
	if err != nil {
		return err
	}

	existing.Name = name
	existing.Status = status
	existing.Pid = pid
	return s.db.Save(&existing).Error
}

func (s *Store) Forget(root string) error {
	return s.db.Where("root_path = ?", root).Delete(&types.Container{}).Error
}

// GetContainers returns every known root, oldest first.
func (s *Store) GetContainers() (containers []types.Container, err error) {
	err = s.db.Order("created_at").Find(&containers).Error
	return
}

// GetContainerByName returns the most recently updated root started
// under name.
func (s *Store) GetContainerByName(name string) (container types.Container, err error) {
	err = s.db.Where("name = ?", name).Order("updated_at desc").First(&container).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = fmt.Errorf("%w: %s", ErrContainerNotFound, name)
	}
	return
}
