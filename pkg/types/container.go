package types

import "time"

// ContainerStatus is the last lifecycle state rootpak observed for a
// container.
type ContainerStatus string

const (
	StatusBuilt   ContainerStatus = "built"
	StatusRunning ContainerStatus = "running"
	StatusStopped ContainerStatus = "stopped"
)

// Container is the struct that represents a container root in the store
// and in the rootpak context.
type Container struct {
	// Id is the unique identifier of the record.
	Id string `gorm:"primaryKey"`

	// Name is the runtime name the container is started under. The
	// runtime guarantees at most one running instance per name, rootpak
	// does not check for collisions.
	Name string `gorm:"index"`

	// RootPath is the absolute path of the container root filesystem.
	RootPath string `gorm:"uniqueIndex"`

	// BaseImage is the image reference the root was copied from.
	BaseImage string

	// AptProxy is the apt proxy written into the root, empty when the
	// root fetches packages directly.
	AptProxy string

	// Status is the last known lifecycle state.
	Status ContainerStatus

	// Pid is the init process pid as reported by the runtime, zero when
	// the container is not running.
	Pid int

	CreatedAt time.Time
	UpdatedAt time.Time
}
