package identity

import (
	"errors"
	"fmt"
	"os"

	"github.com/benmeehan/fog-agent/pkg/file"
	"github.com/google/uuid"
)

// Identity holds the device's unique identifier and display name.
type Identity struct {
	ID   string `json:"device_id"`
	Name string `json:"device_name,omitempty"`
}

// DeviceInfoInterface defines methods for managing device identity.
type DeviceInfoInterface interface {
	LoadDeviceInfo() error
	GetDeviceID() string
	GetDeviceIdentity() Identity
}

// DeviceInfo manages the device identity and its associated file operations.
type DeviceInfo struct {
	DeviceInfoFile string
	identity       Identity
	fileOps        file.FileOperations
}

// NewDeviceInfo initializes a new DeviceInfo instance.
func NewDeviceInfo(filePath string, fileOps file.FileOperations) *DeviceInfo {
	return &DeviceInfo{
		DeviceInfoFile: filePath,
		fileOps:        fileOps,
	}
}

// LoadDeviceInfo reads the identity file. When the file is missing or has no
// device ID a random one is generated and written back so it stays stable
// across restarts.
func (d *DeviceInfo) LoadDeviceInfo() error {
	err := d.fileOps.ReadJsonFile(d.DeviceInfoFile, &d.identity)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read device identity: %w", err)
	}

	if d.identity.ID != "" {
		return nil
	}

	d.identity.ID = uuid.New().String()
	if err := d.fileOps.WriteJsonFile(d.DeviceInfoFile, d.identity); err != nil {
		return fmt.Errorf("save device identity: %w", err)
	}
	return nil
}

// GetDeviceIdentity returns the current device Identity.
func (d *DeviceInfo) GetDeviceIdentity() Identity {
	return d.identity
}

// GetDeviceID returns the current device ID.
func (d *DeviceInfo) GetDeviceID() string {
	return d.identity.ID
}
