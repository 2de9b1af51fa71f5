package tensor

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DeviceEnvVar names the environment variable consulted for the process's
// default device when none has been set explicitly, e.g. AXON_DEVICE=cpu:0.
const DeviceEnvVar = "AXON_DEVICE"

type backendRegistry struct {
	mu          sync.RWMutex
	backends    map[Device]Backend
	def         Device
	haveDef     bool
	defExplicit bool // set via SetDefaultDevice/UseDevice, wins over AXON_DEVICE
}

var registry backendRegistry

// RegisterBackend makes a backend's device addressable by the creation API.
// The first registered device becomes the process default unless overridden
// by SetDefaultDevice, UseDevice or the AXON_DEVICE environment variable.
//
// Call during package initialization; registering the same device twice fails.
func RegisterBackend(b Backend) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if registry.backends == nil {
		registry.backends = make(map[Device]Backend)
	}
	dev := b.Device()
	if dev.IsZero() {
		return errors.Wrapf(ErrInvalidArgument, "backend %q reports no device", b.Name())
	}
	if _, dup := registry.backends[dev]; dup {
		return errors.Wrapf(ErrInvalidArgument, "device %s already registered", dev)
	}
	registry.backends[dev] = b
	if !registry.haveDef {
		registry.def = dev
		registry.haveDef = true
	}
	klog.V(1).Infof("tensor: registered backend %q for device %s", b.Name(), dev)
	return nil
}

// BackendFor returns the backend serving the device.
func BackendFor(d Device) (Backend, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	b, ok := registry.backends[d]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "no backend registered for device %s", d)
	}
	return b, nil
}

// Devices returns every registered device.
func Devices() []Device {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	out := make([]Device, 0, len(registry.backends))
	for d := range registry.backends {
		out = append(out, d)
	}
	return out
}

// DefaultDevice resolves the process's current default device: an explicit
// SetDefaultDevice/UseDevice value if one is in force, else AXON_DEVICE if it
// names a registered device, else the first registered device.
func DefaultDevice() (Device, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if !registry.haveDef {
		return Device{}, errors.Wrap(ErrInvalidArgument, "no backend registered")
	}
	if registry.defExplicit {
		return registry.def, nil
	}
	if spec, ok := os.LookupEnv(DeviceEnvVar); ok {
		if d, err := ParseDevice(spec); err == nil {
			if _, registered := registry.backends[d]; registered {
				return d, nil
			}
			klog.Warningf("tensor: %s=%q names an unregistered device, ignoring", DeviceEnvVar, spec)
		} else {
			klog.Warningf("tensor: malformed %s=%q, ignoring", DeviceEnvVar, spec)
		}
	}
	return registry.def, nil
}

// SetDefaultDevice makes d the process default. d must be registered.
func SetDefaultDevice(d Device) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.backends[d]; !ok {
		return errors.Wrapf(ErrInvalidArgument, "no backend registered for device %s", d)
	}
	registry.def = d
	registry.haveDef = true
	registry.defExplicit = true
	klog.V(2).Infof("tensor: default device set to %s", d)
	return nil
}

// UseDevice makes d the default device and returns a restore function that
// MUST be called to reinstate the previous default (use defer). This is the
// scoped alternative to SetDefaultDevice for tests and bounded regions.
func UseDevice(d Device) (func(), error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.backends[d]; !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "no backend registered for device %s", d)
	}
	prev, had, expl := registry.def, registry.haveDef, registry.defExplicit
	registry.def = d
	registry.haveDef = true
	registry.defExplicit = true
	return func() {
		registry.mu.Lock()
		defer registry.mu.Unlock()
		registry.def, registry.haveDef, registry.defExplicit = prev, had, expl
	}, nil
}
