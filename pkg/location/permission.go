package location

import (
	"os"
	"strings"
)

// AccessChecker reports whether fine-grained location access is granted.
type AccessChecker interface {
	FineLocationGranted() bool
}

// ConsentChecker grants access based on an explicit operator decision.
type ConsentChecker bool

func (c ConsentChecker) FineLocationGranted() bool {
	return bool(c)
}

// DeviceAccessChecker grants access when the GPS device node can be opened
// for reading by this process.
type DeviceAccessChecker struct {
	Port string
}

func (d DeviceAccessChecker) FineLocationGranted() bool {
	if d.Port == "" {
		return false
	}
	f, err := os.OpenFile(d.Port, os.O_RDONLY, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// APIKeyChecker grants access when a geolocation API key is configured.
type APIKeyChecker struct {
	APIKey string
}

func (a APIKeyChecker) FineLocationGranted() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

type allOf []AccessChecker

func (a allOf) FineLocationGranted() bool {
	for _, c := range a {
		if !c.FineLocationGranted() {
			return false
		}
	}
	return true
}

// AllOf grants access only when every checker does.
func AllOf(checkers ...AccessChecker) AccessChecker {
	return allOf(checkers)
}
