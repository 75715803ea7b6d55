package location

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// defaultReadTimeout bounds a single serial read when the context carries no deadline.
const defaultReadTimeout = 5 * time.Second

// DeviceSensorProvider is responsible for retrieving location data from a GPS device connected via serial port.
type DeviceSensorProvider struct {
	port     string // Serial port to which the GPS device is connected
	baudRate int    // Baud rate for the serial communication
	now      func() time.Time
}

// NewDeviceSensorProvider creates a new instance of DeviceSensorProvider with the specified port and baud rate.
func NewDeviceSensorProvider(port string, baudRate int) *DeviceSensorProvider {
	return &DeviceSensorProvider{
		port:     port,
		baudRate: baudRate,
		now:      time.Now,
	}
}

// GetLocation reads NMEA sentences from the device until one carries a valid
// fix. The sensor always reports its best fix, so highAccuracy is ignored.
func (d *DeviceSensorProvider) GetLocation(ctx context.Context, _ bool) (Location, error) {
	readTimeout := defaultReadTimeout
	if deadline, ok := ctx.Deadline(); ok {
		readTimeout = time.Until(deadline)
		if readTimeout <= 0 {
			return Location{}, ctx.Err()
		}
	}

	c := &serial.Config{Name: d.port, Baud: d.baudRate, ReadTimeout: readTimeout}
	s, err := serial.OpenPort(c)
	if err != nil {
		return Location{}, fmt.Errorf("open gps port %s: %w", d.port, err)
	}
	defer s.Close() // Ensure the port is closed when done

	loc, err := readFix(ctx, s)
	if err != nil {
		return Location{}, err
	}
	loc.Timestamp = d.now()
	return loc, nil
}

// Close is a no-op; the port is opened per read.
func (d *DeviceSensorProvider) Close() error {
	return nil
}

// readFix scans r line by line and returns the first GGA or RMC sentence that
// carries a valid position. Malformed or unrelated sentences are skipped.
func readFix(ctx context.Context, r io.Reader) (Location, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Location{}, err
		}

		loc, ok := parseFix(strings.TrimSpace(scanner.Text()))
		if ok {
			return loc, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return Location{}, fmt.Errorf("read gps data: %w", err)
	}
	return Location{}, ErrNoFix
}

// parseFix extracts a position from a single NMEA sentence.
func parseFix(line string) (Location, bool) {
	if !strings.HasPrefix(line, "$") {
		return Location{}, false
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return Location{}, false
	}

	switch s := sentence.(type) {
	case nmea.GGA:
		if s.FixQuality == nmea.Invalid {
			return Location{}, false
		}
		return Location{
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Accuracy:  s.HDOP, // Use HDOP as a proxy for accuracy
		}, true
	case nmea.RMC:
		if s.Validity != nmea.ValidRMC {
			return Location{}, false
		}
		return Location{
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
		}, true
	}
	return Location{}, false
}
