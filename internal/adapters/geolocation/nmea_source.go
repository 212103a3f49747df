package geolocation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/ports"
	"os"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
)

// NMEASource reads a GPS receiver on a serial port and returns the first
// valid RMC fix. The port is opened per request, so a fix is never older
// than the request itself.
type NMEASource struct {
	portName string
	baudRate uint
	open     func() (io.ReadCloser, error)
}

func NewNMEASource(portName string, baudRate uint) *NMEASource {
	if baudRate == 0 {
		baudRate = 9600
	}

	s := &NMEASource{portName: portName, baudRate: baudRate}
	s.open = s.openSerial
	return s
}

// NewNMEAReaderSource builds a source over an arbitrary NMEA stream, e.g. a
// replayed log file.
func NewNMEAReaderSource(name string, open func() (io.ReadCloser, error)) *NMEASource {
	return &NMEASource{portName: name, open: open}
}

func (s *NMEASource) openSerial() (io.ReadCloser, error) {
	opts := serial.OpenOptions{
		PortName:              s.portName,
		BaudRate:              s.baudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	return serial.Open(opts)
}

func (s *NMEASource) Supported() bool {
	return s.portName != "" && s.open != nil
}

func (s *NMEASource) PermissionHint() string {
	return fmt.Sprintf("Add the service user to the 'dialout' group so it can read %s, then retry.", s.portName)
}

func (s *NMEASource) CurrentPosition(ctx context.Context, opts ports.PositionOptions) (domain.Coordinates, error) {
	port, err := s.open()
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return domain.Coordinates{}, fmt.Errorf("open gps port %s: %w: %w", s.portName, domain.ErrPermissionDenied, err)
		}
		return domain.Coordinates{}, fmt.Errorf("open gps port %s: %w: %w", s.portName, domain.ErrPositionUnavailable, err)
	}

	type result struct {
		c   domain.Coordinates
		err error
	}
	ch := make(chan result, 1)

	go func() {
		c, err := readFix(port)
		ch <- result{c: c, err: err}
	}()

	select {
	case r := <-ch:
		port.Close()
		return r.c, r.err
	case <-ctx.Done():
		// Closing the port unblocks the pending read.
		port.Close()
		return domain.Coordinates{}, fmt.Errorf("%w: no valid fix on %s: %w", domain.ErrTimeout, s.portName, ctx.Err())
	}
}

// readFix scans NMEA sentences until a valid RMC fix is found. Void fixes are
// skipped while the receiver acquires satellites.
func readFix(r io.Reader) (domain.Coordinates, error) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// NMEA sentences usually start with '$'
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// noisy GPS or partial sentences
			continue
		}

		if sentence.DataType() != nmea.TypeRMC {
			continue
		}

		m := sentence.(nmea.RMC)
		if m.Validity != nmea.ValidRMC {
			continue
		}

		return domain.Coordinates{Lat: m.Latitude, Lon: m.Longitude}, nil
	}

	if err := scanner.Err(); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: read gps stream: %w", domain.ErrPositionUnavailable, err)
	}
	return domain.Coordinates{}, fmt.Errorf("%w: gps stream ended without a valid fix", domain.ErrPositionUnavailable)
}
