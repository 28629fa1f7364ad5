package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Device represents the data source used to collect random bits.
// Allowed values are: "rdrand" (the CPU's RDRAND instruction) and "pseudo"
// (a PCG stream seeded from RDRAND, used as a control).
type Device string

const (
	DeviceRDRAND Device = "rdrand"
	DevicePseudo Device = "pseudo"
)

// timestampLayout is the leading component of every capture name.
const timestampLayout = "20060102T150405"

// Validate checks whether d is one of the allowed device identifiers.
func (d Device) Validate() error {
	if d == DeviceRDRAND || d == DevicePseudo {
		return nil
	}
	return fmt.Errorf("invalid device: %q (allowed: rdrand, pseudo)", string(d))
}

// BuildBaseName builds the base filename using the convention:
//
//	YYYYMMDDTHHMMSS_{device}_s{bits}_i{interval}
//
// where bits is the sample size in bits per collection and interval is the
// number of seconds between collections. Both must be positive.
func BuildBaseName(now time.Time, device Device, bits int, intervalSeconds int) (string, error) {
	if err := device.Validate(); err != nil {
		return "", err
	}
	if bits <= 0 {
		return "", errors.New("bits must be > 0")
	}
	if intervalSeconds <= 0 {
		return "", errors.New("intervalSeconds must be > 0")
	}
	return fmt.Sprintf("%s_%s_s%d_i%d", now.Format(timestampLayout), string(device), bits, intervalSeconds), nil
}

// WithExt appends an extension to a base name. A leading dot on ext is
// optional. Empty ext returns base.
func WithExt(base string, ext string) string {
	if ext == "" {
		return base
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}

// JoinDir joins an optional directory with the filename.
func JoinDir(dir string, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// BuildBinCSVNames builds both .bin and .csv filenames (without directory).
func BuildBinCSVNames(now time.Time, device Device, bits int, intervalSeconds int) (binName string, csvName string, err error) {
	base, err := BuildBaseName(now, device, bits, intervalSeconds)
	if err != nil {
		return "", "", err
	}
	return WithExt(base, ".bin"), WithExt(base, ".csv"), nil
}

// BuildBinCSVPaths builds full paths for .bin and .csv inside dir (dir may be empty).
func BuildBinCSVPaths(dir string, now time.Time, device Device, bits int, intervalSeconds int) (binPath string, csvPath string, err error) {
	binName, csvName, err := BuildBinCSVNames(now, device, bits, intervalSeconds)
	if err != nil {
		return "", "", err
	}
	return JoinDir(dir, binName), JoinDir(dir, csvName), nil
}

// Info is what can be recovered from a capture file name.
type Info struct {
	Time            time.Time
	Device          Device
	Bits            int
	IntervalSeconds int
}

var namePattern = regexp.MustCompile(`^(\d{8}T\d{6})_([a-z]+)_s(\d+)_i(\d+)$`)

// ParseName is the inverse of BuildBaseName. path may carry a directory and
// an extension. The timestamp is interpreted in the local time zone.
func ParseName(path string) (Info, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	m := namePattern.FindStringSubmatch(base)
	if m == nil {
		return Info{}, fmt.Errorf("not a capture file name: %s", filepath.Base(path))
	}
	ts, err := time.ParseInLocation(timestampLayout, m[1], time.Local)
	if err != nil {
		return Info{}, fmt.Errorf("timestamp in %s: %w", filepath.Base(path), err)
	}
	device := Device(m[2])
	if err := device.Validate(); err != nil {
		return Info{}, err
	}
	bits, err := strconv.Atoi(m[3])
	if err != nil || bits <= 0 {
		return Info{}, fmt.Errorf("bit count in %s must be a positive integer", filepath.Base(path))
	}
	interval, err := strconv.Atoi(m[4])
	if err != nil || interval <= 0 {
		return Info{}, fmt.Errorf("interval in %s must be a positive integer", filepath.Base(path))
	}
	return Info{Time: ts, Device: device, Bits: bits, IntervalSeconds: interval}, nil
}
