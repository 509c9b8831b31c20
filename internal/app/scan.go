package app

import (
	"errors"

	"kunai/internal/logflags"
	"kunai/internal/memory"
)

// ScanParams selects the process and pattern for a one-shot scan.
type ScanParams struct {
	PID     string
	Pattern string
	// WritableOnly excludes regions without write permission.
	WritableOnly bool
}

// ScanReport is the outcome of Scan. Match.Region indexes Regions.
type ScanReport struct {
	Regions memory.Map
	memory.ScanResult
}

// Scan reads the region table of the process and scans it once for the pattern.
func (a *App) Scan(params ScanParams) (ScanReport, error) {
	if params.Pattern == "" {
		return ScanReport{}, memory.ErrEmptyPattern
	}
	regions, err := a.Maps(params.PID)
	if err != nil {
		return ScanReport{}, err
	}
	if params.WritableOnly {
		for i := range regions {
			if !regions[i].Writable() {
				regions[i].ShouldScan = false
			}
		}
	}
	if len(regions.Scannable()) == 0 {
		return ScanReport{Regions: regions}, errors.New("no regions selected for scanning")
	}

	mem, err := a.Accessor(params.PID)
	if err != nil {
		return ScanReport{}, err
	}
	sc := memory.NewScanner(mem)
	sc.MaxRegionSize = a.cfg.MaxRegionSize
	sc.Log = logflags.ScanLogger().WithField("pid", params.PID)

	res, err := sc.Scan(regions, []byte(params.Pattern))
	if err != nil {
		return ScanReport{}, err
	}
	return ScanReport{Regions: regions, ScanResult: res}, nil
}
