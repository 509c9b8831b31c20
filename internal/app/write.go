package app

import (
	"errors"
	"fmt"

	"kunai/internal/logflags"
	"kunai/internal/memory"
)

// WriteParams describes a single direct write.
type WriteParams struct {
	PID  string
	Addr uint64
	Data []byte
}

// WriteResult reports where the bytes landed.
type WriteResult struct {
	Region memory.Region
	Old    []byte
}

// Write stores params.Data at params.Addr. The whole range must fall inside
// one mapped region. The previous bytes are read first and returned so the
// caller can show what changed.
func (a *App) Write(params WriteParams) (WriteResult, error) {
	if len(params.Data) == 0 {
		return WriteResult{}, errors.New("nothing to write")
	}
	end := params.Addr + uint64(len(params.Data))
	if end < params.Addr {
		return WriteResult{}, fmt.Errorf("address range at %#x overflows", params.Addr)
	}

	regions, err := a.Maps(params.PID)
	if err != nil {
		return WriteResult{}, err
	}
	var (
		region memory.Region
		found  bool
	)
	for _, r := range regions {
		if r.Contains(params.Addr, end) {
			region, found = r, true
			break
		}
	}
	if !found {
		return WriteResult{}, fmt.Errorf("address range %#x-%#x is not inside a mapped region", params.Addr, end)
	}

	mem, err := a.Accessor(params.PID)
	if err != nil {
		return WriteResult{}, err
	}
	old, err := mem.ReadExact(params.Addr, len(params.Data))
	if err != nil {
		return WriteResult{}, fmt.Errorf("read current value: %w", err)
	}
	if err := mem.WriteExact(params.Addr, params.Data); err != nil {
		return WriteResult{}, err
	}
	logflags.SessionLogger().WithField("pid", params.PID).Infof("write %d byte(s) at %#x", len(params.Data), params.Addr)
	return WriteResult{Region: region, Old: old}, nil
}
