// Package sysinfo gathers the host summary shown by the sysinfo command.
// Collection is best-effort: a probe that fails leaves its section empty
// rather than failing the whole report.
package sysinfo

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// Report is one snapshot of the host.
type Report struct {
	Hostname      string
	OS            string
	Arch          string
	Platform      string
	KernelVersion string

	MemoryTotal uint64
	MemoryUsed  uint64

	Disks      []DiskUsage
	Interfaces []Interface
}

// DiskUsage describes one mounted filesystem.
type DiskUsage struct {
	Mountpoint string
	Total      uint64
	Used       uint64
}

// Interface describes one network interface and its addresses.
type Interface struct {
	Name  string
	Addrs []string
}

// Collect probes the host. Individual probe failures are tolerated; only
// context cancellation aborts.
func Collect(ctx context.Context) (*Report, error) {
	r := &Report{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		r.Hostname = info.Hostname
		r.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		r.KernelVersion = info.KernelVersion
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		r.MemoryTotal = vm.Total
		r.MemoryUsed = vm.Used
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if parts, err := disk.PartitionsWithContext(ctx, false); err == nil {
		for _, p := range parts {
			usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
			if err != nil {
				continue
			}
			r.Disks = append(r.Disks, DiskUsage{
				Mountpoint: p.Mountpoint,
				Total:      usage.Total,
				Used:       usage.Used,
			})
		}
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if ifaces, err := net.InterfacesWithContext(ctx); err == nil {
		for _, iface := range ifaces {
			ni := Interface{Name: iface.Name}
			for _, addr := range iface.Addrs {
				ni.Addrs = append(ni.Addrs, addr.Addr)
			}
			r.Interfaces = append(r.Interfaces, ni)
		}
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return r, nil
}
