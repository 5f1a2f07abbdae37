package collectors

import (
	"log"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// HostInfo describes the machine the channels were read from.
type HostInfo struct {
	Hostname        string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	Uptime          uint64
}

var hostInfo = host.Info

// GetHostInfo returns what gopsutil knows about the local host. Fields it
// cannot read stay "Unknown".
func GetHostInfo() HostInfo {
	info := HostInfo{
		Hostname:        "Unknown",
		Platform:        "Unknown",
		PlatformVersion: "Unknown",
		KernelVersion:   "Unknown",
	}
	hi, err := hostInfo()
	if err != nil {
		return info
	}
	if hi.Hostname != "" {
		info.Hostname = hi.Hostname
	}
	if hi.Platform != "" {
		info.Platform = hi.Platform
	}
	if hi.PlatformVersion != "" {
		info.PlatformVersion = hi.PlatformVersion
	}
	if hi.KernelVersion != "" {
		info.KernelVersion = hi.KernelVersion
	}
	info.Uptime = hi.Uptime
	return info
}

// SystemName returns configured when it is set, the host name otherwise.
func SystemName(configured string) string {
	if name := strings.TrimSpace(configured); name != "" {
		return name
	}
	if hi, err := hostInfo(); err == nil && hi.Hostname != "" {
		return hi.Hostname
	}
	hn, err := os.Hostname()
	if err != nil {
		log.Printf("Unable to get hostname: %v", err)
		return "localhost"
	}
	return hn
}
