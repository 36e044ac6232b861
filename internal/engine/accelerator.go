package engine

import (
	"os"
	"os/exec"
)

// detectAccelerator probes for an NVIDIA GPU. Detection is best-effort: any
// probe failure is treated as "no accelerator", never propagated.
func detectAccelerator() bool {
	if _, err := os.Stat("/proc/driver/nvidia/version"); err == nil {
		return true
	}
	if _, err := exec.LookPath("nvidia-smi"); err == nil {
		return true
	}
	return false
}
