//go:build profile && !windows

package profiler

import "syscall"

func hideWindowAttr() *syscall.SysProcAttr { return nil }
