//go:build !linux

package gpu

func closeFD(fd int) {}
