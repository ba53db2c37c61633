package help

import (
	"os"
	"os/user"
	"path/filepath"
)

func HomeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	if u, err := user.Current(); err == nil {
		return u.HomeDir
	}
	// Windows fallback
	if h := os.Getenv("USERPROFILE"); h != "" {
		return h
	}
	return "." // last resort: current dir
}

// DefaultKubeconfig is the first entry of $KUBECONFIG, else ~/.kube/config.
func DefaultKubeconfig() string {
	for _, p := range filepath.SplitList(os.Getenv("KUBECONFIG")) {
		if p != "" {
			return p
		}
	}
	return filepath.Join(HomeDir(), ".kube", "config")
}

// DefaultLogFile keeps TUI logs off the terminal.
func DefaultLogFile() string {
	return filepath.Join(HomeDir(), ".gpudash.log")
}
