package main

import (
	"os"

	"k8s.io/klog/v2"

	"github.com/Wonki4/k8s-report-dashboard/internal/cmd"
)

func main() {
	err := cmd.Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
