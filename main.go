/*
main.go

retire securely erases the internal disks of a Mac being decommissioned.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/CodeMonkeyCybersecurity/retire/cmd"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/telemetry"
)

func main() {
	logger.InitializeWithFallback()

	if err := telemetry.Init("retire"); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
	}

	err := cmd.Execute(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := retire_err.Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if serr := telemetry.Shutdown(shutdownCtx); serr != nil {
		fmt.Fprintf(os.Stderr, "telemetry shutdown: %v\n", serr)
	}
	cancel()
	_ = logger.Sync()

	os.Exit(retire_err.GetExitCode(err))
}
