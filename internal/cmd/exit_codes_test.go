package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/spf13/pflag"

	"github.com/netcanis/feat-network/internal/api"
)

func TestExitCodeNil(t *testing.T) {
	if got := ExitCode(nil); got != exitOK {
		t.Errorf("ExitCode(nil) = %d, want %d", got, exitOK)
	}
}

func TestExitCodeHelp(t *testing.T) {
	if got := ExitCode(pflag.ErrHelp); got != exitOK {
		t.Errorf("ExitCode(ErrHelp) = %d, want %d", got, exitOK)
	}
}

func TestExitCodeFromAPIStatus(t *testing.T) {
	tests := []struct {
		status int
		want   int
	}{
		{401, exitAuth},
		{403, exitForbidden},
		{404, exitNotFound},
		{429, exitRateLimited},
		{500, exitServer},
		{503, exitServer},
		{400, exitUsage},
		{422, exitUsage},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := &api.APIError{StatusCode: tt.status, Body: "boom"}
			if got := ExitCode(err); got != tt.want {
				t.Errorf("ExitCode(status %d) = %d, want %d", tt.status, got, tt.want)
			}
		})
	}
}

func TestExitCodeHandledError(t *testing.T) {
	inner := &api.APIError{StatusCode: 404, Body: "gone"}
	handled := &handledError{err: inner, exitCode: ExitCode(inner)}
	if got := ExitCode(handled); got != exitNotFound {
		t.Errorf("ExitCode(handled 404) = %d, want %d", got, exitNotFound)
	}
}

func TestExitCodeUsage(t *testing.T) {
	if got := ExitCode(errors.New(`unknown command "foo"`)); got != exitUsage {
		t.Errorf("ExitCode(unknown command) = %d, want %d", got, exitUsage)
	}
	if got := ExitCode(errors.New("--url is required")); got != exitUsage {
		t.Errorf("ExitCode(required flag) = %d, want %d", got, exitUsage)
	}
}

func TestExitCodeNetwork(t *testing.T) {
	if got := ExitCode(context.DeadlineExceeded); got != exitNetwork {
		t.Errorf("ExitCode(deadline) = %d, want %d", got, exitNetwork)
	}
	opErr := &net.OpError{Op: "dial", Err: errors.New("refused")}
	if got := ExitCode(opErr); got != exitNetwork {
		t.Errorf("ExitCode(OpError) = %d, want %d", got, exitNetwork)
	}
}

func TestExitCodeGeneric(t *testing.T) {
	if got := ExitCode(errors.New("boom")); got != exitGeneric {
		t.Errorf("ExitCode(generic) = %d, want %d", got, exitGeneric)
	}
}
