package cli

import (
	"errors"

	"github.com/cwmc/portable-launcher/internal/model"
)

// Process exit codes
const (
	ExitOK                = 0
	ExitGeneric           = 1
	ExitIdentity          = 10
	ExitDirectory         = 11
	ExitTeamNotFound      = 12
	ExitTransfer          = 13
	ExitExtraction        = 14
	ExitFilesystem        = 15
	ExitRuntimeLaunchFail = 20
)

var exitCodes = []struct {
	err  error
	code int
}{
	{model.ErrIdentityClaimsIncomplete, ExitIdentity},
	{model.ErrDirectoryUnreachable, ExitDirectory},
	{model.ErrTeamNotFound, ExitTeamNotFound},
	{model.ErrContentPackTransferIncomplete, ExitTransfer},
	{model.ErrContentPackExtractionFailed, ExitExtraction},
	{model.ErrFilesystemOperationFailed, ExitFilesystem},
	{model.ErrRuntimeLaunchFailed, ExitRuntimeLaunchFail},
}

// ExitCode maps an error returned by the launcher to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for _, e := range exitCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return ExitGeneric
}
