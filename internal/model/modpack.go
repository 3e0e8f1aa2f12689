package model

import "fmt"

// ContentPackArchive tracks a single content pack transfer
type ContentPackArchive struct {
	URL         string
	StagingPath string
	// ExpectedBytes comes from the transfer headers; zero means unknown
	ExpectedBytes    int64
	TransferredBytes int64
}

// Verify checks that a transfer with a declared length delivered exactly that many bytes
func (a ContentPackArchive) Verify() error {
	if a.ExpectedBytes > 0 && a.TransferredBytes != a.ExpectedBytes {
		return fmt.Errorf("%w: received %d of %d bytes from %s",
			ErrContentPackTransferIncomplete, a.TransferredBytes, a.ExpectedBytes, a.URL)
	}
	return nil
}
