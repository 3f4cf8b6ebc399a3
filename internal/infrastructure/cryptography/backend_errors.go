package cryptography

import (
	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"

	"go.uber.org/multierr"
)

// drainErrors empties the engine error queue and combines every entry,
// oldest first. It returns nil when the queue was already empty.
func drainErrors(queue crypto.ErrorQueue) error {
	var combined error
	for {
		entry, ok := queue.PopError()
		if !ok {
			return combined
		}
		combined = multierr.Append(combined, entry)
	}
}

// backendError turns a failed engine call into an OperationError of kind.
// The queued engine entries become the cause; callErr is used only when the
// engine queued nothing.
func backendError(queue crypto.ErrorQueue, kind error, op string, callErr error) error {
	cause := drainErrors(queue)
	if cause == nil {
		cause = callErr
	}
	return crypto.NewOperationError(kind, op, cause)
}
