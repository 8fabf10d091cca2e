package types

import "errors"

// Error kinds from spec §7. Inside the ZK circuit every one of these is
// an assertion failure that aborts witness generation; off-circuit they
// are returned as ordinary Go errors so the host can decide UX.
var (
	// ErrInvalidInput marks a row invariant violation, out-of-range
	// index, or a capacity exceeding MaxCapacity.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCommitmentMismatch marks a recomputed input commitment that
	// does not equal the supplied public value.
	ErrCommitmentMismatch = errors.New("input commitment mismatch")

	// ErrInvalidPlaintext marks an ElGamal plaintext outside [0, 2^BitsDL).
	ErrInvalidPlaintext = errors.New("plaintext exceeds 2^BitsDL")

	// ErrDLSearchExhausted marks a baby-step/giant-step search that
	// exhausted its window without finding a collision (C1).
	ErrDLSearchExhausted = errors.New("discrete log search exhausted")

	// ErrDecryptionFailed is the host-facing error surfaced by the
	// decryption entry point (§6) when the DL search underlying it fails.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidMerkleProof marks a path that fails to reproduce the root.
	ErrInvalidMerkleProof = errors.New("invalid merkle proof")

	// ErrSolverUnsatisfiable marks an instance for which no stable
	// matching could be produced; it should never occur for inputs that
	// satisfy the data-model invariants and indicates a design bug.
	ErrSolverUnsatisfiable = errors.New("solver: no stable matching exists")
)
