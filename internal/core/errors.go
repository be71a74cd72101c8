package core

// CodedError is implemented by domain errors that carry a machine-readable
// code alongside the human-readable detail.
type CodedError interface {
	error
	ErrorCode() string
}
