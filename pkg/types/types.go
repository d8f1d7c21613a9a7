// Package types holds the shared value types used across the engine: field
// type tags, error kinds, and the intervention verdict reported to the host.
package types

import "fmt"

// FieldType is the type tag carried by a Field. It is immutable once a
// field is created.
type FieldType int

const (
	FieldTypeNum FieldType = iota
	FieldTypeUnum
	FieldTypeFloat
	FieldTypeNulStr
	FieldTypeByteStr
	FieldTypeList
	FieldTypeStream
)

func (t FieldType) String() string {
	switch t {
	case FieldTypeNum:
		return "NUM"
	case FieldTypeUnum:
		return "UNUM"
	case FieldTypeFloat:
		return "FLOAT"
	case FieldTypeNulStr:
		return "NULSTR"
	case FieldTypeByteStr:
		return "BYTESTR"
	case FieldTypeList:
		return "LIST"
	case FieldTypeStream:
		return "STREAM"
	default:
		return "UNKNOWN"
	}
}

// Kind is an error kind as defined by the engine's error handling design.
// Codes are stable; names are illustrative.
type Kind int

const (
	Ok Kind = iota
	Declined
	NotFound
	Exists
	Invalid
	Alloc
	NotImpl
	Other
)

func (k Kind) String() string {
	switch k {
	case Ok:
		return "Ok"
	case Declined:
		return "Declined"
	case NotFound:
		return "NotFound"
	case Exists:
		return "Exists"
	case Invalid:
		return "Invalid"
	case Alloc:
		return "Alloc"
	case NotImpl:
		return "NotImpl"
	case Other:
		return "Other"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind with a diagnostic message. Components return *Error
// (or nil) rather than bare Kind values so the message survives across
// call boundaries the way log lines expect.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// NewError builds an *Error with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind carried by err, defaulting to Other for errors
// that did not originate in this engine (e.g. raw I/O errors).
func KindOf(err error) Kind {
	if err == nil {
		return Ok
	}
	var e *Error
	if asError(err, &e) {
		return e.Kind
	}
	return Other
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// BlockMode is the per-transaction intervention state. It is
// monotonic-additive: transitions only ever move toward a stronger mode.
type BlockMode int

const (
	BlockModeNone BlockMode = iota
	BlockModeAdvisory
	BlockModePhase
	BlockModeImmediate
)

func (m BlockMode) String() string {
	switch m {
	case BlockModeNone:
		return "none"
	case BlockModeAdvisory:
		return "advisory"
	case BlockModePhase:
		return "phase"
	case BlockModeImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// InterventionAction is the verdict reported to the host adapter.
type InterventionAction int

const (
	InterventionNone InterventionAction = iota
	InterventionAdvise
	InterventionBlock
)

func (a InterventionAction) String() string {
	switch a {
	case InterventionNone:
		return "None"
	case InterventionAdvise:
		return "Advise"
	case InterventionBlock:
		return "Block"
	default:
		return "Unknown"
	}
}

// Intervention is the value handed back to the host from
// transaction_finished and at phase boundaries.
type Intervention struct {
	Action InterventionAction
	Status int
}

// Transaction flag bits. Additive; never cleared once set within a
// transaction's lifetime.
type TxFlag uint32

const (
	TxFlagSuspicious TxFlag = 1 << iota
	TxFlagBlockAdvisory
	TxFlagBlockPhase
	TxFlagBlockImmediate
)

func (f TxFlag) Has(bit TxFlag) bool {
	return f&bit != 0
}
