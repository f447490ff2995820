package seatrac

// Status indicates whether the statistics of a result row were
// successfully computed.
type Status int

// Computed marks a row whose statistics are all present.  NotComputed
// marks a row that was requested but produced no statistics; the
// accompanying Reason states why.
const (
	Computed Status = iota
	NotComputed
)

// String returns a label for the status.
func (s Status) String() string {
	switch s {
	case Computed:
		return "computed"
	case NotComputed:
		return "not computed"
	}
	return "invalid"
}

// Reason explains why a result row holds no computed statistics.
type Reason int

// NoReason accompanies computed rows.  MissingValues indicates that at
// least one observation of the variable is missing.
// InsufficientGroupSize indicates that one of the comparison groups is
// empty after dropping missing values.  MissingJoinTarget indicates
// that fewer than two animals carried both series of a correlation
// pair.  AmbiguousVariable indicates that an animal contributed more
// than one record for the same variable key.  ZeroVariance indicates a
// constant series, for which a rank correlation is undefined.
const (
	NoReason Reason = iota
	MissingValues
	InsufficientGroupSize
	MissingJoinTarget
	AmbiguousVariable
	ZeroVariance
)

// String returns a label for the reason.
func (r Reason) String() string {
	switch r {
	case NoReason:
		return ""
	case MissingValues:
		return "missing values"
	case InsufficientGroupSize:
		return "insufficient group size"
	case MissingJoinTarget:
		return "missing join target"
	case AmbiguousVariable:
		return "ambiguous variable"
	case ZeroVariance:
		return "zero variance"
	}
	return "invalid"
}
