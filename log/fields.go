package log

import "go.uber.org/zap"

// field constructors, so callers don't need to import zap
var (
	Skip        = zap.Skip
	Binary      = zap.Binary
	Bool        = zap.Bool
	ByteString  = zap.ByteString
	Float64     = zap.Float64
	Float32     = zap.Float32
	Int         = zap.Int
	Int64       = zap.Int64
	Int32       = zap.Int32
	Ints        = zap.Ints
	String      = zap.String
	Strings     = zap.Strings
	Uint        = zap.Uint
	Time        = zap.Time
	Duration    = zap.Duration
	Any         = zap.Any
	ErrorField  = zap.Error
	NamedError  = zap.NamedError
	Stringer    = zap.Stringer
	Reflect     = zap.Reflect
	Namespace   = zap.Namespace
	Float64s    = zap.Float64s
	Durations   = zap.Durations
	StackSkip   = zap.StackSkip
	Stack       = zap.Stack
	Inline      = zap.Inline
	ObjectField = zap.Object
)
