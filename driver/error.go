package driver

// ErrAgain is returned by Engine.ReceiveFrame if no frame can be produced
// until more data is sent.
type ErrAgain struct{}

func (ErrAgain) Error() string {
	return "resource temporarily unavailable"
}

// ErrEOF is returned by Engine.ReceiveFrame once the engine is fully
// flushed after the end of the stream.
type ErrEOF struct{}

func (ErrEOF) Error() string {
	return "end of file"
}

type ErrUnknownDriver struct {
	Name string
}

func (e ErrUnknownDriver) Error() string {
	return "unknown driver '" + e.Name + "'"
}

type ErrUnsupportedKind struct {
	Driver string
	Kind   string
}

func (e ErrUnsupportedKind) Error() string {
	return "driver '" + e.Driver + "' does not support decoder kind '" + e.Kind + "'"
}
