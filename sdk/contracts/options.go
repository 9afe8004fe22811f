package contracts

// RouterOptions defines the configuration options for the event router.
type RouterOptions struct {
	Logger        Logger        // Logger for logging events and errors.
	LogLevel      LogLevel      // Level of logging to use.
	MIDITransport MIDITransport // Network MIDI session transport.
	OSCSender     OSCSender     // Sender for outbound OSC messages.
	OnError       func(error)   // Callback for runtime dispatch and transport errors.
}

// Option is a function that modifies RouterOptions.
type Option func(*RouterOptions)

// WithLogger sets the logger for the router.
func WithLogger(l Logger) Option {
	return func(opts *RouterOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the router.
func WithLogLevel(level LogLevel) Option {
	return func(opts *RouterOptions) {
		opts.LogLevel = level
	}
}

// WithMIDITransport sets the network MIDI transport used for session I/O.
func WithMIDITransport(t MIDITransport) Option {
	return func(opts *RouterOptions) {
		opts.MIDITransport = t
	}
}

// WithOSCSender sets the sender used for outbound OSC messages.
func WithOSCSender(s OSCSender) Option {
	return func(opts *RouterOptions) {
		opts.OSCSender = s
	}
}

// WithErrorReporter sets the callback invoked for runtime errors that do not
// halt event processing, such as per-command dispatch failures.
func WithErrorReporter(fn func(error)) Option {
	return func(opts *RouterOptions) {
		opts.OnError = fn
	}
}
