package router

import (
	"github.com/leandrodaf/midirouter/internal/logger"
	"github.com/leandrodaf/midirouter/internal/oscsend"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// applyDefaultOptions sets default values for RouterOptions if not
// explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can
// modify RouterOptions.
//
// Returns:
//   - contracts.RouterOptions: The finalized options with defaults applied.
func applyDefaultOptions(opts ...contracts.Option) contracts.RouterOptions {
	options := &contracts.RouterOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.OSCSender == nil {
		options.OSCSender = oscsend.NewUDPSender(options.Logger)
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options
}
