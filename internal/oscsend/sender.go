// Package oscsend implements contracts.OSCSender over UDP using go-osc.
package oscsend

import (
	"fmt"
	"sync"

	"github.com/chabad360/go-osc/osc"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// UDPSender encodes and sends OSC messages over UDP. Clients are cached per
// endpoint so repeated sends to the same destination reuse the connection.
type UDPSender struct {
	logger contracts.Logger

	mu      sync.Mutex
	clients map[string]*osc.Client
}

// NewUDPSender returns an OSC sender ready for use.
func NewUDPSender(logger contracts.Logger) *UDPSender {
	return &UDPSender{
		logger:  logger,
		clients: make(map[string]*osc.Client),
	}
}

// Send encodes one OSC message and delivers it to host:port.
func (s *UDPSender) Send(host string, port int, address string, args []contracts.OSCArg) error {
	msg := osc.NewMessage(address)
	for _, arg := range args {
		msg.Append(arg.Value())
	}

	client := s.clientFor(host, port)
	if err := client.Send(msg); err != nil {
		return fmt.Errorf("osc send to %s:%d: %w", host, port, err)
	}

	s.logger.Debug("osc message sent",
		s.logger.Field().String("host", host),
		s.logger.Field().Int("port", port),
		s.logger.Field().String("address", address),
		s.logger.Field().Int("args", len(args)),
	)
	return nil
}

func (s *UDPSender) clientFor(host string, port int) *osc.Client {
	key := fmt.Sprintf("%s:%d", host, port)
	s.mu.Lock()
	defer s.mu.Unlock()
	client, ok := s.clients[key]
	if !ok {
		client = osc.NewClient(host, port)
		s.clients[key] = client
	}
	return client
}
