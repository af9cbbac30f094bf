package main

import (
	"fmt"

	"github.com/jihwankim/rdt-sim/pkg/rdt/protocols/rdt1"
	"github.com/jihwankim/rdt-sim/pkg/rdt/protocols/rdt22"
	"github.com/jihwankim/rdt-sim/pkg/rdt/protocols/rdt30"
	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
)

// newProtocolPair constructs a fresh sender/receiver pair for the named
// built-in reference protocol. Student protocols are used by importing
// simcore.Protocol directly in Go code rather than through this CLI — this
// registry only serves the three built-ins the worked examples need.
func newProtocolPair(name string) (simcore.Protocol, simcore.Protocol, error) {
	switch name {
	case "rdt1":
		return &rdt1.Sender{}, &rdt1.Receiver{}, nil
	case "rdt22":
		return &rdt22.Sender{}, &rdt22.Receiver{}, nil
	case "rdt30":
		return &rdt30.Sender{}, &rdt30.Receiver{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown protocol %q (want rdt1, rdt22, or rdt30)", name)
	}
}
