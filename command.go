package station

import "fmt"

// Command is the payload of a request, without address and terminator.
type Command string

// Commands understood by the station.
const (
	CommandAck                  Command = ""
	CommandComposite            Command = "R0"
	CommandWind                 Command = "R1"
	CommandPTH                  Command = "R2"
	CommandPrecipitation        Command = "R3"
	CommandSupervisor           Command = "R5"
	CommandGetAddress           Command = "?"
	CommandReset                Command = "XZ"
	CommandPrecipCounterReset   Command = "XZRU"
	CommandPrecipIntensityReset Command = "XZRI"
	CommandMeasurementReset     Command = "XZM"
	CommandAutomaticMode        Command = "XU,M=R"
	CommandPolledMode           Command = "XU,M=P"
)

// Terminator ends every frame, in both directions.
var Terminator = []byte("\r\n")

// SetAddressCommand returns the command that changes the station address.
func SetAddressCommand(address int) Command {
	return Command(fmt.Sprintf("A%d", address))
}

// Frame returns the wire representation of a command sent to the station at
// the given address.
func (c Command) Frame(address int) []byte {
	frame := []byte(fmt.Sprintf("%d%s", address, c))

	return append(frame, Terminator...)
}

// label is the value used for the command label of metrics.
func (c Command) label() string {
	if c == CommandAck {
		return "ack"
	}

	return string(c)
}
