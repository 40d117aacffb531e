package registry

import "fmt"

// Side classifies the runtime environment a mod requires.
type Side string

const (
	SideClient   Side = "Client"
	SideServer   Side = "Server"
	SideBoth     Side = "Both"
	SideOptional Side = "Optional"
	SideUnknown  Side = "Unknown"
)

// RawSide builds the fallback value for support pairs that match none of the
// named sides, carrying both original strings.
func RawSide(clientSide, serverSide string) Side {
	return Side(fmt.Sprintf("Client: %s, Server: %s", clientSide, serverSide))
}

// MapSides maps the registry's client_side/server_side pair to a Side.
// The rules are evaluated in order; the raw pair is the catch-all, not an
// error.
func MapSides(clientSide, serverSide string) Side {
	switch {
	case clientSide == "required" && serverSide == "required":
		return SideBoth
	case clientSide == "required":
		return SideClient
	case serverSide == "required":
		return SideServer
	case clientSide == "optional" && serverSide == "optional":
		return SideOptional
	default:
		return RawSide(clientSide, serverSide)
	}
}

// IsNamed reports whether s is one of the closed enumeration values rather
// than a raw pair.
func (s Side) IsNamed() bool {
	switch s {
	case SideClient, SideServer, SideBoth, SideOptional, SideUnknown:
		return true
	default:
		return false
	}
}

// String returns the side as written to exports.
func (s Side) String() string {
	return string(s)
}
