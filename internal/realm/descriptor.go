package realm

import (
	"net"
	"strconv"
)

// Descriptor is the static identity of one realm.
type Descriptor struct {
	Name    string `json:"name" yaml:"name" xml:"name" toml:"name"`
	Address string `json:"address" yaml:"address" xml:"address" toml:"address"`
	Port    uint16 `json:"port" yaml:"port" xml:"port" toml:"port"`
}

func NewDescriptor(name, address string, port uint16) Descriptor {
	return Descriptor{Name: name, Address: address, Port: port}
}

func (d Descriptor) BindAddress() string {
	return net.JoinHostPort(d.Address, strconv.Itoa(int(d.Port)))
}
