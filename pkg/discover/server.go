/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package discover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-advatek/pkg/config"
	"jinr.ru/greenlab/go-advatek/pkg/layers"
	"jinr.ru/greenlab/go-advatek/pkg/log"
	"jinr.ru/greenlab/go-advatek/pkg/metrics"
	"jinr.ru/greenlab/go-advatek/pkg/srv"
)

// DeviceHandler is called for every poll reply the server receives
type DeviceHandler func(*Device)

// Server polls devices and turns their replies into Device records.
// Replies are received on the same socket the polls are sent from.
type Server struct {
	*config.DiscoverConfig
	conn      *net.UDPConn
	broadcast *net.UDPAddr
	chIn      chan srv.InPacket
	done      chan struct{}
	closeOnce sync.Once
	sessionMu sync.Mutex
	sessionID string
	handler   DeviceHandler
	metrics   *metrics.Metrics
}

func NewServer(cfg *config.DiscoverConfig, handler DeviceHandler, m *metrics.Metrics) (*Server, error) {
	log.Debug("Initializing discover server with address: %s port: %d iface: %s",
		cfg.Address, cfg.Port, cfg.Interface)

	broadcast, err := BroadcastAddr(cfg)
	if err != nil {
		return nil, err
	}

	uaddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", cfg.Address, cfg.Port))
	if err != nil {
		return nil, err
	}

	// broadcast permission is granted by default on udp4 sockets in Go
	conn, err := net.ListenUDP("udp4", uaddr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		DiscoverConfig: cfg,
		conn:           conn,
		broadcast:      broadcast,
		chIn:           make(chan srv.InPacket),
		done:           make(chan struct{}),
		handler:        handler,
		metrics:        m,
	}
	return s, nil
}

// BroadcastAddr returns the address polls are sent to. Broadcast may carry its
// own port, otherwise the discover port is used. When Interface is set the
// broadcast address of its first IPv4 subnet is used instead.
func BroadcastAddr(cfg *config.DiscoverConfig) (*net.UDPAddr, error) {
	if cfg.Interface != "" {
		iface, err := net.InterfaceByName(cfg.Interface)
		if err != nil {
			return nil, err
		}
		ip, err := interfaceBroadcast(iface)
		if err != nil {
			return nil, err
		}
		return &net.UDPAddr{IP: ip, Port: cfg.Port}, nil
	}
	if strings.Contains(cfg.Broadcast, ":") {
		return net.ResolveUDPAddr("udp4", cfg.Broadcast)
	}
	return net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", cfg.Broadcast, cfg.Port))
}

func interfaceBroadcast(iface *net.Interface) (net.IP, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, err
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil {
			continue
		}
		mask := ipNet.Mask
		if len(mask) == net.IPv6len {
			mask = mask[12:]
		}
		broadcast := make(net.IP, net.IPv4len)
		for i := range ip {
			broadcast[i] = ip[i] | ^mask[i]
		}
		return broadcast, nil
	}
	return nil, ErrNoBroadcast{Interface: iface.Name}
}

// SetSessionID sets the session ID stamped on every Device the server emits from now on
func (s *Server) SetSessionID(id string) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	s.sessionID = id
}

func (s *Server) SessionID() string {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return s.sessionID
}

// LocalAddr returns the address the server socket is bound to
func (s *Server) LocalAddr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

// Poll broadcasts a poll request
func (s *Server) Poll() error {
	return s.PollTo(s.broadcast)
}

// PollTo sends a poll request to a single address
func (s *Server) PollTo(addr *net.UDPAddr) error {
	log.Debug("Sending poll to %s", addr)
	if _, err := s.conn.WriteToUDP(layers.EncodePoll(), addr); err != nil {
		return err
	}
	s.metrics.ObservePoll()
	return nil
}

// Close stops packet decoding and closes the socket
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return s.conn.Close()
}

// ReadPacketData reads the input queue and returns packet data and metadata.
// This method is from PacketDataSource interface.
func (s *Server) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	select {
	case packet := <-s.chIn:
		return packet.Data, packet.CaptureInfo, nil
	case <-s.done:
		return nil, gopacket.CaptureInfo{}, io.EOF
	}
}

// Run receives and decodes datagrams until the context is done or the socket fails
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	decoded := make(chan struct{})

	// Read UDP packets from wire and put them to input queue
	go func() {
		buffer := make([]byte, srv.MaxDatagramSize)
		for {
			length, udpAddr, readErr := s.conn.ReadFromUDP(buffer)
			if readErr != nil {
				errChan <- readErr
				return
			}
			select {
			case s.chIn <- srv.NewInPacket(buffer[:length], udpAddr, 0):
			case <-s.done:
				return
			}
		}
	}()

	// Read packets from input queue, parse them and pass poll replies to the handler
	go func() {
		defer close(decoded)
		source := gopacket.NewPacketSource(s, layers.AdvatekLayerType)
		for packet := range source.Packets() {
			s.handlePacket(packet)
		}
	}()

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-errChan:
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	}
	s.Close()
	<-decoded
	return err
}

func (s *Server) handlePacket(packet gopacket.Packet) {
	udpAddr, err := srv.GetAddrPort(packet)
	if err != nil {
		log.Error("%s", err)
		return
	}

	parsed, err := layers.FromPacket(packet)
	if err != nil {
		s.metrics.ObserveDecode(decodeResult(err))
		log.Debug("Dropping datagram from %s: %s", udpAddr, err)
		return
	}
	s.metrics.ObserveDecode(metrics.ResultOK)
	s.metrics.ObserveOpCode(parsed.Header().OpCode.String())

	reply, ok := parsed.(*layers.PollReplyPacket)
	if !ok {
		log.Debug("Ignoring %s from %s", parsed.Header().OpCode, udpAddr)
		return
	}

	dd := NewDevice(reply.PollReply)
	dd.SetSource(udpAddr)
	dd.SetTimestamp(packet.Metadata().Timestamp)
	dd.SessionID = s.SessionID()
	log.Debug("Poll reply: device: %s model: %s address: %s", dd.Key(), dd.Model, udpAddr)

	if s.handler != nil {
		s.handler(dd)
	}
}

func decodeResult(err error) string {
	var badMagic layers.ErrBadMagic
	var truncated layers.ErrTruncated
	switch {
	case errors.As(err, &badMagic):
		return metrics.ResultBadMagic
	case errors.As(err, &truncated):
		return metrics.ResultTruncated
	default:
		return metrics.ResultError
	}
}
