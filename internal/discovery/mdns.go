// Package discovery advertises the relay on the local network so nearby
// clients can find a board without typing an address.
package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_inkboard._tcp"

// Peer is a relay found on the local network.
type Peer struct {
	Name string   `json:"name"`
	Addr string   `json:"addr"`
	Info []string `json:"info"`
}

// Advertise announces a relay listening on port. Call Shutdown on the
// returned server to withdraw it.
func Advertise(port int, info ...string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, txtRecords(port, info))
	if err != nil {
		return nil, fmt.Errorf("create mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}
	return server, nil
}

// Browse collects relays answering within the lookup timeout.
func Browse(ctx context.Context) ([]Peer, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan []Peer, 1)

	go func() {
		var peers []Peer
		for e := range entries {
			if p, ok := peerFromEntry(e); ok {
				peers = append(peers, p)
			}
		}
		done <- peers
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.DisableIPv6 = true
	if deadline, ok := ctx.Deadline(); ok {
		params.Timeout = timeUntil(deadline)
	}
	err := mdns.Query(params)
	close(entries)
	peers := <-done
	if err != nil {
		return nil, fmt.Errorf("mdns query: %w", err)
	}
	return peers, nil
}

func txtRecords(port int, info []string) []string {
	out := []string{"app=inkboard", "port=" + strconv.Itoa(port)}
	return append(out, info...)
}

func peerFromEntry(e *mdns.ServiceEntry) (Peer, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Peer{}, false
	}
	return Peer{
		Name: e.Name,
		Addr: net.JoinHostPort(e.AddrV4.String(), strconv.Itoa(e.Port)),
		Info: e.InfoFields,
	}, true
}

func timeUntil(deadline time.Time) time.Duration {
	d := time.Until(deadline)
	if d < 100*time.Millisecond {
		d = 100 * time.Millisecond
	}
	return d
}
