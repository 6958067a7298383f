package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/grandcat/zeroconf"
)

// PowerViewService is the mDNS service type hubs advertise.
const PowerViewService = "_powerview._tcp"

// mdnsDomain is the multicast DNS domain to browse.
const mdnsDomain = "local."

// probeTimeout bounds the identity probe of a freshly discovered address.
const probeTimeout = 10 * time.Second

// ResolvedHub is one hub sighting from mDNS browsing.
//
// Every discovered address is probed for its identity; a hub that
// advertises but does not answer its REST API arrives with
// Reachable=false and no UserData.
type ResolvedHub struct {
	// Addr is the hub's IP address as a string.
	Addr string

	// UserData is the hub's identity, nil when the probe failed.
	UserData *UserData

	// Reachable reports whether the identity probe succeeded.
	Reachable bool
}

// Discover browses for hubs on the local network and streams sightings.
//
// Browsing continues until ctx is cancelled; the returned channel is
// closed when browsing stops. Each mDNS answer is probed with UserData
// before being emitted, so consumers can rely on ResolvedHub.Reachable.
//
// Parameters:
//   - ctx: Cancels browsing and closes the result channel
//   - timeout: Per-request timeout passed to probe clients
//
// Returns:
//   - <-chan ResolvedHub: Stream of hub sightings
//   - error: If the mDNS resolver could not be created or browsing failed
func Discover(ctx context.Context, timeout time.Duration) (<-chan ResolvedHub, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("creating mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry, 8)
	out := make(chan ResolvedHub, 8)

	go func() {
		defer close(out)
		for entry := range entries {
			addr := entryAddr(entry)
			if addr == "" {
				continue
			}

			resolved := probe(ctx, addr, timeout)
			select {
			case out <- resolved:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, PowerViewService, mdnsDomain, entries); err != nil {
		return nil, fmt.Errorf("browsing %s: %w", PowerViewService, err)
	}

	return out, nil
}

// entryAddr picks an address from an mDNS answer, preferring IPv4.
func entryAddr(entry *zeroconf.ServiceEntry) string {
	if len(entry.AddrIPv4) > 0 {
		return entry.AddrIPv4[0].String()
	}
	if len(entry.AddrIPv6) > 0 {
		return entry.AddrIPv6[0].String()
	}
	return ""
}

// probe reads the hub's identity from a discovered address.
func probe(ctx context.Context, addr string, timeout time.Duration) ResolvedHub {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	client := NewClient(addr, timeout)
	userData, err := client.UserData(probeCtx)
	if err != nil {
		return ResolvedHub{Addr: addr}
	}

	return ResolvedHub{
		Addr:      addr,
		UserData:  userData,
		Reachable: true,
	}
}
