package main

import (
	"context"
	"fmt"
	"log/slog"

	"Newsroom-Apps/internal/config"
	"Newsroom-Apps/internal/core/network"
)

// newTransport builds the PubSub named by cfg.Transport.
func newTransport(ctx context.Context, cfg config.Wire, log *slog.Logger) (network.PubSub, error) {
	switch cfg.Transport {
	case config.TransportMemory:
		return network.NewMemoryPubSub(cfg.Buffer, log), nil
	case config.TransportLibp2p:
		ps, err := network.NewLibp2pPubSub(ctx, network.Libp2pOptions{
			ListenAddrs:     cfg.ListenAddrs,
			Bootstrap:       cfg.Bootstrap,
			Rendezvous:      cfg.Rendezvous,
			EnableMDNS:      cfg.EnableMDNS,
			IdentityKeyFile: cfg.IdentityKeyFile,
			Buffer:          cfg.Buffer,
			Logger:          log,
		})
		if err != nil {
			return nil, err
		}
		log.Info("gossip transport ready",
			"peer", ps.PeerID(),
			"addrs", ps.ListenAddrs(),
			"connected", ps.ConnectedPeers(),
		)
		return ps, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}
