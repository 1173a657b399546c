// Package metrics exposes application metrics collectors.
package metrics

import "github.com/goodnatureofminers/blockinsight7000-blockparser/internal/network"

const namespace = "blockinsight7000"

type labels struct {
	coin    string
	network string
}

func newLabels(coin network.Coin, net network.Network) labels {
	l := labels{coin: string(coin), network: string(net)}
	if l.coin == "" {
		l.coin = "unknown"
	}
	if l.network == "" {
		l.network = "unknown"
	}
	return l
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
