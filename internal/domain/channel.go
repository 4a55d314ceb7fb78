package domain

import "strings"

type Channel string

const (
	ChannelLocal       Channel = "LOCAL"
	ChannelPeya        Channel = "PEYA"
	ChannelRappi       Channel = "RAPPI"
	ChannelMercadoPago Channel = "MERCADOPAGO"
	ChannelUnknown     Channel = "UNKNOWN"
)

// Channels lists the known sales channels, UNKNOWN excluded.
var Channels = []Channel{ChannelLocal, ChannelPeya, ChannelRappi, ChannelMercadoPago}

// Checked in order; the first keyword contained in the normalized name wins.
var channelKeywords = []struct {
	keyword string
	channel Channel
}{
	{"PEDIDOSYA", ChannelPeya},
	{"PEDIDOS YA", ChannelPeya},
	{"PEYA", ChannelPeya},
	{"RAPPI", ChannelRappi},
	{"MERCADOPAGO", ChannelMercadoPago},
	{"MERCADO PAGO", ChannelMercadoPago},
	{"LOCAL", ChannelLocal},
	{"MOSTRADOR", ChannelLocal},
	{"SALON", ChannelLocal},
	{"EFECTIVO", ChannelLocal},
	{"CASH", ChannelLocal},
	{"TARJETA", ChannelLocal},
	{"CARD", ChannelLocal},
	{"TRANSFERENCIA", ChannelLocal},
}

// NormalizeChannel maps a free-text payment channel to a Channel.
// Names that match no keyword are UNKNOWN.
func NormalizeChannel(raw string) Channel {
	name := strings.ToUpper(strings.TrimSpace(raw))
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ChannelUnknown
	}
	for _, entry := range channelKeywords {
		if strings.Contains(name, entry.keyword) {
			return entry.channel
		}
	}
	return ChannelUnknown
}
