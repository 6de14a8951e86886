// Package standard registers the modules compiled into the relaybot binary.
package standard

import (
	_ "github.com/flemzord/relaybot/internal/gateway"         // gateway.http
	_ "github.com/flemzord/relaybot/internal/metrics"         // metrics.prometheus
	_ "github.com/flemzord/relaybot/modules/journal/sqlite"   // journal.sqlite
	_ "github.com/flemzord/relaybot/modules/transport/bridge" // transport.bridge
)
