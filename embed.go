// Package waymark embeds the static map frontend served by the waymark binary.
package waymark

import "embed"

//go:embed web/dist
var WebFS embed.FS
