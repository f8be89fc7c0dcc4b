package http

import "strings"

// knownBenignFault is the one fault message the gateway drops without even
// logging: clients tearing down the connection mid-response, which WebDAV
// clients do constantly after partial PROPFIND reads. Matched as a literal
// substring; anything broader starts hiding real faults.
const knownBenignFault = "broken pipe"

func isKnownBenignFault(err error) bool {
	return err != nil && strings.Contains(err.Error(), knownBenignFault)
}
