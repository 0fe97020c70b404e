package test

import (
	"strings"

	"github.com/taurusgroup/mpc-sign/pkg/party"
)

// PartyIDs returns n sorted IDs "a", "b", …, "z", "aa", "ab", …
// Every 26 parties the prefix grows by one "a".
func PartyIDs(n int) party.IDSlice {
	ids := make([]party.ID, 0, n)
	for i := 0; i < n; i++ {
		prefix := strings.Repeat("a", i/26)
		ids = append(ids, party.ID(prefix+string(rune('a'+i%26))))
	}
	return party.NewIDSlice(ids)
}
