package accessctl

import "strings"

// StaticGate resolves the owner and admin tiers from configuration. Granting
// and revoking admins at runtime is bootstrap tooling territory, so the set
// is fixed for the life of the process.
type StaticGate struct {
	owner  string
	admins map[string]struct{}
}

func NewStaticGate(owner string, admins []string) *StaticGate {
	set := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			set[a] = struct{}{}
		}
	}
	return &StaticGate{owner: strings.ToLower(owner), admins: set}
}

func (g *StaticGate) IsAdmin(address string) bool {
	address = strings.ToLower(address)
	if address == g.owner && g.owner != "" {
		return true
	}
	_, ok := g.admins[address]
	return ok
}

func (g *StaticGate) OwnerAddress() string { return g.owner }
