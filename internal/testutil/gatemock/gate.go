package gatemock

// Gate is a trivial access.Gate double: a fixed owner plus an admin set.
type Gate struct {
	Owner  string
	Admins map[string]bool
}

func (g *Gate) IsAdmin(address string) bool {
	if address == g.Owner && g.Owner != "" {
		return true
	}
	return g.Admins[address]
}

func (g *Gate) OwnerAddress() string { return g.Owner }
