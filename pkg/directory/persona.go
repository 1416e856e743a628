package directory

import "slices"

// Persona is a selectable user identity.
type Persona struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	IsAdmin     bool     `json:"is_admin"`
}

// Clone returns a copy of p that shares no memory with it.
func (p Persona) Clone() Persona {
	p.Permissions = slices.Clone(p.Permissions)
	return p
}

// cloneRoster copies roster and drops entries whose id was already seen. The
// first occurrence wins. dropped lists the discarded ids.
func cloneRoster(roster []Persona) (out []Persona, dropped []string) {
	if roster == nil {
		return []Persona{}, nil
	}
	seen := make(map[string]struct{}, len(roster))
	out = make([]Persona, 0, len(roster))
	for _, persona := range roster {
		if _, ok := seen[persona.ID]; ok {
			dropped = append(dropped, persona.ID)
			continue
		}
		seen[persona.ID] = struct{}{}
		out = append(out, persona.Clone())
	}
	return out, dropped
}

func find(roster []Persona, id string) *Persona {
	if id == "" {
		return nil
	}
	for i := range roster {
		if roster[i].ID == id {
			found := roster[i].Clone()
			return &found
		}
	}
	return nil
}

func cloneUsers(users []Persona) []Persona {
	if users == nil {
		return nil
	}
	out := make([]Persona, len(users))
	for i, persona := range users {
		out[i] = persona.Clone()
	}
	return out
}

func clonePersona(persona *Persona) *Persona {
	if persona == nil {
		return nil
	}
	copied := persona.Clone()
	return &copied
}

func ids(roster []Persona) []string {
	out := make([]string, len(roster))
	for i, persona := range roster {
		out[i] = persona.ID
	}
	return out
}
