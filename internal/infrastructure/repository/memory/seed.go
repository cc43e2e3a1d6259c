package memory

import (
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/league"
	"github.com/riskibarqy/grid-manager/internal/domain/pricing"
)

const LeagueIDGlobal = "global-2025"

type seedDriver struct {
	id, name, code, nationality, constructorID string
}

var seedDrivers = []seedDriver{
	{"norris", "Lando Norris", "NOR", "British", "mclaren"},
	{"piastri", "Oscar Piastri", "PIA", "Australian", "mclaren"},
	{"max_verstappen", "Max Verstappen", "VER", "Dutch", "red_bull"},
	{"russell", "George Russell", "RUS", "British", "mercedes"},
	{"leclerc", "Charles Leclerc", "LEC", "Monegasque", "ferrari"},
	{"hamilton", "Lewis Hamilton", "HAM", "British", "ferrari"},
	{"antonelli", "Andrea Kimi Antonelli", "ANT", "Italian", "mercedes"},
	{"albon", "Alexander Albon", "ALB", "Thai", "williams"},
	{"hulkenberg", "Nico Hülkenberg", "HUL", "German", "sauber"},
	{"hadjar", "Isack Hadjar", "HAD", "French", "rb"},
	{"ocon", "Esteban Ocon", "OCO", "French", "haas"},
	{"stroll", "Lance Stroll", "STR", "Canadian", "aston_martin"},
	{"tsunoda", "Yuki Tsunoda", "TSU", "Japanese", "red_bull"},
	{"alonso", "Fernando Alonso", "ALO", "Spanish", "aston_martin"},
	{"sainz", "Carlos Sainz", "SAI", "Spanish", "williams"},
	{"lawson", "Liam Lawson", "LAW", "New Zealander", "rb"},
	{"gasly", "Pierre Gasly", "GAS", "French", "alpine"},
	{"bearman", "Oliver Bearman", "BEA", "British", "haas"},
	{"bortoleto", "Gabriel Bortoleto", "BOR", "Brazilian", "sauber"},
	{"colapinto", "Franco Colapinto", "COL", "Argentine", "alpine"},
}

var seedConstructors = [][3]string{
	{"mclaren", "McLaren", "British"},
	{"mercedes", "Mercedes", "German"},
	{"red_bull", "Red Bull", "Austrian"},
	{"ferrari", "Ferrari", "Italian"},
	{"williams", "Williams", "British"},
	{"rb", "RB F1 Team", "Italian"},
	{"aston_martin", "Aston Martin", "British"},
	{"sauber", "Sauber", "Swiss"},
	{"haas", "Haas F1 Team", "American"},
	{"alpine", "Alpine F1 Team", "French"},
}

// SeedEntrants returns the current grid priced by its listed order.
func SeedEntrants(cfg pricing.Config) []entrant.Entrant {
	out := make([]entrant.Entrant, 0, len(seedDrivers)+len(seedConstructors))
	for i, d := range seedDrivers {
		out = append(out, entrant.Entrant{
			ID:            d.id,
			Kind:          entrant.KindDriver,
			Name:          d.name,
			Code:          d.code,
			Nationality:   d.nationality,
			ConstructorID: d.constructorID,
			Price:         cfg.Driver.TablePrice(i),
		})
	}
	for i, c := range seedConstructors {
		out = append(out, entrant.Entrant{
			ID:          c[0],
			Kind:        entrant.KindConstructor,
			Name:        c[1],
			Nationality: c[2],
			Price:       cfg.Constructor.TablePrice(i),
		})
	}
	return out
}

func SeedLeagues() []league.League {
	return []league.League{
		{ID: LeagueIDGlobal, OwnerUserID: "system", Name: "Global League"},
	}
}
