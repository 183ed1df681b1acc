// Package hotlines serves the static emergency contact directory. The data is
// compiled in: hotline numbers change rarely and the directory must work even
// when the store is unreachable.
package hotlines

import "github.com/oancholarevelo/floodtrack/internal/domain"

// Hotline is one emergency contact.
type Hotline struct {
	Name     string `json:"name"`
	Number   string `json:"number"`
	Category string `json:"category"`
}

// national applies everywhere and always precedes the town entries.
var national = []Hotline{
	{Name: "National Emergency Hotline", Number: "911", Category: "emergency"},
	{Name: "NDRRMC Operations Center", Number: "(02) 8911-5061", Category: "disaster"},
	{Name: "Philippine Red Cross", Number: "143", Category: "medical"},
	{Name: "Bureau of Fire Protection", Number: "(02) 8426-0219", Category: "fire"},
}

var byTown = map[string][]Hotline{
	"montalban": {
		{Name: "Montalban MDRRMO", Number: "(02) 8941-0629", Category: "disaster"},
		{Name: "Montalban Municipal Police", Number: "0998-598-5972", Category: "police"},
		{Name: "Montalban Fire Station", Number: "0905-315-1771", Category: "fire"},
		{Name: "Montalban Rural Health Unit", Number: "0917-859-2896", Category: "medical"},
	},
	"sanmateo": {
		{Name: "San Mateo MDRRMO", Number: "(02) 8297-1852", Category: "disaster"},
		{Name: "San Mateo Municipal Police", Number: "0917-550-8632", Category: "police"},
		{Name: "San Mateo Fire Station", Number: "0932-447-0167", Category: "fire"},
		{Name: "San Mateo Rural Health Unit", Number: "0919-062-0913", Category: "medical"},
	},
}

// ForTown returns the national hotlines followed by the town's own entries.
// Unknown towns fall back to the default town's directory.
func ForTown(town string) []Hotline {
	entries, ok := byTown[town]
	if !ok {
		entries = byTown[domain.DefaultTown]
	}

	out := make([]Hotline, 0, len(national)+len(entries))
	out = append(out, national...)
	return append(out, entries...)
}

// Towns lists the towns with a dedicated directory.
func Towns() []string {
	return []string{"montalban", "sanmateo"}
}
