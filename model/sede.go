package model

// Sede describes one Cineteca Nacional exhibition site.
type Sede struct {
	ID     string
	Nombre string
	Codigo string
	Color  string
}

// Sedes is the fixed registry of exhibition sites, keyed by the cinema id
// used by the cartelera endpoint.
var Sedes = map[string]Sede{
	"001": {ID: "001", Nombre: "CHAPULTEPEC", Codigo: "CNCH", Color: "214"},
	"002": {ID: "002", Nombre: "CENART", Codigo: "CNA", Color: "39"},
	"003": {ID: "003", Nombre: "XOCO", Codigo: "XOCO", Color: "42"},
}

// DefaultSedeID is the sede shown when nothing is persisted or decoded.
const DefaultSedeID = "003"

// ValidSedeIDs lists the known sede ids in display order.
var ValidSedeIDs = []string{"001", "002", "003"}

// IsValidSedeID reports whether id names a known sede.
func IsValidSedeID(id string) bool {
	_, ok := Sedes[id]
	return ok
}

// SedeNameFromCodigo maps a venue code token from scraped text to the sede
// name. Unrecognized codes pass through unchanged.
func SedeNameFromCodigo(codigo string) string {
	for _, sede := range Sedes {
		if sede.Codigo == codigo {
			return sede.Nombre
		}
	}
	return codigo
}
