package entity

// Store identifica una tienda física. El sistema maneja exactamente dos:
// la principal (piso de venta) y la secundaria (depósito).
type Store int

const (
	StorePrimary   Store = 1
	StoreSecondary Store = 2
)

// Valid indica si el valor corresponde a una de las dos tiendas.
func (s Store) Valid() bool {
	return s == StorePrimary || s == StoreSecondary
}

func (s Store) String() string {
	switch s {
	case StorePrimary:
		return "tienda_principal"
	case StoreSecondary:
		return "deposito"
	}
	return "desconocida"
}
