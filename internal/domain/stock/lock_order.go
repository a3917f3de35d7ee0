package stock

import "sort"

// LockKey identifica una fila ComponentLocation a bloquear.
type LockKey struct {
	ComponentID string
	LocationID  string
}

// String devuelve "component/location"; se usa como clave de mapa y en logs.
func (k LockKey) String() string {
	return k.ComponentID + "/" + k.LocationID
}

// Less orden total de claves: componente y luego ubicación.
func (k LockKey) Less(o LockKey) bool {
	if k.ComponentID != o.ComponentID {
		return k.ComponentID < o.ComponentID
	}
	return k.LocationID < o.LocationID
}

// LockOrder devuelve las claves sin duplicados y en orden ascendente.
// Todo caller que tome más de un lock debe adquirirlos en este orden, sin importar
// qué clave es origen y cuál destino: así dos traslados opuestos nunca esperan en ciclo.
func LockOrder(keys ...LockKey) []LockKey {
	seen := make(map[LockKey]struct{}, len(keys))
	out := make([]LockKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
