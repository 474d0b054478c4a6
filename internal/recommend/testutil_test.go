package recommend

// kmPerDegree is the length of one degree of latitude on the haversine sphere.
const kmPerDegree = 6371.0 * 3.141592653589793 / 180

var origin = UserPosition{Lat: 37.5665, Lng: 126.9780}

func ptr[T any](v T) *T { return &v }

// storeNorth places a store distKm north of origin.
func storeNorth(id, area string, distKm float64) Store {
	return Store{
		StoreID:  id,
		Name:     "Store " + id,
		X:        ptr(origin.Lat + distKm/kmPerDegree),
		Y:        ptr(origin.Lng),
		AreaCode: area,
	}
}

// storeWithoutCoords has no geocoding result.
func storeWithoutCoords(id, area string) Store {
	return Store{StoreID: id, Name: "Store " + id, AreaCode: area}
}

func ids(stores []Store) []string {
	out := make([]string, len(stores))
	for i, s := range stores {
		out[i] = s.StoreID
	}
	return out
}

func scoredIDs(stores []ScoredStore) []string {
	out := make([]string, len(stores))
	for i, s := range stores {
		out[i] = s.StoreID
	}
	return out
}
