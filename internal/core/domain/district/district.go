package district

// District is one registry entry: a district name observed in upstream
// data for a state. Names are stored as the upstream reports them
// (upper case).
type District struct {
	State string `json:"state"`
	Name  string `json:"name"`
}

// StateDistricts groups the known district names of one state, sorted
// alphabetically for display.
type StateDistricts struct {
	State     string   `json:"state"`
	Districts []string `json:"districts"`
}
