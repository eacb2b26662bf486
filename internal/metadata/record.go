package metadata

// SchemaVersion is bumped whenever the on-disk record layout changes; cached
// files with any other version are refetched.
const SchemaVersion = 2

// Record is the cached metadata for one file or folder. Poster and Backdrop
// are servable paths under the image route, or nil.
type Record struct {
	SchemaVersion int      `json:"schema_version"`
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	Year          string   `json:"year,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	Rating        *float64 `json:"rating"`
	Poster        *string  `json:"poster"`
	Backdrop      *string  `json:"backdrop"`
	IsTV          bool     `json:"is_tv"`
	Degraded      bool     `json:"degraded"`
}

// DegradedPolicy controls whether records built without catalog data are
// served from the cache.
type DegradedPolicy string

const (
	KeepDegraded    DegradedPolicy = "keep"
	RefetchDegraded DegradedPolicy = "refetch"
)

// ParsePolicy maps a config value onto a policy; anything unknown keeps
// degraded records.
func ParsePolicy(s string) DegradedPolicy {
	if DegradedPolicy(s) == RefetchDegraded {
		return RefetchDegraded
	}
	return KeepDegraded
}
