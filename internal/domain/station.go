package domain

// Station identifies one of the eight HYROX race stations.
type Station string

const (
	StationSkiErg          Station = "skierg"
	StationSledPush        Station = "sled_push"
	StationSledPull        Station = "sled_pull"
	StationBurpeeBroadJump Station = "burpee_broad_jump"
	StationRowing          Station = "rowing"
	StationFarmersCarry    Station = "farmers_carry"
	StationSandbagLunges   Station = "sandbag_lunges"
	StationWallBalls       Station = "wall_balls"
)

// Stations lists every station in race order.
var Stations = []Station{
	StationSkiErg,
	StationSledPush,
	StationSledPull,
	StationBurpeeBroadJump,
	StationRowing,
	StationFarmersCarry,
	StationSandbagLunges,
	StationWallBalls,
}

// DefaultWeakStations are the stations most athletes struggle with. They are
// emphasised when a personalization does not name any weak stations.
var DefaultWeakStations = []Station{StationSledPush, StationSledPull, StationWallBalls}

var stationNames = map[Station]string{
	StationSkiErg:          "SkiErg",
	StationSledPush:        "Sled Push",
	StationSledPull:        "Sled Pull",
	StationBurpeeBroadJump: "Burpee Broad Jumps",
	StationRowing:          "Rowing",
	StationFarmersCarry:    "Farmers Carry",
	StationSandbagLunges:   "Sandbag Lunges",
	StationWallBalls:       "Wall Balls",
}

// Valid reports whether s is a known station identifier.
func (s Station) Valid() bool {
	_, ok := stationNames[s]
	return ok
}

// DisplayName returns the human readable station name.
func (s Station) DisplayName() string {
	if name, ok := stationNames[s]; ok {
		return name
	}
	return string(s)
}
