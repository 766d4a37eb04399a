package version

var Version = "0.1"
var BuildDate = "2025-08-20"

func GetVersion() string {
	return Version
}

func GetBuildDate() string {
	return BuildDate
}
