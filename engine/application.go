package engine

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// The application name used in windowing. Overrides the config title when set.
	Name string
	// Path of the TOML config. Watched for changes while the engine runs.
	ConfigPath string
	// Number of workers in the job system.
	Workers int
}
