package loaders

// Resource is what a loader hands back. Data depends on the loader: decoded mip levels for
// images, raw bytecode for shaders and binaries.
type Resource struct {
	Name     string
	FullPath string
	DataSize uint64
	Data     interface{}
}

type Loader interface {
	Load(path string, params interface{}) (*Resource, error)
	Unload(*Resource) error
}
