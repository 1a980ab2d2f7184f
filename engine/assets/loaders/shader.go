package loaders

import (
	"encoding/binary"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/anvil/engine/core"
)

// SPIRVMagic is the first word of every SPIR-V module, in the module's endianness.
const SPIRVMagic uint32 = 0x07230203

type ShaderLoader struct{}

// ValidateSPIRV checks the size and the magic number of a SPIR-V module.
func ValidateSPIRV(code []byte) error {
	if len(code) == 0 {
		return core.ErrEmptyBytecode
	}
	if len(code)%4 != 0 || len(code) < 20 {
		return errors.Newf("spir-v module of %d bytes is truncated", len(code))
	}
	if binary.LittleEndian.Uint32(code) != SPIRVMagic && binary.BigEndian.Uint32(code) != SPIRVMagic {
		return errors.Newf("bad spir-v magic %#08x", binary.LittleEndian.Uint32(code))
	}
	return nil
}

func (sl *ShaderLoader) Load(path string, params interface{}) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(core.ErrAssetNotFound, "%s", path)
		}
		return nil, err
	}
	if err := ValidateSPIRV(data); err != nil {
		return nil, errors.Wrapf(err, "shader %s", path)
	}
	return &Resource{
		Name:     path,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     data,
	}, nil
}

func (sl *ShaderLoader) Unload(*Resource) error {
	return nil
}
