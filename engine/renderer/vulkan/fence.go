package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
)

// Fence guards the reuse of resources the GPU may still be reading.
type Fence struct {
	Handle vk.Fence
	// Submitted is set once a submission signalling the fence has been made and cleared on Reset.
	Submitted bool
}

func NewFence(driver Driver, createSignaled bool) (*Fence, error) {
	handle, err := driver.CreateFence(createSignaled)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &Fence{Handle: handle, Submitted: createSignaled}, nil
}

func (f *Fence) Destroy(driver Driver) {
	if !isNull(f.Handle) {
		driver.DestroyFence(f.Handle)
		f.Handle = nil
	}
	f.Submitted = false
}

// Wait blocks until the fence signals. It never trusts a cached signaled state.
func (f *Fence) Wait(driver Driver) error {
	if err := driver.WaitForFence(f.Handle); err != nil {
		core.LogError("fence wait: %s", err)
		return err
	}
	return nil
}

func (f *Fence) Reset(driver Driver) error {
	if err := driver.ResetFence(f.Handle); err != nil {
		core.LogError(err.Error())
		return err
	}
	f.Submitted = false
	return nil
}
