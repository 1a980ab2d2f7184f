package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
)

type CommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY CommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

func (s CommandBufferState) String() string {
	switch s {
	case COMMAND_BUFFER_STATE_READY:
		return "ready"
	case COMMAND_BUFFER_STATE_RECORDING:
		return "recording"
	case COMMAND_BUFFER_STATE_RECORDING_ENDED:
		return "ended"
	case COMMAND_BUFFER_STATE_SUBMITTED:
		return "submitted"
	}
	return "not allocated"
}

// CommandBuffer is a primary command buffer that owns the pool it was allocated from.
type CommandBuffer struct {
	Handle vk.CommandBuffer
	Pool   vk.CommandPool
	State  CommandBufferState
}

func NewCommandBuffer(driver Driver, family uint32) (*CommandBuffer, error) {
	pool, err := driver.CreateCommandPool(family)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	handle, err := driver.AllocateCommandBuffer(pool)
	if err != nil {
		driver.DestroyCommandPool(pool)
		core.LogError(err.Error())
		return nil, err
	}
	return &CommandBuffer{Handle: handle, Pool: pool, State: COMMAND_BUFFER_STATE_READY}, nil
}

func (c *CommandBuffer) Destroy(driver Driver) {
	if !isNull(c.Pool) {
		driver.DestroyCommandPool(c.Pool)
	}
	c.Handle = nil
	c.Pool = nil
	c.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

func (c *CommandBuffer) Begin(driver Driver, isSingleUse, isSimultaneousUse bool) error {
	if c.State != COMMAND_BUFFER_STATE_READY {
		return errors.Newf("cannot begin a command buffer in state %s", c.State)
	}
	var flags vk.CommandBufferUsageFlagBits
	if isSingleUse {
		flags |= vk.CommandBufferUsageOneTimeSubmitBit
	}
	if isSimultaneousUse {
		flags |= vk.CommandBufferUsageSimultaneousUseBit
	}
	if err := driver.BeginCommandBuffer(c.Handle, vk.CommandBufferUsageFlags(flags)); err != nil {
		core.LogError(err.Error())
		return err
	}
	c.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (c *CommandBuffer) End(driver Driver) error {
	if c.State != COMMAND_BUFFER_STATE_RECORDING {
		return nil
	}
	if err := driver.EndCommandBuffer(c.Handle); err != nil {
		core.LogError(err.Error())
		return err
	}
	c.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (c *CommandBuffer) UpdateSubmitted() {
	c.State = COMMAND_BUFFER_STATE_SUBMITTED
}

// Reset recycles the whole pool. The caller must know the GPU is done with the buffer.
func (c *CommandBuffer) Reset(driver Driver) error {
	if err := driver.ResetCommandPool(c.Pool); err != nil {
		core.LogError(err.Error())
		return err
	}
	c.State = COMMAND_BUFFER_STATE_READY
	return nil
}

func (c *CommandBuffer) Recording() bool {
	return c.State == COMMAND_BUFFER_STATE_RECORDING
}
