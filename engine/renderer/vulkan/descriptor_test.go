package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/google/uuid"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
	"github.com/spaghettifunk/anvil/engine/renderer/vulkan/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestTable(t *testing.T, driver *fakeDriver, maxRenameCount uint32) (*DescriptorTable, *descriptorLayouts) {
	t.Helper()
	layouts, err := createDescriptorLayouts(driver)
	require.NoError(t, err)
	nulls := nullDescriptors{
		buffer:     fakeHandle[vk.Buffer](),
		imageView:  fakeHandle[vk.ImageView](),
		bufferView: fakeHandle[vk.BufferView](),
		sampler:    fakeHandle[vk.Sampler](),
	}
	table, err := NewDescriptorTable(driver, layouts, nulls, maxRenameCount)
	require.NoError(t, err)
	return table, layouts
}

func TestDescriptorCategoryLayout(t *testing.T) {
	require.Equal(t, uint32(0), categoryOffsets[categoryCBV])
	require.Equal(t, uint32(12), categoryOffsets[categorySRVTexture])
	require.Equal(t, uint32(12+64*3), categoryOffsets[categoryUAVTexture])
	require.Equal(t, uint32(12+64*3+8*3), categoryOffsets[categorySampler])
	require.Equal(t, uint32(12+64*3+8*3+16), descriptorBindingCount)
}

func TestDescriptorTableResetWritesNullDefaults(t *testing.T) {
	driver := newFakeDriver()
	newTestTable(t, driver, 4)

	require.Equal(t, int(metadata.ShaderStageCount)*int(categoryCount), driver.descriptorWrites)
}

func TestDescriptorBindIsDeduplicated(t *testing.T) {
	driver := newFakeDriver()
	table, _ := newTestTable(t, driver, 4)

	ctrl := gomock.NewController(t)
	updater := mocks.NewMockDescriptorUpdater(ctrl)
	table.updater = updater

	id := uuid.New()
	buffer := fakeHandle[vk.Buffer]()
	updater.EXPECT().UpdateDescriptorSets(gomock.Len(1), gomock.Nil()).Times(1)

	table.BindConstantBuffer(metadata.ShaderStageVS, 3, id, buffer, 0, 256)
	table.BindConstantBuffer(metadata.ShaderStageVS, 3, id, buffer, 0, 256)
}

func TestDescriptorBindDifferentViewWritesAgain(t *testing.T) {
	driver := newFakeDriver()
	table, _ := newTestTable(t, driver, 4)

	ctrl := gomock.NewController(t)
	updater := mocks.NewMockDescriptorUpdater(ctrl)
	table.updater = updater

	id := uuid.New()
	updater.EXPECT().UpdateDescriptorSets(gomock.Len(1), gomock.Nil()).Times(2)

	table.BindTexture(metadata.ShaderStagePS, 0, id, -1, fakeHandle[vk.ImageView]())
	table.BindTexture(metadata.ShaderStagePS, 0, id, 2, fakeHandle[vk.ImageView]())
}

func TestDescriptorValidateFlushesOncePerDirtyStage(t *testing.T) {
	driver := newFakeDriver()
	table, layouts := newTestTable(t, driver, 8)
	cmd := fakeHandle[vk.CommandBuffer]()
	require.NoError(t, table.Validate(cmd, false))

	ctrl := gomock.NewController(t)
	updater := mocks.NewMockDescriptorUpdater(ctrl)
	table.updater = updater

	updater.EXPECT().UpdateDescriptorSets(gomock.Len(1), gomock.Nil()).Times(7)
	for slot := uint32(0); slot < 5; slot++ {
		table.BindRawBuffer(metadata.ShaderStageVS, slot, uuid.New(), fakeHandle[vk.Buffer]())
	}
	table.BindSampler(metadata.ShaderStagePS, 0, uuid.New(), fakeHandle[vk.Sampler]())
	table.BindTypedBuffer(metadata.ShaderStagePS, 1, uuid.New(), fakeHandle[vk.BufferView]())

	updater.EXPECT().UpdateDescriptorSets(gomock.Nil(), gomock.Len(int(categoryCount))).Times(2)
	gomock.InOrder(
		updater.EXPECT().CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, layouts.graphics, uint32(metadata.ShaderStageVS), gomock.Len(1)),
		updater.EXPECT().CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, layouts.graphics, uint32(metadata.ShaderStagePS), gomock.Len(1)),
	)
	require.NoError(t, table.Validate(cmd, false))

	// nothing dirty any more, the mock fails on any further call
	require.NoError(t, table.Validate(cmd, false))
	require.Equal(t, uint32(2), table.Ring(metadata.ShaderStageVS))
	require.Equal(t, uint32(1), table.Ring(metadata.ShaderStageHS))
}

func TestDescriptorValidateComputeUsesComputeLayout(t *testing.T) {
	driver := newFakeDriver()
	table, _ := newTestTable(t, driver, 4)
	cmd := fakeHandle[vk.CommandBuffer]()

	require.NoError(t, table.Validate(cmd, true))
	require.Len(t, driver.descriptorBinds, 1)
	require.Equal(t, vk.PipelineBindPointCompute, driver.descriptorBinds[0].bindPoint)
	require.Equal(t, uint32(0), driver.descriptorBinds[0].firstSet)
	require.Equal(t, uint32(1), table.Ring(metadata.ShaderStageCS))
	require.Equal(t, uint32(0), table.Ring(metadata.ShaderStageVS))
}

func TestDescriptorRingOverflowStalls(t *testing.T) {
	driver := newFakeDriver()
	table, _ := newTestTable(t, driver, 2)
	cmd := fakeHandle[vk.CommandBuffer]()

	flushes := 0
	table.onOverflow = func(c vk.CommandBuffer) error {
		require.Equal(t, cmd, c)
		flushes++
		return nil
	}

	for i := 0; i < 3; i++ {
		table.BindConstantBuffer(metadata.ShaderStageVS, 0, uuid.New(), fakeHandle[vk.Buffer](), 0, 16)
		require.NoError(t, table.Validate(cmd, false))
	}

	require.Equal(t, 1, flushes)
	require.Equal(t, uint64(1), table.Stalls())
	require.Equal(t, uint32(1), table.Ring(metadata.ShaderStageVS))
}

func TestDescriptorRingOverflowWithoutFlushFails(t *testing.T) {
	driver := newFakeDriver()
	table, _ := newTestTable(t, driver, 1)
	cmd := fakeHandle[vk.CommandBuffer]()

	require.NoError(t, table.Validate(cmd, false))
	table.BindSampler(metadata.ShaderStageVS, 0, uuid.New(), fakeHandle[vk.Sampler]())
	require.Error(t, table.Validate(cmd, false))
}

func TestDescriptorBindOutOfRangeAsserts(t *testing.T) {
	driver := newFakeDriver()
	table, _ := newTestTable(t, driver, 1)

	require.Panics(t, func() {
		table.BindStorageImage(metadata.ShaderStageCS, 8, uuid.New(), -1, fakeHandle[vk.ImageView]())
	})
}

func TestDescriptorResetForgetsBindings(t *testing.T) {
	driver := newFakeDriver()
	table, _ := newTestTable(t, driver, 4)
	id := uuid.New()
	buffer := fakeHandle[vk.Buffer]()

	table.BindStorageBuffer(metadata.ShaderStageCS, 0, id, buffer)
	before := driver.descriptorWrites
	table.Reset()
	table.BindStorageBuffer(metadata.ShaderStageCS, 0, id, buffer)

	require.Equal(t, before+int(metadata.ShaderStageCount)*int(categoryCount)+1, driver.descriptorWrites)
}
